package calendar

// Codec converts between one external event format and Event. Implementations are
// pure and keep no reference to the events they produce or consume.
type Codec interface {
	Provider() ProviderID
	Decode(payload []byte) (Event, error)
	Encode(event Event) ([]byte, error)
}

// BatchCodec is implemented by codecs whose wire format can carry many events.
type BatchCodec interface {
	Codec
	// DecodeBatch returns the events that decoded and one error per dropped item.
	DecodeBatch(payload []byte) ([]Event, []error)
	EncodeBatch(events []Event) ([]byte, error)
}

package calendar

// Color is a provider-independent display color tag.
type Color string

const (
	DefaultColor Color = "default"

	ColorLavender  Color = "lavender"
	ColorSage      Color = "sage"
	ColorGrape     Color = "grape"
	ColorFlamingo  Color = "flamingo"
	ColorBanana    Color = "banana"
	ColorTangerine Color = "tangerine"
	ColorPeacock   Color = "peacock"
	ColorGraphite  Color = "graphite"
	ColorBlueberry Color = "blueberry"
	ColorBasil     Color = "basil"
	ColorTomato    Color = "tomato"
)

// OrDefault maps the empty tag onto DefaultColor.
func (c Color) OrDefault() Color {
	if c == "" {
		return DefaultColor
	}
	return c
}

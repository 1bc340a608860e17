package microsoft

// Wire types for the Microsoft Graph calendar event resource. Only the fields the
// canonical event carries are declared; everything else is ignored on decode.

type graphEvent struct {
	ID          string           `json:"id"`
	Subject     string           `json:"subject,omitempty"`
	Body        *itemBody        `json:"body,omitempty"`
	Start       *dateTimeZone    `json:"start,omitempty"`
	End         *dateTimeZone    `json:"end,omitempty"`
	IsAllDay    bool             `json:"isAllDay,omitempty"`
	IsCancelled bool             `json:"isCancelled,omitempty"`
	IsOrganizer *bool            `json:"isOrganizer,omitempty"`
	ShowAs      string           `json:"showAs,omitempty"`
	Location    *location        `json:"location,omitempty"`
	WebLink     string           `json:"webLink,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	Attendees   []graphAttendee  `json:"attendees,omitempty"`
	Recurrence  *graphRecurrence `json:"recurrence,omitempty"`
}

type itemBody struct {
	ContentType string `json:"contentType,omitempty"`
	Content     string `json:"content"`
}

type dateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type location struct {
	DisplayName string `json:"displayName"`
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type responseStatus struct {
	Response string `json:"response,omitempty"`
}

type graphAttendee struct {
	EmailAddress emailAddress    `json:"emailAddress"`
	Status       *responseStatus `json:"status,omitempty"`
	Type         string          `json:"type,omitempty"`
}

type graphRecurrence struct {
	Pattern recurrencePattern `json:"pattern"`
	Range   recurrenceRange   `json:"range"`
}

type recurrencePattern struct {
	Type           string   `json:"type"`
	Interval       int      `json:"interval"`
	Month          int      `json:"month,omitempty"`
	DayOfMonth     int      `json:"dayOfMonth,omitempty"`
	DaysOfWeek     []string `json:"daysOfWeek,omitempty"`
	FirstDayOfWeek string   `json:"firstDayOfWeek,omitempty"`
	Index          string   `json:"index,omitempty"`
}

type recurrenceRange struct {
	Type                string `json:"type"`
	StartDate           string `json:"startDate,omitempty"`
	EndDate             string `json:"endDate,omitempty"`
	NumberOfOccurrences int    `json:"numberOfOccurrences,omitempty"`
}

type eventList struct {
	Value []graphEvent `json:"value"`
}

package types

// Message is one chat message returned by the remote current-period feed.
type Message struct {
	ID        int64
	Text      string
	Timestamp string // opaque, passed through unparsed

	// ReportID references a Report when the message produced one.
	ReportID *int64
}

// Report is a priced artifact that overrides the text-based credit cost of
// the messages that reference it.
type Report struct {
	ID         int64
	Name       string
	CreditCost int64
}

// EnrichedMessage is a Message joined with its Report.
// Report is nil when ReportID is nil or the report could not be fetched.
type EnrichedMessage struct {
	Message
	Report *Report
}

// UsageRecord is the credit usage attributed to a single message.
type UsageRecord struct {
	MessageID   int64
	Timestamp   string
	ReportName  *string
	CreditsUsed float64
}

package domain

// ConversationStore holds append-only transcripts keyed by session.
type ConversationStore interface {
	Add(sessionID string, msg Message)
	Messages(sessionID string) []Message
	Exists(sessionID string) bool
	Len() int
}

// BillSource exposes the read-only legislative dataset in declaration order.
type BillSource interface {
	Bills() []Bill
	Sponsors() []Sponsor
	BillSponsors() []BillSponsor
	Actions() []Action
}

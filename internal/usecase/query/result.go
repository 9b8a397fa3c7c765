package query

import "legislation-chat-bot/internal/domain"

// Result is the JSON-serializable outcome of a query or dispatch. Misses
// and bad input are reported as ErrorResult values, not Go errors.
type Result interface {
	isResult()
}

type BillDetails struct {
	BillNumber     string          `json:"bill_number"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary"`
	Status         string          `json:"status"`
	LastActionDate string          `json:"last_action_date"`
	LastActionText string          `json:"last_action_text"`
	Chamber        string          `json:"chamber"`
	SessionYear    int             `json:"session_year"`
	Source         string          `json:"source"`
	Sponsors       []SponsorInfo   `json:"sponsors"`
	Actions        []domain.Action `json:"actions"`
}

type SponsorInfo struct {
	Name    string `json:"name"`
	Party   string `json:"party"`
	Chamber string `json:"chamber"`
	Role    string `json:"role"`
}

type SearchResult struct {
	Matches []string `json:"matches"`
}

type ErrorResult struct {
	Error string `json:"error"`
}

func (BillDetails) isResult()  {}
func (SearchResult) isResult() {}
func (ErrorResult) isResult()  {}

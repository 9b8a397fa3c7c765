package query

import (
	"fmt"
	"sort"
	"strings"

	"legislation-chat-bot/internal/domain"
)

type Service struct {
	source domain.BillSource
}

func NewService(source domain.BillSource) *Service {
	return &Service{source: source}
}

// GetBillDetails looks a bill up by number ignoring case. Sponsors keep the
// order of the underlying links; actions are sorted by date ascending.
func (s *Service) GetBillDetails(billNumber string) Result {
	bill, ok := s.findBill(billNumber)
	if !ok {
		return ErrorResult{Error: fmt.Sprintf("No bill found with number %s", billNumber)}
	}

	return BillDetails{
		BillNumber:     bill.Number,
		Title:          bill.Title,
		Summary:        bill.Summary,
		Status:         bill.Status,
		LastActionDate: bill.LastActionDate,
		LastActionText: bill.LastActionText,
		Chamber:        bill.Chamber,
		SessionYear:    bill.SessionYear,
		Source:         bill.Source,
		Sponsors:       s.sponsorsFor(bill.ID),
		Actions:        s.actionsFor(bill.ID),
	}
}

// SearchBills returns the numbers of bills whose "number title summary" text
// contains query, ignoring case, in declaration order. An empty query
// matches every bill.
func (s *Service) SearchBills(query string) SearchResult {
	needle := strings.ToLower(query)
	matches := make([]string, 0)
	for _, b := range s.source.Bills() {
		haystack := strings.ToLower(b.Number + " " + b.Title + " " + b.Summary)
		if strings.Contains(haystack, needle) {
			matches = append(matches, b.Number)
		}
	}
	return SearchResult{Matches: matches}
}

func (s *Service) findBill(number string) (domain.Bill, bool) {
	for _, b := range s.source.Bills() {
		if strings.EqualFold(b.Number, number) {
			return b, true
		}
	}
	return domain.Bill{}, false
}

func (s *Service) sponsorsFor(billID int) []SponsorInfo {
	byID := make(map[int]domain.Sponsor)
	for _, sp := range s.source.Sponsors() {
		byID[sp.ID] = sp
	}

	res := make([]SponsorInfo, 0)
	for _, link := range s.source.BillSponsors() {
		if link.BillID != billID {
			continue
		}
		sp, ok := byID[link.SponsorID]
		if !ok {
			continue
		}
		res = append(res, SponsorInfo{
			Name:    sp.Name,
			Party:   sp.Party,
			Chamber: sp.Chamber,
			Role:    link.Role,
		})
	}
	return res
}

func (s *Service) actionsFor(billID int) []domain.Action {
	res := make([]domain.Action, 0)
	for _, a := range s.source.Actions() {
		if a.BillID == billID {
			res = append(res, a)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date < res[j].Date
	})
	return res
}

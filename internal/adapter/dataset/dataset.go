package dataset

import (
	"fmt"
	"strings"

	"legislation-chat-bot/internal/domain"
)

// Store is the fixed, read-only legislative dataset. Accessors return
// copies so callers cannot mutate the shared records.
type Store struct {
	bills        []domain.Bill
	sponsors     []domain.Sponsor
	billSponsors []domain.BillSponsor
	actions      []domain.Action
}

func NewStore() *Store {
	return &Store{
		bills:        bills,
		sponsors:     sponsors,
		billSponsors: billSponsors,
		actions:      actions,
	}
}

func (s *Store) Bills() []domain.Bill {
	return append([]domain.Bill(nil), s.bills...)
}

func (s *Store) Sponsors() []domain.Sponsor {
	return append([]domain.Sponsor(nil), s.sponsors...)
}

func (s *Store) BillSponsors() []domain.BillSponsor {
	return append([]domain.BillSponsor(nil), s.billSponsors...)
}

func (s *Store) Actions() []domain.Action {
	return append([]domain.Action(nil), s.actions...)
}

// Validate checks that bill numbers are unique ignoring case and that every
// link and action refers to records that exist.
func (s *Store) Validate() error {
	billIDs := make(map[int]struct{}, len(s.bills))
	numbers := make(map[string]struct{}, len(s.bills))
	for _, b := range s.bills {
		key := strings.ToLower(b.Number)
		if _, dup := numbers[key]; dup {
			return fmt.Errorf("duplicate bill number %q", b.Number)
		}
		numbers[key] = struct{}{}
		billIDs[b.ID] = struct{}{}
	}

	sponsorIDs := make(map[int]struct{}, len(s.sponsors))
	for _, sp := range s.sponsors {
		sponsorIDs[sp.ID] = struct{}{}
	}

	for _, link := range s.billSponsors {
		if _, ok := billIDs[link.BillID]; !ok {
			return fmt.Errorf("sponsor link references unknown bill %d", link.BillID)
		}
		if _, ok := sponsorIDs[link.SponsorID]; !ok {
			return fmt.Errorf("sponsor link references unknown sponsor %d", link.SponsorID)
		}
	}
	for _, a := range s.actions {
		if _, ok := billIDs[a.BillID]; !ok {
			return fmt.Errorf("action %d references unknown bill %d", a.ID, a.BillID)
		}
	}
	return nil
}

var bills = []domain.Bill{
	{
		ID:             1,
		SessionYear:    2025,
		Number:         "HB 1001",
		Title:          "Education Funding Enhancement",
		Summary:        "This bill aims to increase the budget for K-12 education in Indiana by adjusting local property tax revenue distributions.",
		Status:         "Passed House",
		LastActionDate: "2025-02-10",
		LastActionText: "Referred to Senate Committee on Education",
		Chamber:        "House",
		Source:         "https://iga.in.gov/legislation/2025/hb1001",
	},
	{
		ID:             2,
		SessionYear:    2025,
		Number:         "HB 1221",
		Title:          "Transportation Infrastructure Program",
		Summary:        "A bill to improve state highways and local roads through targeted funding and a new oversight commission.",
		Status:         "Introduced",
		LastActionDate: "2025-01-15",
		LastActionText: "Filed and referred to House Committee on Transportation",
		Chamber:        "House",
		Source:         "https://iga.in.gov/legislation/2025/hb1221",
	},
	{
		ID:             3,
		SessionYear:    2025,
		Number:         "SB 373",
		Title:          "Healthcare Price Transparency",
		Summary:        "Requires hospitals to publish standard charges for procedures and provides mechanisms for enforcement by the state.",
		Status:         "In Committee",
		LastActionDate: "2025-01-20",
		LastActionText: "Referred to Senate Committee on Health and Provider Services",
		Chamber:        "Senate",
		Source:         "https://iga.in.gov/legislation/2025/sb373",
	},
	{
		ID:             4,
		SessionYear:    2025,
		Number:         "SB 400",
		Title:          "Renewable Energy Incentives",
		Summary:        "Provides tax incentives for solar and wind projects and establishes a green energy development task force.",
		Status:         "Passed Senate",
		LastActionDate: "2025-03-01",
		LastActionText: "Passed Senate with amendments, transmitted to House",
		Chamber:        "Senate",
		Source:         "https://iga.in.gov/legislation/2025/sb400",
	},
	{
		ID:             5,
		SessionYear:    2025,
		Number:         "HB 1390",
		Title:          "Criminal Justice Reform",
		Summary:        "Revises sentencing guidelines and expands reentry programs for nonviolent offenders.",
		Status:         "Enrolled",
		LastActionDate: "2025-03-15",
		LastActionText: "Enrolled, awaiting Governor's signature",
		Chamber:        "House",
		Source:         "https://iga.in.gov/legislation/2025/hb1390",
	},
}

var sponsors = []domain.Sponsor{
	{ID: 1, Name: "Alice Johnson", Party: "R", Chamber: "House"},
	{ID: 2, Name: "Bob Smith", Party: "D", Chamber: "House"},
	{ID: 3, Name: "Carlos Martinez", Party: "R", Chamber: "Senate"},
	{ID: 4, Name: "Diana Chang", Party: "D", Chamber: "House"},
	{ID: 5, Name: "Emily Davis", Party: "R", Chamber: "Senate"},
	{ID: 6, Name: "Frank Thomas", Party: "D", Chamber: "Senate"},
}

var billSponsors = []domain.BillSponsor{
	{BillID: 1, SponsorID: 1, Role: domain.SponsorRolePrimary},
	{BillID: 1, SponsorID: 2, Role: domain.SponsorRoleCoSponsor},
	{BillID: 2, SponsorID: 2, Role: domain.SponsorRolePrimary},
	{BillID: 2, SponsorID: 4, Role: domain.SponsorRoleCoSponsor},
	{BillID: 3, SponsorID: 3, Role: domain.SponsorRolePrimary},
	{BillID: 3, SponsorID: 6, Role: domain.SponsorRoleCoSponsor},
	{BillID: 4, SponsorID: 5, Role: domain.SponsorRolePrimary},
	{BillID: 5, SponsorID: 1, Role: domain.SponsorRolePrimary},
	{BillID: 5, SponsorID: 3, Role: domain.SponsorRoleCoSponsor},
}

var actions = []domain.Action{
	{ID: 1, BillID: 1, Date: "2025-01-05", Chamber: "House", Description: "Introduced in House"},
	{ID: 2, BillID: 1, Date: "2025-01-10", Chamber: "House", Description: "Passed House on third reading"},
	{ID: 3, BillID: 1, Date: "2025-02-10", Chamber: "House", Description: "Referred to Senate Committee on Education"},

	{ID: 4, BillID: 2, Date: "2025-01-15", Chamber: "House", Description: "Filed and referred to House Committee on Transportation"},

	{ID: 5, BillID: 3, Date: "2025-01-12", Chamber: "Senate", Description: "Introduced in Senate"},
	{ID: 6, BillID: 3, Date: "2025-01-20", Chamber: "Senate", Description: "Referred to Senate Committee on Health and Provider Services"},

	{ID: 7, BillID: 4, Date: "2025-02-10", Chamber: "Senate", Description: "Introduced in Senate"},
	{ID: 8, BillID: 4, Date: "2025-02-20", Chamber: "Senate", Description: "Passed Senate with amendments"},
	{ID: 9, BillID: 4, Date: "2025-03-01", Chamber: "Senate", Description: "Transmitted to House"},

	{ID: 10, BillID: 5, Date: "2025-01-15", Chamber: "House", Description: "Introduced in House"},
	{ID: 11, BillID: 5, Date: "2025-02-20", Chamber: "House", Description: "Passed House on third reading"},
	{ID: 12, BillID: 5, Date: "2025-03-15", Chamber: "House", Description: "Enrolled, awaiting Governor's signature"},
}

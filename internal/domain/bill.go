package domain

const (
	SponsorRolePrimary   = "Primary"
	SponsorRoleCoSponsor = "Co-sponsor"
)

type Bill struct {
	ID             int
	SessionYear    int
	Number         string
	Title          string
	Summary        string
	Status         string
	LastActionDate string
	LastActionText string
	Chamber        string
	Source         string
}

type Sponsor struct {
	ID      int
	Name    string
	Party   string
	Chamber string
}

type BillSponsor struct {
	BillID    int
	SponsorID int
	Role      string
}

// Action is a dated legislative event. Date is ISO-8601 and sorts lexically.
type Action struct {
	ID          int    `json:"action_id"`
	BillID      int    `json:"bill_id"`
	Date        string `json:"date"`
	Chamber     string `json:"chamber"`
	Description string `json:"description"`
}

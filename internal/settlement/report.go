package settlement

import "tourbook/internal/core"

// Report is the printable summary of a tour's finances. It carries both
// per-head figures side by side: PerHeadBudget is the planned target share,
// PerHeadActual the share of what was really spent. Member balances are
// measured against the budget target, matching the original report layout.
type Report struct {
	TourID        string           `json:"tourId"`
	TourName      string           `json:"tourName"`
	Currency      string           `json:"currency"`
	Status        core.TourStatus  `json:"status"`
	TotalBudget   core.Money       `json:"totalBudget"`
	TotalExpense  core.Money       `json:"totalExpense"`
	Remaining     core.Money       `json:"remaining"`
	PerHeadBudget core.Money       `json:"perHeadBudget"`
	PerHeadActual core.Money       `json:"perHeadActual"`
	Members       []MemberReport   `json:"members"`
	Categories    []CategoryAmount `json:"categories"`
}

// MemberReport is one settlement row. Balance is PerHeadBudget minus
// AmountPaid; Settlement classifies it for display.
type MemberReport struct {
	MemberID   string     `json:"memberId"`
	Name       string     `json:"name"`
	AmountPaid core.Money `json:"amountPaid"`
	Balance    core.Money `json:"balance"`
	Settlement string     `json:"settlement"`
}

const (
	SettlementOwes     = "owes"
	SettlementOverpaid = "overpaid"
	SettlementSettled  = "settled"
)

// BuildReport assembles the full report from the current aggregate state.
func BuildReport(t *core.Tour) *Report {
	r := &Report{
		TourID:        t.ID,
		TourName:      t.Name,
		Currency:      t.Currency,
		Status:        t.Status,
		TotalBudget:   t.TotalBudget,
		TotalExpense:  t.TotalExpense,
		Remaining:     core.Money{Cents: t.TotalBudget.Cents - t.TotalExpense.Cents},
		PerHeadBudget: PerHeadFromBudget(t),
		PerHeadActual: PerHeadFromExpenses(t),
		Categories:    CategoryBreakdown(t),
	}

	r.Members = make([]MemberReport, 0, len(t.Members))
	for _, m := range t.Members {
		bal := MemberBalanceFromBudget(t, m)
		row := MemberReport{
			MemberID:   m.ID,
			Name:       m.Name,
			AmountPaid: m.AmountPaid,
			Balance:    bal,
		}
		switch {
		case bal.Cents > 0:
			row.Settlement = SettlementOwes
		case bal.Cents < 0:
			row.Settlement = SettlementOverpaid
		default:
			row.Settlement = SettlementSettled
		}
		r.Members = append(r.Members, row)
	}
	return r
}

// Package settlement keeps a tour's derived financial state consistent.
//
// Every operation is a pure computation over the aggregate passed in: no
// storage, no retries. Callers load a fresh tour, apply one mutation, and
// either persist the whole aggregate or discard it.
package settlement

import (
	"errors"
	"sort"
	"time"

	"tourbook/internal/core"
)

var ErrExpenseNotFound = errors.New("expense not found")

// AddExpense appends e to the tour and credits the payer's AmountPaid when
// PaidBy names a real member. An unmatched payer is silently dropped: the
// expense still counts toward the total, the attribution does not.
func AddExpense(t *core.Tour, e core.Expense) {
	if e.Category == "" {
		e.Category = core.DefaultCategory
	}
	if e.Date.IsZero() {
		e.Date = time.Now().UTC()
	}
	if m := t.MemberByID(e.PaidBy); m != nil {
		m.AmountPaid.Cents += e.Price.Cents
	}
	t.Expenses = append(t.Expenses, e)
	Recompute(t)
}

// EditExpense replaces the expense with the given ID. The old payer effect
// is reversed before the new one is applied, so editing an expense that
// keeps the same payer never double-counts. The original date is preserved
// when the update carries none.
func EditExpense(t *core.Tour, expenseID string, updated core.Expense) error {
	i := t.ExpenseIndexByID(expenseID)
	if i < 0 {
		return ErrExpenseNotFound
	}
	old := t.Expenses[i]

	if m := t.MemberByID(old.PaidBy); m != nil {
		m.AmountPaid.Cents -= old.Price.Cents
	}
	if m := t.MemberByID(updated.PaidBy); m != nil {
		m.AmountPaid.Cents += updated.Price.Cents
	}

	updated.ID = old.ID
	if updated.Category == "" {
		updated.Category = core.DefaultCategory
	}
	if updated.Date.IsZero() {
		updated.Date = old.Date
	}
	t.Expenses[i] = updated
	Recompute(t)
	return nil
}

// DeleteExpense removes the expense with the given ID, reversing its payer
// effect first.
func DeleteExpense(t *core.Tour, expenseID string) error {
	i := t.ExpenseIndexByID(expenseID)
	if i < 0 {
		return ErrExpenseNotFound
	}
	e := t.Expenses[i]
	if m := t.MemberByID(e.PaidBy); m != nil {
		m.AmountPaid.Cents -= e.Price.Cents
	}
	t.Expenses = append(t.Expenses[:i], t.Expenses[i+1:]...)
	Recompute(t)
	return nil
}

// Recompute re-derives TotalExpense and PerHead from the expense list.
// It is also the re-derivation step after a whole-aggregate merge, where the
// caller replaced the expense or member lists wholesale.
func Recompute(t *core.Tour) {
	var total int64
	for _, e := range t.Expenses {
		total += e.Price.Cents
	}
	t.TotalExpense = core.Money{Cents: total}
	t.PerHead = PerHeadFromExpenses(t)
}

// PerHeadFromExpenses is the per-member share of what was actually spent:
// ceil(totalExpense / memberCount), zero for a memberless tour.
func PerHeadFromExpenses(t *core.Tour) core.Money {
	return core.Money{Cents: core.CeilDiv(t.TotalExpense.Cents, len(t.Members))}
}

// PerHeadFromBudget is the per-member share of the planned budget:
// ceil(totalBudget / memberCount), zero for a memberless tour.
//
// The two per-head bases intentionally coexist: the tour overview shows the
// spend-based figure while the report targets the budget-based one. Callers
// pick; the engine never conflates them.
func PerHeadFromBudget(t *core.Tour) core.Money {
	return core.Money{Cents: core.CeilDiv(t.TotalBudget.Cents, len(t.Members))}
}

// MemberBalanceFromExpenses is the member's outstanding amount against the
// spend-based share. Positive means the member still owes, negative means
// overpaid, zero means settled.
func MemberBalanceFromExpenses(t *core.Tour, m core.Member) core.Money {
	return core.Money{Cents: PerHeadFromExpenses(t).Cents - m.AmountPaid.Cents}
}

// MemberBalanceFromBudget is the member's outstanding amount against the
// budget-based target.
func MemberBalanceFromBudget(t *core.Tour, m core.Member) core.Money {
	return core.Money{Cents: PerHeadFromBudget(t).Cents - m.AmountPaid.Cents}
}

// CategoryAmount is one row of a category breakdown.
type CategoryAmount struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

// CategoryBreakdown sums expense prices per category, name-sorted for stable
// output. Uncategorized expenses fall under DefaultCategory.
func CategoryBreakdown(t *core.Tour) []CategoryAmount {
	sums := make(map[string]int64)
	for _, e := range t.Expenses {
		cat := e.Category
		if cat == "" {
			cat = core.DefaultCategory
		}
		sums[cat] += e.Price.Cents
	}

	out := make([]CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

package core

import (
	"strings"
	"testing"
)

func TestTourStatusValid(t *testing.T) {
	for _, s := range []TourStatus{StatusPlanning, StatusActive, StatusCompleted, StatusCancelled} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if TourStatus("archived").Valid() {
		t.Error("unknown status accepted")
	}
}

func TestTourValidate(t *testing.T) {
	tour := Tour{
		Name:   "Skardu",
		Status: StatusPlanning,
		Members: []Member{
			{ID: "m1", Name: "Aisha"},
		},
		Expenses: []Expense{
			{ID: "e1", Name: "Fuel", Price: Money{Cents: 100}},
		},
	}
	if err := tour.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Tour)
		want   error
	}{
		{"empty name", func(tr *Tour) { tr.Name = "  " }, ErrEmptyTourName},
		{"overlong name", func(tr *Tour) { tr.Name = strings.Repeat("x", 201) }, ErrTourNameTooLong},
		{"overlong expense name", func(tr *Tour) { tr.Expenses[0].Name = strings.Repeat("x", 201) }, ErrExpenseNameTooLong},
		{"bad status", func(tr *Tour) { tr.Status = "done" }, ErrInvalidStatus},
		{"empty member name", func(tr *Tour) { tr.Members[0].Name = "" }, ErrEmptyMemberName},
		{"empty expense name", func(tr *Tour) { tr.Expenses[0].Name = "" }, ErrEmptyExpenseName},
		{"negative price", func(tr *Tour) { tr.Expenses[0].Price = Money{Cents: -1} }, ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := tour
			cp.Members = append([]Member(nil), tour.Members...)
			cp.Expenses = append([]Expense(nil), tour.Expenses...)
			tt.mutate(&cp)
			if err := cp.Validate(); err != tt.want {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMemberByID(t *testing.T) {
	tour := &Tour{Members: []Member{{ID: "m1", Name: "Aisha"}}}

	if m := tour.MemberByID("m1"); m == nil || m.Name != "Aisha" {
		t.Errorf("MemberByID(m1) = %v", m)
	}
	if m := tour.MemberByID(PoolPayer); m != nil {
		t.Error("pool sentinel matched a member")
	}
	if m := tour.MemberByID(""); m != nil {
		t.Error("empty payer matched a member")
	}
	if m := tour.MemberByID("m2"); m != nil {
		t.Error("unknown ID matched a member")
	}
}

func TestExpenseIndexByID(t *testing.T) {
	tour := &Tour{Expenses: []Expense{{ID: "e1"}, {ID: "e2"}}}
	if i := tour.ExpenseIndexByID("e2"); i != 1 {
		t.Errorf("ExpenseIndexByID(e2) = %d, want 1", i)
	}
	if i := tour.ExpenseIndexByID("e9"); i != -1 {
		t.Errorf("ExpenseIndexByID(e9) = %d, want -1", i)
	}
}

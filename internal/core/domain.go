package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPlanning  TourStatus = "planning"
	StatusActive    TourStatus = "active"
	StatusCompleted TourStatus = "completed"
	StatusCancelled TourStatus = "cancelled"
)

// PoolPayer is the sentinel payer meaning "shared/unattributed".
// Expenses paid by the pool are never credited to a member's AmountPaid.
const PoolPayer = "Pool"

// DefaultCategory is assigned to expenses created without a category.
const DefaultCategory = "General"

// DefaultCurrency matches the original deployment's locale.
const DefaultCurrency = "PKR"

type (
	TourStatus string

	// Member is a named participant in a tour. AmountPaid is a
	// derived-but-stored cumulative total of every expense attributed to
	// this member as payer; the settlement engine maintains it
	// incrementally on each expense mutation.
	Member struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Phone      string `json:"phone,omitempty"`
		Email      string `json:"email,omitempty"`
		Paid       bool   `json:"paid"`
		AmountPaid Money  `json:"amountPaid"`
	}

	// Expense is a single spend inside a tour. PaidBy holds a member ID,
	// or PoolPayer (or empty) when the cost is shared.
	Expense struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Price       Money     `json:"price"`
		Category    string    `json:"category"`
		PaidBy      string    `json:"paidBy"`
		Date        time.Time `json:"date"`
		Description string    `json:"description,omitempty"`
		ReceiptURL  string    `json:"receiptUrl,omitempty"`
	}

	// Tour is the aggregate root. It exclusively owns its members and
	// expenses; TotalExpense and PerHead are derived fields kept
	// consistent by the settlement engine.
	Tour struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Description  string     `json:"description"`
		Destinations []string   `json:"destinations"`
		Members      []Member   `json:"members"`
		Expenses     []Expense  `json:"expenses"`
		TotalBudget  Money      `json:"totalBudget"`
		Currency     string     `json:"currency"`
		TotalExpense Money      `json:"totalExpense"`
		PerHead      Money      `json:"perHead"`
		Status       TourStatus `json:"status"`
		StartDate    time.Time  `json:"startDate,omitempty"`
		EndDate      time.Time  `json:"endDate,omitempty"`
		ImageURL     string     `json:"imageUrl,omitempty"`
		OwnerID      string     `json:"ownerId"`
		CreatedAt    time.Time  `json:"createdAt"`
		UpdatedAt    time.Time  `json:"updatedAt"`
	}

	// User is referenced by tours by ID only. PasswordVersion is a
	// monotonic counter bumped on every successful password change; every
	// session token carries the version current at issuance.
	User struct {
		ID              string
		Email           string
		Name            string
		PasswordHash    string
		PasswordVersion int64
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}
)

var (
	ErrEmptyTourName      = errors.New("empty tour name")
	ErrEmptyMemberName    = errors.New("empty member name")
	ErrEmptyExpenseName   = errors.New("empty expense name")
	ErrTourNameTooLong    = errors.New("tour name too long (max 200 characters)")
	ErrExpenseNameTooLong = errors.New("expense name too long (max 200 characters)")
	ErrInvalidStatus      = errors.New("invalid tour status")
	ErrNegativePrice      = errors.New("negative expense price")
)

func (s TourStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (m Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyMemberName
	}
	return nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyExpenseName
	}
	if len(e.Name) > 200 {
		return ErrExpenseNameTooLong
	}
	if e.Price.Cents < 0 {
		return ErrNegativePrice
	}
	return nil
}

func (t Tour) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyTourName
	}
	if len(t.Name) > 200 {
		return ErrTourNameTooLong
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	for _, m := range t.Members {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	for _, e := range t.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MemberByID returns a pointer into the tour's member slice, or nil when no
// member carries the given ID. PoolPayer and the empty string never match.
func (t *Tour) MemberByID(id string) *Member {
	if id == "" || id == PoolPayer {
		return nil
	}
	for i := range t.Members {
		if t.Members[i].ID == id {
			return &t.Members[i]
		}
	}
	return nil
}

// ExpenseIndexByID returns the position of the expense with the given ID,
// or -1 when absent. Expenses are stored in insertion order; newest-first is
// a display concern.
func (t *Tour) ExpenseIndexByID(id string) int {
	for i := range t.Expenses {
		if t.Expenses[i].ID == id {
			return i
		}
	}
	return -1
}

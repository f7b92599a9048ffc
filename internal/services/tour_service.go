// Package services orchestrates tour and auth operations across storage
// and AMQP.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tourbook/internal/core"
	"tourbook/internal/settlement"
)

// TourStorage is the durable tour store.
type TourStorage interface {
	SaveTour(ctx context.Context, t *core.Tour) error
	GetTour(ctx context.Context, id string) (*core.Tour, error)
	ListTours(ctx context.Context) ([]*core.Tour, error)
	DeleteTour(ctx context.Context, id string) error
}

// SyncPublisher notifies the report worker about tour changes.
type SyncPublisher interface {
	PublishTourSync(ctx context.Context, tourID string, updatedAt time.Time) error
	PublishTourDelete(ctx context.Context, tourID string) error
}

// TourService owns the tour lifecycle. Mutations persist first; the sync
// message is best effort and never fails the request.
type TourService struct {
	storage   TourStorage
	publisher SyncPublisher
}

func NewTourService(storage TourStorage, publisher SyncPublisher) *TourService {
	return &TourService{
		storage:   storage,
		publisher: publisher,
	}
}

// TourUpdate is a partial tour change. Nil fields keep their stored value.
type TourUpdate struct {
	Name         *string
	Description  *string
	Destinations *[]string
	Members      *[]core.Member
	Expenses     *[]core.Expense
	TotalBudget  *core.Money
	Currency     *string
	Status       *core.TourStatus
	StartDate    *time.Time
	EndDate      *time.Time
	ImageURL     *string
}

// CreateTour fills defaults, validates and persists a new tour.
func (s *TourService) CreateTour(ctx context.Context, t *core.Tour, ownerID string) (*core.Tour, error) {
	now := time.Now().UTC()
	t.ID = uuid.New().String()
	t.OwnerID = ownerID
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Currency == "" {
		t.Currency = core.DefaultCurrency
	}
	if t.Status == "" {
		t.Status = core.StatusPlanning
	}
	assignIDs(t)
	settlement.Recompute(t)

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveTour(ctx, t); err != nil {
		return nil, fmt.Errorf("save tour: %w", err)
	}

	s.publishSync(ctx, t)
	return t, nil
}

// GetTour loads one tour.
func (s *TourService) GetTour(ctx context.Context, id string) (*core.Tour, error) {
	return s.storage.GetTour(ctx, id)
}

// ListTours returns all tours, newest first.
func (s *TourService) ListTours(ctx context.Context) ([]*core.Tour, error) {
	return s.storage.ListTours(ctx)
}

// UpdateTour merges the patch into the stored tour and recomputes the
// settlement totals. Collections are replaced whole when present.
func (s *TourService) UpdateTour(ctx context.Context, id string, update TourUpdate) (*core.Tour, error) {
	t, err := s.storage.GetTour(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		t.Name = *update.Name
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Destinations != nil {
		t.Destinations = *update.Destinations
	}
	if update.Members != nil {
		t.Members = *update.Members
	}
	if update.Expenses != nil {
		t.Expenses = *update.Expenses
	}
	if update.TotalBudget != nil {
		t.TotalBudget = *update.TotalBudget
	}
	if update.Currency != nil {
		t.Currency = *update.Currency
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.StartDate != nil {
		t.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		t.EndDate = *update.EndDate
	}
	if update.ImageURL != nil {
		t.ImageURL = *update.ImageURL
	}

	assignIDs(t)
	settlement.Recompute(t)
	t.UpdatedAt = time.Now().UTC()

	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.storage.SaveTour(ctx, t); err != nil {
		return nil, fmt.Errorf("save tour: %w", err)
	}

	s.publishSync(ctx, t)
	return t, nil
}

// DeleteTour removes the tour and notifies the worker.
func (s *TourService) DeleteTour(ctx context.Context, id string) error {
	if err := s.storage.DeleteTour(ctx, id); err != nil {
		return err
	}
	s.publishDelete(ctx, id)
	return nil
}

// AddExpense runs the settlement engine and persists the result.
func (s *TourService) AddExpense(ctx context.Context, tourID string, e core.Expense) (*core.Tour, error) {
	t, err := s.storage.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	settlement.AddExpense(t, e)
	return s.saveMutated(ctx, t)
}

// EditExpense replaces an expense by ID, keeping paid totals consistent.
func (s *TourService) EditExpense(ctx context.Context, tourID, expenseID string, e core.Expense) (*core.Tour, error) {
	t, err := s.storage.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := settlement.EditExpense(t, expenseID, e); err != nil {
		return nil, err
	}
	return s.saveMutated(ctx, t)
}

// DeleteExpense removes an expense by ID.
func (s *TourService) DeleteExpense(ctx context.Context, tourID, expenseID string) (*core.Tour, error) {
	t, err := s.storage.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if err := settlement.DeleteExpense(t, expenseID); err != nil {
		return nil, err
	}
	return s.saveMutated(ctx, t)
}

// Report builds the settlement report for a tour.
func (s *TourService) Report(ctx context.Context, tourID string) (*settlement.Report, error) {
	t, err := s.storage.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	return settlement.BuildReport(t), nil
}

func (s *TourService) saveMutated(ctx context.Context, t *core.Tour) (*core.Tour, error) {
	t.UpdatedAt = time.Now().UTC()
	if err := s.storage.SaveTour(ctx, t); err != nil {
		return nil, fmt.Errorf("save tour: %w", err)
	}
	s.publishSync(ctx, t)
	return t, nil
}

func (s *TourService) publishSync(ctx context.Context, t *core.Tour) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTourSync(ctx, t.ID, t.UpdatedAt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish tour sync message",
			"tour_id", t.ID, "error", err)
		// Don't fail the request - the tour is saved locally
	}
}

func (s *TourService) publishDelete(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTourDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish tour delete message",
			"tour_id", id, "error", err)
	}
}

// assignIDs backfills missing member and expense IDs.
func assignIDs(t *core.Tour) {
	for i := range t.Members {
		if t.Members[i].ID == "" {
			t.Members[i].ID = uuid.New().String()
		}
	}
	for i := range t.Expenses {
		if t.Expenses[i].ID == "" {
			t.Expenses[i].ID = uuid.New().String()
		}
		if t.Expenses[i].Category == "" {
			t.Expenses[i].Category = core.DefaultCategory
		}
	}
}

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourbook/internal/amqp"
	"tourbook/internal/core"
	"tourbook/internal/settlement"
	"tourbook/internal/sheets/memory"
	"tourbook/internal/storage"
)

type fakeTourReader struct {
	tours map[string]*core.Tour
	err   error
}

func (f *fakeTourReader) GetTour(_ context.Context, id string) (*core.Tour, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tours[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeTourReader) ListTours(_ context.Context) ([]*core.Tour, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*core.Tour
	for _, t := range f.tours {
		out = append(out, t)
	}
	return out, nil
}

func workerTour(id string) *core.Tour {
	return &core.Tour{
		ID:       id,
		Name:     "Hunza",
		Currency: "PKR",
		Status:   core.StatusActive,
		Members: []core.Member{
			{ID: "m-1", Name: "Aisha", AmountPaid: core.Money{Cents: 30000}},
			{ID: "m-2", Name: "Bilal"},
		},
		Expenses: []core.Expense{
			{ID: "e-1", Name: "Fuel", Price: core.Money{Cents: 30000}, PaidBy: "m-1", Date: time.Now()},
		},
		TotalBudget:  core.Money{Cents: 100000},
		TotalExpense: core.Money{Cents: 30000},
		PerHead:      core.Money{Cents: 15000},
	}
}

func TestHandleMessage_Sync(t *testing.T) {
	store := &fakeTourReader{tours: map[string]*core.Tour{"t-1": workerTour("t-1")}}
	writer := memory.New()
	w := NewReportWorker(store, writer, 10)

	msg := amqp.NewTourSyncMessage("t-1", time.Now())
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	report := writer.Get("t-1")
	if report == nil {
		t.Fatal("report not written")
	}
	if report.TotalExpense.Cents != 30000 {
		t.Errorf("TotalExpense = %d", report.TotalExpense.Cents)
	}
	if len(report.Members) != 2 {
		t.Errorf("Members = %d, want 2", len(report.Members))
	}
}

func TestHandleMessage_SyncForMissingTourDeletesRow(t *testing.T) {
	store := &fakeTourReader{tours: map[string]*core.Tour{}}
	writer := memory.New()
	w := NewReportWorker(store, writer, 10)

	// Seed a stale row, then sync a tour that no longer exists.
	if _, err := writer.WriteReport(context.Background(), &settlement.Report{TourID: "t-gone"}); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	msg := amqp.NewTourSyncMessage("t-gone", time.Now())
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if writer.Get("t-gone") != nil {
		t.Error("stale report survived")
	}
}

func TestHandleMessage_Delete(t *testing.T) {
	store := &fakeTourReader{tours: map[string]*core.Tour{"t-1": workerTour("t-1")}}
	writer := memory.New()
	w := NewReportWorker(store, writer, 10)
	ctx := context.Background()

	if err := w.HandleMessage(ctx, amqp.NewTourSyncMessage("t-1", time.Now())); err != nil {
		t.Fatalf("HandleMessage(sync) error = %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewTourDeleteMessage("t-1")); err != nil {
		t.Fatalf("HandleMessage(delete) error = %v", err)
	}
	if writer.Get("t-1") != nil {
		t.Error("report survived delete message")
	}
}

func TestHandleMessage_NoWriterIsNoop(t *testing.T) {
	store := &fakeTourReader{tours: map[string]*core.Tour{"t-1": workerTour("t-1")}}
	w := NewReportWorker(store, nil, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewTourSyncMessage("t-1", time.Now())); err != nil {
		t.Errorf("HandleMessage() without writer error = %v", err)
	}
}

func TestHandleMessage_StorageErrorRequeues(t *testing.T) {
	store := &fakeTourReader{err: errors.New("database locked")}
	writer := memory.New()
	w := NewReportWorker(store, writer, 10)

	err := w.HandleMessage(context.Background(), amqp.NewTourSyncMessage("t-1", time.Now()))
	if err == nil {
		t.Fatal("expected error so the delivery gets requeued")
	}
}

func TestSweep(t *testing.T) {
	store := &fakeTourReader{tours: map[string]*core.Tour{
		"t-1": workerTour("t-1"),
		"t-2": workerTour("t-2"),
	}}
	writer := memory.New()
	w := NewReportWorker(store, writer, 10)

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if writer.Get("t-1") == nil || writer.Get("t-2") == nil {
		t.Error("sweep did not export all tours")
	}
}

func TestSweepBatchLimit(t *testing.T) {
	store := &fakeTourReader{tours: map[string]*core.Tour{
		"t-1": workerTour("t-1"),
		"t-2": workerTour("t-2"),
		"t-3": workerTour("t-3"),
	}}
	writer := memory.New()
	w := NewReportWorker(store, writer, 2)

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if writer.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", writer.Writes())
	}
}

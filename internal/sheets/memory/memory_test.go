package memory

import (
	"context"
	"testing"

	"tourbook/internal/core"
	"tourbook/internal/settlement"
)

func TestStoreRoundTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	report := &settlement.Report{
		TourID:       "t-1",
		TourName:     "Hunza",
		Currency:     "PKR",
		TotalExpense: core.Money{Cents: 30000},
	}

	ref, err := s.WriteReport(ctx, report)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if ref != "mem:t-1" {
		t.Errorf("ref = %q", ref)
	}
	if got := s.Get("t-1"); got == nil || got.TourName != "Hunza" {
		t.Errorf("Get() = %+v", got)
	}

	// Overwrite, not append.
	report2 := &settlement.Report{TourID: "t-1", TourName: "Hunza Extended"}
	if _, err := s.WriteReport(ctx, report2); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if got := s.Get("t-1"); got.TourName != "Hunza Extended" {
		t.Errorf("report not overwritten: %q", got.TourName)
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}

	if err := s.DeleteReport(ctx, "t-1"); err != nil {
		t.Fatalf("DeleteReport() error = %v", err)
	}
	if s.Get("t-1") != nil {
		t.Error("report survived delete")
	}

	// Deleting again is a no-op.
	if err := s.DeleteReport(ctx, "t-1"); err != nil {
		t.Errorf("DeleteReport() on absent tour error = %v", err)
	}
}

// Package memory is an in-memory sheets.ReportWriter for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tourbook/internal/settlement"
)

type Store struct {
	mu      sync.Mutex
	reports map[string]*settlement.Report
	writes  int
}

func New() *Store {
	return &Store{reports: make(map[string]*settlement.Report)}
}

// WriteReport stores the report and returns a synthetic row reference.
func (s *Store) WriteReport(_ context.Context, report *settlement.Report) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.TourID] = report
	s.writes++
	return fmt.Sprintf("mem:%s", report.TourID), nil
}

// DeleteReport removes a stored report. Deleting an absent tour is a no-op.
func (s *Store) DeleteReport(_ context.Context, tourID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reports, tourID)
	return nil
}

// Get returns the stored report for a tour, or nil.
func (s *Store) Get(tourID string) *settlement.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[tourID]
}

// Writes returns the number of WriteReport calls.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

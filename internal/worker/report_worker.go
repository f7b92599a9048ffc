// Package worker exports tour settlement reports to a spreadsheet in
// response to AMQP notifications, with a periodic sweep as backup.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tourbook/internal/amqp"
	"tourbook/internal/core"
	"tourbook/internal/settlement"
	"tourbook/internal/sheets"
	"tourbook/internal/storage"
)

// TourReader is the storage surface the worker needs.
type TourReader interface {
	GetTour(ctx context.Context, id string) (*core.Tour, error)
	ListTours(ctx context.Context) ([]*core.Tour, error)
}

// ReportWorker rebuilds and exports settlement reports. Messages carry only
// tour IDs; the worker always reads the current tour from storage, so
// reordered or duplicated deliveries converge on the same sheet state.
type ReportWorker struct {
	storage   TourReader
	writer    sheets.ReportWriter
	batchSize int
}

func NewReportWorker(storage TourReader, writer sheets.ReportWriter, batchSize int) *ReportWorker {
	return &ReportWorker{
		storage:   storage,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single tour sync message from AMQP
func (w *ReportWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	if w.writer == nil {
		slog.WarnContext(ctx, "No report writer configured, skipping export",
			"tour_id", msg.TourID, "type", msg.Type)
		return nil
	}

	switch msg.Type {
	case amqp.TypeTourDelete:
		if err := w.writer.DeleteReport(ctx, msg.TourID); err != nil {
			return fmt.Errorf("delete report: %w", err)
		}
		slog.InfoContext(ctx, "Deleted tour report", "tour_id", msg.TourID)
		return nil

	case amqp.TypeTourSync:
		return w.exportTour(ctx, msg.TourID)

	default:
		slog.WarnContext(ctx, "Unknown message type, dropping",
			"type", msg.Type, "tour_id", msg.TourID)
		return nil
	}
}

func (w *ReportWorker) exportTour(ctx context.Context, tourID string) error {
	tour, err := w.storage.GetTour(ctx, tourID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and processing. Remove the row instead.
		if err := w.writer.DeleteReport(ctx, tourID); err != nil {
			return fmt.Errorf("delete report for missing tour: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get tour from storage: %w", err)
	}

	report := settlement.BuildReport(tour)
	ref, err := w.writer.WriteReport(ctx, report)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	slog.InfoContext(ctx, "Exported tour report",
		"tour_id", tourID,
		"tour_name", tour.Name,
		"sheets_ref", ref,
		"total_expense_cents", report.TotalExpense.Cents)

	return nil
}

// Sweep re-exports up to batchSize tours. This is a backup mechanism in
// case AMQP messages are lost.
func (w *ReportWorker) Sweep(ctx context.Context) error {
	if w.writer == nil {
		return nil
	}

	tours, err := w.storage.ListTours(ctx)
	if err != nil {
		return fmt.Errorf("list tours: %w", err)
	}
	if len(tours) == 0 {
		return nil
	}

	if w.batchSize > 0 && len(tours) > w.batchSize {
		tours = tours[:w.batchSize]
	}

	successCount := 0
	errorCount := 0
	for _, tour := range tours {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.exportTour(ctx, tour.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export tour during sweep",
				"tour_id", tour.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Report sweep completed",
		"total", len(tours),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

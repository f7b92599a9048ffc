// Package sheets defines the outbound port for exporting tour reports to a
// spreadsheet.
package sheets

import (
	"context"

	"tourbook/internal/settlement"
)

// ReportWriter exports settlement reports. One tour occupies one row keyed
// by tour ID, so repeated writes for the same tour overwrite in place.
type ReportWriter interface {
	WriteReport(ctx context.Context, report *settlement.Report) (rowRef string, err error)
	DeleteReport(ctx context.Context, tourID string) error
}

package driven

import (
	"context"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// RunArchive persists finished run reports so past runs can be inspected.
// The core never reads the archive during a run; it only appends to it
// after the report is built.
type RunArchive interface {
	// SaveReport persists a report and its per-invoice results.
	// Returns domain.ErrAlreadyExists if the run ID was saved before.
	SaveReport(ctx context.Context, report *domain.RunReport) error

	// GetReport retrieves a full report by run ID.
	// Returns domain.ErrNotFound if the run is not archived.
	GetReport(ctx context.Context, runID string) (*domain.RunReport, error)

	// ListRuns returns run summaries, most recent first, up to limit.
	// A limit of 0 or less applies the store's default.
	ListRuns(ctx context.Context, limit int) ([]domain.RunSummary, error)

	// Prune deletes all but the most recent keep runs.
	Prune(ctx context.Context, keep int) error

	// Close releases the underlying storage.
	Close() error
}

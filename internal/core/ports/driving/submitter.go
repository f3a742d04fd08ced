package driving

import (
	"context"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// BatchSubmitter drives complete submission runs.
type BatchSubmitter interface {
	// Submit partitions the requests into issuer-exclusive batches and
	// runs them to completion, returning the aggregated report.
	// Configuration errors abort before any batch is scheduled or any
	// session opened. When ctx is cancelled, invoices already in flight
	// finish, no new batch starts, and the partial report is returned
	// together with the context error.
	Submit(ctx context.Context, requests []domain.InvoiceRequest, cfg domain.RunConfig) (*domain.RunReport, error)

	// Plan partitions the requests without opening any session,
	// returning the batch layout a run with this configuration would use.
	Plan(requests []domain.InvoiceRequest, cfg domain.RunConfig) ([]domain.Batch, error)

	// Status returns a snapshot of the run in progress, or nil when no
	// run is active.
	Status() *RunStatus
}

// RunStatus is a point-in-time view of an active run.
type RunStatus struct {
	// RunID identifies the run.
	RunID string

	// TotalInvoices is the number of requests accepted into the run.
	TotalInvoices int

	// TotalBatches is the number of planned batches.
	TotalBatches int

	// CurrentBatch is the 1-based batch currently executing.
	CurrentBatch int

	// Processed counts invoices that reached a terminal outcome.
	Processed int

	// Succeeded and Failed split Processed by outcome.
	Succeeded int
	Failed    int
}

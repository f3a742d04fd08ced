package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driving"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.BatchSubmitter = (*Orchestrator)(nil)

// Orchestrator coordinates complete submission runs: it plans the
// batches, executes them strictly in order and aggregates the report.
// At most one run is active per Orchestrator.
type Orchestrator struct {
	creds   driven.CredentialStore
	factory driven.SessionFactory

	// Status tracking
	mu     sync.RWMutex
	active *driving.RunStatus
}

// NewOrchestrator creates a new run orchestrator.
func NewOrchestrator(creds driven.CredentialStore, factory driven.SessionFactory) *Orchestrator {
	return &Orchestrator{
		creds:   creds,
		factory: factory,
	}
}

// Submit runs the requests to completion and returns the aggregated
// report. Cancelling ctx stops the run between batches; invoices already
// in flight still reach terminal outcomes, bounded by the step timeout,
// and the partial report is returned together with the context error.
func (o *Orchestrator) Submit(ctx context.Context, requests []domain.InvoiceRequest, cfg domain.RunConfig) (*domain.RunReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	batches, err := PlanBatches(requests, cfg.MaxConcurrent)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	if err := o.begin(runID, len(requests), len(batches)); err != nil {
		return nil, err
	}
	defer o.end()

	logger.Info("Run %s: %d invoices in %d batches", runID, len(requests), len(batches))

	started := time.Now()
	sub := &submission{
		creds:       o.creds,
		factory:     o.factory,
		stepTimeout: cfg.StepTimeout,
		outputDir:   cfg.OutputDir,
	}

	var (
		results     []domain.InvoiceResult
		interrupted bool
	)

	for i, batch := range batches {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		if i > 0 && cfg.BatchDelay > 0 {
			if !pause(ctx, cfg.BatchDelay) {
				interrupted = true
				break
			}
		}

		o.setCurrentBatch(batch.Seq)
		logger.Section(fmt.Sprintf("Batch %d/%d", batch.Seq, len(batches)))
		results = append(results, o.executeBatch(ctx, sub, batch)...)
	}

	report := BuildReport(runID, started, time.Now(), len(requests), len(batches), results, interrupted)
	logger.Info("Run %s complete: %d succeeded, %d failed", runID, report.Succeeded, report.Failed)

	if interrupted {
		return report, ctx.Err()
	}
	return report, nil
}

// Plan partitions the requests exactly as Submit would, without opening
// any session.
func (o *Orchestrator) Plan(requests []domain.InvoiceRequest, cfg domain.RunConfig) ([]domain.Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return PlanBatches(requests, cfg.MaxConcurrent)
}

// Status returns a snapshot of the active run, or nil when idle.
func (o *Orchestrator) Status() *driving.RunStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.active == nil {
		return nil
	}
	// Return a copy to avoid race conditions
	status := *o.active
	return &status
}

// executeBatch drives every invoice in the batch concurrently and
// returns once all of them reached a terminal outcome. One invoice's
// failure never aborts its siblings; a panic is converted into a failed
// result rather than allowed to escape.
func (o *Orchestrator) executeBatch(ctx context.Context, sub *submission, batch domain.Batch) []domain.InvoiceResult {
	// In-flight invoices finish even if the run is cancelled. Each of
	// their steps stays bounded by the step timeout.
	flightCtx := context.WithoutCancel(ctx)

	results := make([]domain.InvoiceResult, batch.Size())
	var wg sync.WaitGroup

	for i, req := range batch.Requests {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					now := time.Now()
					results[i] = domain.InvoiceResult{
						Issuer:    req.Issuer,
						Position:  req.Position,
						Type:      req.Type,
						Outcome:   domain.OutcomeFailed,
						Kind:      domain.KindInternal,
						Message:   fmt.Sprintf("panic: %v", r),
						StartedAt: now,
						EndedAt:   now,
					}
				}
				o.noteResult(results[i])
			}()
			results[i] = sub.Run(flightCtx, req)
		}()
	}

	wg.Wait()
	return results
}

// begin registers the run status, rejecting a second concurrent run.
func (o *Orchestrator) begin(runID string, invoices, batches int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active != nil {
		return fmt.Errorf("%w: run %s is active", domain.ErrRunInProgress, o.active.RunID)
	}
	o.active = &driving.RunStatus{
		RunID:         runID,
		TotalInvoices: invoices,
		TotalBatches:  batches,
	}
	return nil
}

// end clears the run status.
func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active = nil
}

func (o *Orchestrator) setCurrentBatch(seq int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active != nil {
		o.active.CurrentBatch = seq
	}
}

// noteResult folds one terminal outcome into the live status.
func (o *Orchestrator) noteResult(res domain.InvoiceResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return
	}
	o.active.Processed++
	if res.Succeeded() {
		o.active.Succeeded++
	} else {
		o.active.Failed++
	}
}

// pause waits out the inter-batch delay, returning false when the run is
// cancelled before it elapses.
func pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package domain

import "time"

// Outcome is the terminal disposition of one invoice submission.
type Outcome string

const (
	// OutcomeSucceeded means the portal issued an invoice identifier and
	// the document was retrieved.
	OutcomeSucceeded Outcome = "succeeded"

	// OutcomeFailed means the submission terminated with an error.
	OutcomeFailed Outcome = "failed"
)

// InvoiceResult is the immutable terminal record for one invoice.
type InvoiceResult struct {
	// Issuer is the CUIT of the originating request.
	Issuer TaxID

	// Position is the originating request's index in the input order.
	Position int

	// Type is the invoice type of the originating request.
	Type InvoiceType

	// Outcome is the terminal disposition.
	Outcome Outcome

	// InvoiceID is the portal-issued identifier. Set whenever the portal
	// issued one, including document retrieval failures after a
	// successful confirmation.
	InvoiceID string

	// DocumentPath is where the generated document was stored. Success only.
	DocumentPath string

	// Kind classifies the failure. Failure only.
	Kind ErrorKind

	// Message carries the failure detail. Failure only.
	Message string

	// StepAtFailure is the wizard step where the failure occurred.
	// Failure only; empty when the failure preceded the wizard
	// (credential lookup, session opening).
	StepAtFailure Step

	// StartedAt and EndedAt bound the submission attempt.
	StartedAt time.Time
	EndedAt   time.Time
}

// Succeeded reports whether the invoice reached a success outcome.
func (r InvoiceResult) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

// Duration returns how long the submission attempt took.
func (r InvoiceResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// RunReport is the aggregated outcome of one run. Produced once, read-only
// afterward. Results preserve the original input order regardless of the
// order invoices completed in.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string

	// StartedAt and EndedAt bound the run.
	StartedAt time.Time
	EndedAt   time.Time

	// Total is the number of requests accepted into the run.
	Total int

	// Batches is the number of batches the run was planned into.
	Batches int

	// Succeeded and Failed count terminal outcomes.
	Succeeded int
	Failed    int

	// ByKind counts failures per error kind.
	ByKind map[ErrorKind]int

	// Results lists every attempted invoice in original input order.
	Results []InvoiceResult

	// Interrupted is true when cancellation halted the run before every
	// batch was attempted. Unattempted requests carry no result; they
	// are visible as Total minus len(Results).
	Interrupted bool
}

// Attempted returns the number of invoices that reached a terminal outcome.
func (r *RunReport) Attempted() int {
	return len(r.Results)
}

// RunSummary is the archive's listing row for one run.
type RunSummary struct {
	// ID uniquely identifies the run.
	ID string

	// StartedAt and EndedAt bound the run.
	StartedAt time.Time
	EndedAt   time.Time

	// Total, Succeeded and Failed are the run's aggregate counts.
	Total     int
	Succeeded int
	Failed    int

	// Interrupted is true when the run was cancelled mid-flight.
	Interrupted bool
}

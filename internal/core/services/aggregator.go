package services

import (
	"sort"
	"time"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// BuildReport aggregates terminal outcomes into a run report. Results
// are re-ordered by original input position, so the report reads in
// manifest order regardless of how the batches interleaved. Pure
// function: no side effects beyond reading its inputs.
func BuildReport(runID string, startedAt, endedAt time.Time, total, batches int, results []domain.InvoiceResult, interrupted bool) *domain.RunReport {
	ordered := make([]domain.InvoiceResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	report := &domain.RunReport{
		ID:          runID,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
		Total:       total,
		Batches:     batches,
		ByKind:      make(map[domain.ErrorKind]int),
		Results:     ordered,
		Interrupted: interrupted,
	}

	for _, res := range ordered {
		if res.Succeeded() {
			report.Succeeded++
			continue
		}
		report.Failed++
		report.ByKind[res.Kind]++
	}

	return report
}

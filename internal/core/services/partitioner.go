package services

import (
	"fmt"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// PlanBatches partitions requests into issuer-exclusive batches.
//
// Issuers are visited round-robin in order of first appearance, and the
// cursor carries over from one batch to the next so no issuer is starved.
// A batch closes when it reaches maxConcurrent requests or when every
// issuer has been offered a slot. Requests sharing an issuer keep their
// input order, so an issuer's invoices land in consecutive batches.
func PlanBatches(requests []domain.InvoiceRequest, maxConcurrent int) ([]domain.Batch, error) {
	if maxConcurrent < 1 {
		return nil, fmt.Errorf("%w: max concurrent must be at least 1, got %d", domain.ErrConfiguration, maxConcurrent)
	}
	if len(requests) == 0 {
		return nil, nil
	}

	// Queue pending requests per issuer, remembering the order issuers
	// first appear in.
	queues := make(map[domain.TaxID][]domain.InvoiceRequest, len(requests))
	ring := make([]domain.TaxID, 0, len(requests))
	for _, req := range requests {
		if _, seen := queues[req.Issuer]; !seen {
			ring = append(ring, req.Issuer)
		}
		queues[req.Issuer] = append(queues[req.Issuer], req)
	}

	var batches []domain.Batch
	remaining := len(requests)
	cursor := 0

	for remaining > 0 {
		batch := domain.Batch{Seq: len(batches) + 1}

		// One full lap over the ring at most: visiting an issuer twice
		// in the same batch would break exclusivity.
		for scanned := 0; scanned < len(ring) && batch.Size() < maxConcurrent; scanned++ {
			issuer := ring[cursor%len(ring)]
			cursor++

			queue := queues[issuer]
			if len(queue) == 0 {
				continue
			}
			batch.Requests = append(batch.Requests, queue[0])
			queues[issuer] = queue[1:]
			remaining--
		}

		batches = append(batches, batch)
	}

	return batches, nil
}

package domain

// Batch is an ordered group of invoice requests authorised to run
// concurrently. No two requests in a batch share an issuer, and a batch
// never exceeds the run's concurrency limit. Batches are created by the
// partitioner, consumed once by the executor, then discarded.
type Batch struct {
	// Seq is the 1-based position of the batch within the run.
	Seq int

	// Requests are the invoices submitted concurrently in this batch.
	Requests []InvoiceRequest
}

// Size returns the number of requests in the batch.
func (b Batch) Size() int {
	return len(b.Requests)
}

// HasIssuer reports whether the batch already holds a request from the
// given issuer.
func (b Batch) HasIssuer(id TaxID) bool {
	for _, r := range b.Requests {
		if r.Issuer == id {
			return true
		}
	}
	return false
}

// Issuers returns the issuers in batch order.
func (b Batch) Issuers() []TaxID {
	ids := make([]TaxID, 0, len(b.Requests))
	for _, r := range b.Requests {
		ids = append(ids, r.Issuer)
	}
	return ids
}

// Package domain defines the core business entities for Facturante.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TaxID: An issuer's 11-digit CUIT
//   - InvoiceRequest: One validated invoice to submit
//   - Batch: Invoices authorised to run concurrently
//   - InvoiceResult: The terminal outcome of one submission
//   - RunReport: The aggregated outcome of a whole run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

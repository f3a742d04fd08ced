// Package services implements the driving port interfaces.
// Services contain the core business logic: partitioning requests into
// issuer-exclusive batches, driving each invoice through the portal
// wizard, and aggregating terminal outcomes into a run report.
//
// Services are pure Go with no browser or portal dependencies.
package services

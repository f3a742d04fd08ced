// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SessionFactory: Opens authenticated portal sessions
//   - Session: One issuer-bound interactive portal context
//   - CredentialStore: Issuer credential persistence and lookup
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunArchive: Run report persistence. Without it, reports are only
//     displayed, never archived.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven

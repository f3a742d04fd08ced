package domain

import (
	"context"
	"errors"
)

// Domain errors represent business failures during a submission run.
// These are distinct from infrastructure errors.
var (
	// ErrConfiguration indicates invalid run configuration.
	// It aborts the whole run before any batch is scheduled.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrValidation indicates an invoice request failed field validation.
	ErrValidation = errors.New("invalid invoice request")

	// ErrCredentialNotFound indicates no stored credential matches the issuer.
	ErrCredentialNotFound = errors.New("credential not found")

	// ErrAuthentication indicates the portal rejected the issuer's login.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionExpired indicates the authenticated portal session was lost
	// mid-submission.
	ErrSessionExpired = errors.New("session expired")

	// ErrNavigation indicates the portal page did not match expectations.
	ErrNavigation = errors.New("navigation failed")

	// ErrFormRejected indicates the portal rejected the submitted form data
	// at some wizard step.
	ErrFormRejected = errors.New("form rejected")

	// ErrDocumentRetrieval indicates the invoice was generated but its
	// document could not be retrieved.
	ErrDocumentRetrieval = errors.New("document retrieval failed")

	// ErrRunInProgress indicates a submission run is already running.
	ErrRunInProgress = errors.New("run in progress")

	// Store Errors.

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind classifies a terminal invoice failure for reporting.
type ErrorKind string

const (
	// KindValidation marks requests rejected by field validation.
	KindValidation ErrorKind = "validation"
	// KindAuthentication marks portal login failures.
	KindAuthentication ErrorKind = "authentication"
	// KindCredentialNotFound marks issuers with no stored credential.
	KindCredentialNotFound ErrorKind = "credential_not_found"
	// KindSessionExpired marks sessions lost mid-submission.
	KindSessionExpired ErrorKind = "session_expired"
	// KindNavigation marks portal pages that did not match expectations.
	KindNavigation ErrorKind = "navigation"
	// KindFormRejection marks portal-side business-rule rejections.
	KindFormRejection ErrorKind = "form_rejection"
	// KindDocumentRetrieval marks generated invoices whose document
	// could not be retrieved.
	KindDocumentRetrieval ErrorKind = "document_retrieval"
	// KindTimeout marks wizard steps that exceeded their deadline.
	KindTimeout ErrorKind = "timeout"
	// KindConfiguration marks run-level configuration failures.
	KindConfiguration ErrorKind = "configuration"
	// KindInternal marks unclassified errors and recovered panics.
	KindInternal ErrorKind = "internal"
)

// IsValid returns true if the kind is a known classification.
func (k ErrorKind) IsValid() bool {
	switch k {
	case KindValidation, KindAuthentication, KindCredentialNotFound,
		KindSessionExpired, KindNavigation, KindFormRejection,
		KindDocumentRetrieval, KindTimeout, KindConfiguration, KindInternal:
		return true
	}
	return false
}

// String returns the string representation of the kind.
func (k ErrorKind) String() string {
	return string(k)
}

// KindOf maps an error chain to its ErrorKind. Timeouts take precedence
// because a step deadline may wrap a lower-level error. Unrecognised
// errors classify as KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrCredentialNotFound):
		return KindCredentialNotFound
	case errors.Is(err, ErrSessionExpired):
		return KindSessionExpired
	case errors.Is(err, ErrNavigation):
		return KindNavigation
	case errors.Is(err, ErrFormRejected):
		return KindFormRejection
	case errors.Is(err, ErrDocumentRetrieval):
		return KindDocumentRetrieval
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindInternal
	}
}

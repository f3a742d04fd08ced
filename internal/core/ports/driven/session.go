package driven

import (
	"context"
	"time"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// Session is one authenticated, interactive portal context bound to a
// single issuer credential. Exactly one invoice's state machine drives a
// session at a time; the executor owns its lifetime and closes it on
// every exit path, including failures.
//
// Each method performs one wizard step. Implementations classify portal
// failures by wrapping the domain sentinel errors (ErrNavigation,
// ErrSessionExpired, ErrFormRejected, ErrDocumentRetrieval), so the
// state machine can report an error kind without knowing portal details.
type Session interface {
	// Issuer returns the CUIT the session is authenticated as.
	Issuer() domain.TaxID

	// OpenGenerator navigates from the service home to the invoice
	// generator, selecting the represented company when the portal
	// offers a choice. companyName may be empty to accept the default.
	OpenGenerator(ctx context.Context, companyName string) error

	// SelectInvoiceType picks the point of sale and invoice type and
	// advances to the data entry forms.
	SelectInvoiceType(ctx context.Context, pos domain.PointOfSale, t domain.InvoiceType) error

	// FillIssuanceData fills the issuance date, concept type and, when
	// the concept includes services, the billing period.
	FillIssuanceData(ctx context.Context, date time.Time, concept domain.ConceptType, period *domain.ServicePeriod) error

	// FillRecipientData fills the recipient IVA condition, the recipient
	// CUIT (unless the condition waives it) and the payment method.
	FillRecipientData(ctx context.Context, cond domain.IVACondition, recipient domain.TaxID, payment domain.PaymentMethod) error

	// FillContentData fills the invoice line items. The issuer category
	// decides whether per-line IVA rates are entered.
	FillContentData(ctx context.Context, category domain.IssuerCategory, items []domain.LineItem) error

	// Confirm triggers invoice generation and returns the portal-issued
	// invoice identifier. Portal-side rejections wrap ErrFormRejected.
	Confirm(ctx context.Context) (string, error)

	// RetrieveDocument downloads the generated document. When outputDir
	// is non-empty the file is moved under an issuer subdirectory and
	// its final path returned; otherwise the file stays in the session's
	// ephemeral directory, which is removed when the session closes.
	RetrieveDocument(ctx context.Context, invoiceID, outputDir string) (string, error)

	// Close releases the session and its automation resources.
	// Safe to call more than once.
	Close() error
}

// SessionFactory opens authenticated portal sessions, one per invoice.
type SessionFactory interface {
	// Open launches a fresh isolated session, authenticates with the
	// given credential and lands on the invoicing service. Login
	// failures wrap domain.ErrAuthentication. The caller must Close the
	// returned session on every exit path.
	Open(ctx context.Context, cred domain.Credential) (Session, error)
}

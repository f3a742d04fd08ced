package driven

import (
	"context"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// CredentialStore persists issuer portal credentials. The store is
// read-only for the duration of a run; writes happen only through the
// issuer management commands.
type CredentialStore interface {
	// Get retrieves the credential for an issuer.
	// Returns domain.ErrCredentialNotFound if no credential is stored.
	Get(ctx context.Context, issuer domain.TaxID) (*domain.Credential, error)

	// Save stores a credential. Creates if new, updates if it exists.
	Save(ctx context.Context, cred domain.Credential) error

	// Delete removes an issuer's credential.
	// Returns domain.ErrNotFound if no credential is stored.
	Delete(ctx context.Context, issuer domain.TaxID) error

	// List returns all stored credentials ordered by issuer.
	List(ctx context.Context) ([]domain.Credential, error)
}

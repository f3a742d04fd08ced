package domain

import "time"

// Credential is one issuer's portal login. The clave fiscal is the
// password AFIP issues per taxpayer; it is stored locally and read-only
// during a run.
//
// JSON tags match the on-disk issuer store format.
type Credential struct {
	// Issuer is the CUIT the credential belongs to.
	Issuer TaxID `json:"cuit"`

	// ClaveFiscal is the portal password. Never logged.
	ClaveFiscal string `json:"clave_fiscal"`

	// Category is the issuer's tax regime. Informational; manifest
	// entries may override it per invoice.
	Category IssuerCategory `json:"category,omitempty"`

	// CompanyName optionally names the company the credential operates
	// as on the portal's representation screen.
	CompanyName string `json:"company_name,omitempty"`

	// CreatedAt is when the credential was stored.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the credential was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsComplete returns true if the credential can open a portal session.
func (c *Credential) IsComplete() bool {
	return c.Issuer.IsValid() && c.ClaveFiscal != ""
}

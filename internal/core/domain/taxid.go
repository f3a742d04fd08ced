package domain

import (
	"fmt"
	"strings"
)

// TaxID is a CUIT (Código Único de Identificación Tributaria): the 11-digit
// numeric identifier the tax authority assigns to each taxpayer.
type TaxID string

// ParseTaxID creates a TaxID from a raw string. Separator characters
// (dashes, spaces) are stripped before validation, so both
// "20123456789" and "20-12345678-9" are accepted.
func ParseTaxID(raw string) (TaxID, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 11 {
		return "", fmt.Errorf("%w: CUIT must be exactly 11 digits, got %q", ErrValidation, raw)
	}
	return TaxID(digits), nil
}

// String returns the bare 11-digit form.
func (t TaxID) String() string {
	return string(t)
}

// IsValid returns true if the TaxID is exactly 11 numeric digits.
func (t TaxID) IsValid() bool {
	if len(t) != 11 {
		return false
	}
	for _, r := range t {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

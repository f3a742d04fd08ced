package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the dd/mm/yyyy format the portal expects in every date field.
const DateLayout = "02/01/2006"

// FormatDate renders a date the way the portal expects it.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a portal-format date string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be dd/mm/yyyy, got %q", ErrValidation, s)
	}
	return t, nil
}

// ServicePeriod is the billing period declared when an invoice concept
// includes services.
type ServicePeriod struct {
	// Start is the first day covered by the invoice.
	Start time.Time

	// End is the last day covered by the invoice.
	End time.Time

	// Due is the payment due date.
	Due time.Time
}

// ValidateAt checks the period's internal ordering against a reference
// "today". The portal rejects periods that start in the future or fall
// due in the past.
func (p ServicePeriod) ValidateAt(now time.Time) error {
	today := dateOnly(now)
	switch {
	case p.End.Before(p.Start):
		return fmt.Errorf("%w: period end %s is before start %s", ErrValidation,
			FormatDate(p.End), FormatDate(p.Start))
	case p.Due.Before(p.End):
		return fmt.Errorf("%w: payment due %s is before period end %s", ErrValidation,
			FormatDate(p.Due), FormatDate(p.End))
	case dateOnly(p.Due).Before(today):
		return fmt.Errorf("%w: payment due %s is in the past", ErrValidation, FormatDate(p.Due))
	case dateOnly(p.Start).After(today):
		return fmt.Errorf("%w: period start %s is in the future", ErrValidation, FormatDate(p.Start))
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// LineItem is one invoice line. Amounts are kept as the exact strings
// typed into the portal, so no precision is lost to binary floats.
type LineItem struct {
	// Code is the service code, 0-9999, typed zero-padded to four digits.
	Code int

	// Description is the free-text line description.
	Description string

	// UnitPrice is the price per unit: up to 19 digits, at most two decimals.
	UnitPrice string

	// Discount is an optional discount percentage between 0 and 100.
	// Empty means no discount.
	Discount string

	// Rate is the line's IVA rate. Required for Responsable Inscripto
	// issuers, must stay RateNone for Monotributo.
	Rate IVARate
}

// PaddedCode returns the four-digit zero-padded service code.
func (l LineItem) PaddedCode() string {
	return fmt.Sprintf("%04d", l.Code)
}

// HasDiscount reports whether the line declares a non-zero discount.
func (l LineItem) HasDiscount() bool {
	return l.Discount != "" && l.Discount != "0"
}

// Validate checks the line against the issuer's tax regime.
func (l LineItem) Validate(cat IssuerCategory) error {
	if l.Code < 0 || l.Code > 9999 {
		return fmt.Errorf("%w: service code must be up to 4 digits, got %d", ErrValidation, l.Code)
	}
	if strings.TrimSpace(l.Description) == "" {
		return fmt.Errorf("%w: line description is required", ErrValidation)
	}
	if err := validateAmount(l.UnitPrice, 19); err != nil {
		return fmt.Errorf("%w: unit price %q: %v", ErrValidation, l.UnitPrice, err)
	}
	if l.Discount != "" {
		if err := validateAmount(l.Discount, 6); err != nil {
			return fmt.Errorf("%w: discount %q: %v", ErrValidation, l.Discount, err)
		}
		pct, _ := strconv.ParseFloat(l.Discount, 64)
		if pct > 100 {
			return fmt.Errorf("%w: discount %q exceeds 100%%", ErrValidation, l.Discount)
		}
	}
	switch cat {
	case CategoryResponsableInscripto:
		if !l.Rate.IsValid() {
			return fmt.Errorf("%w: IVA rate is required for Responsable Inscripto lines", ErrValidation)
		}
	case CategoryMonotributo:
		if l.Rate != RateNone {
			return fmt.Errorf("%w: IVA rate must not be set for Monotributo lines", ErrValidation)
		}
	}
	return nil
}

// validateAmount checks a decimal string: digits with an optional dot,
// at most two decimal places, at most maxDigits digits in total.
func validateAmount(s string, maxDigits int) error {
	if s == "" {
		return fmt.Errorf("amount is empty")
	}
	intPart, fracPart, hasDot := strings.Cut(s, ".")
	if intPart == "" || (hasDot && fracPart == "") {
		return fmt.Errorf("malformed amount")
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return fmt.Errorf("amount must contain only digits and an optional decimal point")
		}
	}
	if len(intPart)+len(fracPart) > maxDigits {
		return fmt.Errorf("amount exceeds %d digits", maxDigits)
	}
	if len(fracPart) > 2 {
		return fmt.Errorf("amount has more than 2 decimal places")
	}
	return nil
}

// InvoiceRequest is one invoice to submit. It is immutable once accepted
// into a run. Identity is (Issuer, Position): per-issuer input order must
// be preserved because the portal numbers invoices sequentially per issuer.
type InvoiceRequest struct {
	// Issuer is the CUIT the invoice is emitted under.
	Issuer TaxID

	// Category is the issuer's tax regime.
	Category IssuerCategory

	// CompanyName optionally selects the represented company on the
	// portal's company screen when the credential covers several.
	CompanyName string

	// Position is the request's index in the original input order.
	Position int

	// Type is the invoice type to generate.
	Type InvoiceType

	// PointOfSale is the issuing point of sale.
	PointOfSale PointOfSale

	// IssuanceDate is the invoice date.
	IssuanceDate time.Time

	// Concept declares whether products, services or both are invoiced.
	Concept ConceptType

	// Period is the billing period, required when Concept includes services.
	Period *ServicePeriod

	// RecipientCondition is the recipient's IVA condition.
	RecipientCondition IVACondition

	// RecipientID is the recipient's CUIT. Required unless the recipient
	// is a final consumer.
	RecipientID TaxID

	// Payment is the declared payment method.
	Payment PaymentMethod

	// Items are the invoice lines. At least one is required.
	Items []LineItem
}

// Validate checks the request against time.Now. See ValidateAt.
func (r InvoiceRequest) Validate() error {
	return r.ValidateAt(time.Now())
}

// ValidateAt checks every field the portal would reject, using now as the
// reference date for period validation. Requests are expected to arrive
// pre-validated; the submission pipeline calls this again and converts any
// failure into a terminal per-invoice result.
func (r InvoiceRequest) ValidateAt(now time.Time) error {
	if !r.Issuer.IsValid() {
		return fmt.Errorf("%w: issuer CUIT %q is not 11 digits", ErrValidation, r.Issuer)
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("%w: unknown issuer category %q", ErrValidation, r.Category)
	}
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: unknown invoice type %d", ErrValidation, int(r.Type))
	}
	if !r.Type.AllowedFor(r.Category) {
		return fmt.Errorf("%w: %s cannot be emitted by a %s issuer", ErrValidation, r.Type, r.Category)
	}
	if !r.PointOfSale.IsValid() {
		return fmt.Errorf("%w: point of sale %d out of range", ErrValidation, int(r.PointOfSale))
	}
	if r.IssuanceDate.Year() < 2000 {
		return fmt.Errorf("%w: issuance date must be after year 2000", ErrValidation)
	}
	if !r.Concept.IsValid() {
		return fmt.Errorf("%w: unknown concept type %d", ErrValidation, int(r.Concept))
	}
	if r.Concept.IncludesServices() {
		if r.Period == nil {
			return fmt.Errorf("%w: a billing period is required when the concept includes services", ErrValidation)
		}
		if err := r.Period.ValidateAt(now); err != nil {
			return err
		}
	}
	if !r.RecipientCondition.IsValid() {
		return fmt.Errorf("%w: unknown IVA condition %d", ErrValidation, int(r.RecipientCondition))
	}
	if !r.RecipientCondition.ValidFor(r.Category, r.Type) {
		return fmt.Errorf("%w: IVA condition %s is not selectable on %s", ErrValidation,
			r.RecipientCondition, r.Type)
	}
	if r.RecipientCondition.RequiresRecipientID() {
		if !r.RecipientID.IsValid() {
			return fmt.Errorf("%w: recipient CUIT is required for %s", ErrValidation, r.RecipientCondition)
		}
	}
	if !r.Payment.IsValid() {
		return fmt.Errorf("%w: unknown payment method %d", ErrValidation, int(r.Payment))
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one line item is required", ErrValidation)
	}
	for i, item := range r.Items {
		if err := item.Validate(r.Category); err != nil {
			return fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return nil
}

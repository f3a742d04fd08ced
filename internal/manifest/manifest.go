// Package manifest loads invoice manifests into ordered requests.
//
// A manifest is a JSON or YAML array of invoice entries. Each entry
// names the issuer, the invoice header, the recipient and the line
// items; dates use the dd/mm/yyyy form the portal itself expects.
// Entries are mapped to domain requests with their positions assigned
// in file order and validated one by one, so a bad entry is reported
// with its index before anything reaches the portal.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
)

// entry is one manifest element.
type entry struct {
	Issuer    issuerEntry    `json:"issuer" yaml:"issuer"`
	Invoice   invoiceEntry   `json:"invoice" yaml:"invoice"`
	Recipient recipientEntry `json:"recipient" yaml:"recipient"`
	Items     []itemEntry    `json:"items" yaml:"items"`
}

type issuerEntry struct {
	CUIT     string `json:"cuit" yaml:"cuit"`
	Category string `json:"category" yaml:"category"`
	Company  string `json:"company" yaml:"company"`
}

type invoiceEntry struct {
	Type         int          `json:"type" yaml:"type"`
	PointOfSale  int          `json:"point_of_sale" yaml:"point_of_sale"`
	IssuanceDate string       `json:"issuance_date" yaml:"issuance_date"`
	Concept      int          `json:"concept" yaml:"concept"`
	Period       *periodEntry `json:"service_period" yaml:"service_period"`
}

type periodEntry struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Due   string `json:"due" yaml:"due"`
}

type recipientEntry struct {
	IVACondition  int    `json:"iva_condition" yaml:"iva_condition"`
	CUIT          string `json:"cuit" yaml:"cuit"`
	PaymentMethod int    `json:"payment_method" yaml:"payment_method"`
}

type itemEntry struct {
	Code        int    `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
	UnitPrice   amount `json:"unit_price" yaml:"unit_price"`
	IVARate     int    `json:"iva_rate" yaml:"iva_rate"`
	Discount    amount `json:"discount" yaml:"discount"`
}

// amount accepts quoted and bare numeric scalars alike, preserving the
// digits exactly as written. The portal receives amounts keystroke for
// keystroke, so nothing may pass through a float.
type amount string

func (a *amount) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	if string(data) == "null" {
		*a = ""
		return nil
	}
	*a = amount(data)
	return nil
}

func (a *amount) UnmarshalYAML(node *yaml.Node) error {
	*a = amount(node.Value)
	return nil
}

// Load reads a manifest file and returns the ordered, validated invoice
// requests. The format is chosen by extension: .json, .yaml or .yml.
func Load(path string) ([]domain.InvoiceRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &entries)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("%w: unsupported manifest extension %q", domain.ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse manifest: %v", domain.ErrInvalidInput, err)
	}

	return buildRequests(entries)
}

func buildRequests(entries []entry) ([]domain.InvoiceRequest, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	reqs := make([]domain.InvoiceRequest, 0, len(entries))
	for i, e := range entries {
		req, err := e.toRequest(i)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func (e entry) toRequest(position int) (domain.InvoiceRequest, error) {
	issuer, err := domain.ParseTaxID(e.Issuer.CUIT)
	if err != nil {
		return domain.InvoiceRequest{}, fmt.Errorf("issuer cuit: %w", err)
	}

	issued, err := domain.ParseDate(e.Invoice.IssuanceDate)
	if err != nil {
		return domain.InvoiceRequest{}, fmt.Errorf("issuance_date: %w", err)
	}

	req := domain.InvoiceRequest{
		Issuer:             issuer,
		Category:           domain.IssuerCategory(e.Issuer.Category),
		CompanyName:        e.Issuer.Company,
		Position:           position,
		Type:               domain.InvoiceType(e.Invoice.Type),
		PointOfSale:        domain.PointOfSale(e.Invoice.PointOfSale),
		IssuanceDate:       issued,
		Concept:            domain.ConceptType(e.Invoice.Concept),
		RecipientCondition: domain.IVACondition(e.Recipient.IVACondition),
		Payment:            domain.PaymentMethod(e.Recipient.PaymentMethod),
	}

	if e.Invoice.Period != nil {
		period, err := e.Invoice.Period.toPeriod()
		if err != nil {
			return domain.InvoiceRequest{}, err
		}
		req.Period = period
	}

	if e.Recipient.CUIT != "" {
		recipient, err := domain.ParseTaxID(e.Recipient.CUIT)
		if err != nil {
			return domain.InvoiceRequest{}, fmt.Errorf("recipient cuit: %w", err)
		}
		req.RecipientID = recipient
	}

	for _, item := range e.Items {
		req.Items = append(req.Items, domain.LineItem{
			Code:        item.Code,
			Description: item.Description,
			UnitPrice:   string(item.UnitPrice),
			Discount:    string(item.Discount),
			Rate:        domain.IVARate(item.IVARate),
		})
	}

	return req, nil
}

func (p periodEntry) toPeriod() (*domain.ServicePeriod, error) {
	start, err := domain.ParseDate(p.Start)
	if err != nil {
		return nil, fmt.Errorf("service_period.start: %w", err)
	}
	end, err := domain.ParseDate(p.End)
	if err != nil {
		return nil, fmt.Errorf("service_period.end: %w", err)
	}
	due, err := domain.ParseDate(p.Due)
	if err != nil {
		return nil, fmt.Errorf("service_period.due: %w", err)
	}
	return &domain.ServicePeriod{Start: start, End: end, Due: due}, nil
}

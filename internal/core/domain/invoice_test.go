package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)

// validRequest returns a request that passes every validation check.
func validRequest() InvoiceRequest {
	return InvoiceRequest{
		Issuer:       TaxID("20111111112"),
		Category:     CategoryMonotributo,
		Position:     0,
		Type:         FacturaC,
		PointOfSale:  3,
		IssuanceDate: testNow,
		Concept:      ConceptServicios,
		Period: &ServicePeriod{
			Start: testNow.AddDate(0, -1, 0),
			End:   testNow,
			Due:   testNow.AddDate(0, 0, 10),
		},
		RecipientCondition: CondConsumidorFinal,
		Payment:            PayContado,
		Items: []LineItem{
			{Code: 17, Description: "Servicios profesionales", UnitPrice: "15000.50"},
		},
	}
}

// TestInvoiceRequest_Valid tests that a well-formed request validates
func TestInvoiceRequest_Valid(t *testing.T) {
	require.NoError(t, validRequest().ValidateAt(testNow))
}

// TestInvoiceRequest_ValidResponsableInscripto tests a well-formed RI request
func TestInvoiceRequest_ValidResponsableInscripto(t *testing.T) {
	r := validRequest()
	r.Category = CategoryResponsableInscripto
	r.Type = FacturaA
	r.RecipientCondition = CondIVAResponsableInscripto
	r.RecipientID = TaxID("30222222223")
	r.Items = []LineItem{
		{Code: 99, Description: "Consultoría", UnitPrice: "100000", Rate: RateVeintiuno},
	}
	require.NoError(t, r.ValidateAt(testNow))
}

// TestInvoiceRequest_Invalid tests each field rejection
func TestInvoiceRequest_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*InvoiceRequest)
	}{
		{"bad issuer", func(r *InvoiceRequest) { r.Issuer = "123" }},
		{"bad category", func(r *InvoiceRequest) { r.Category = "autonomo" }},
		{"unknown type", func(r *InvoiceRequest) { r.Type = 999 }},
		{"type not allowed for regime", func(r *InvoiceRequest) { r.Type = FacturaA }},
		{"point of sale out of range", func(r *InvoiceRequest) { r.PointOfSale = 0 }},
		{"issuance date before 2000", func(r *InvoiceRequest) { r.IssuanceDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC) }},
		{"unknown concept", func(r *InvoiceRequest) { r.Concept = 9 }},
		{"services without period", func(r *InvoiceRequest) { r.Period = nil }},
		{"unknown condition", func(r *InvoiceRequest) { r.RecipientCondition = 99 }},
		{"missing recipient id", func(r *InvoiceRequest) {
			r.RecipientCondition = CondIVASujetoExento
			r.RecipientID = ""
		}},
		{"unknown payment", func(r *InvoiceRequest) { r.Payment = 2 }},
		{"no items", func(r *InvoiceRequest) { r.Items = nil }},
		{"bad item price", func(r *InvoiceRequest) { r.Items[0].UnitPrice = "12.345" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.ValidateAt(testNow)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "expected a validation error, got %v", err)
		})
	}
}

// TestInvoiceRequest_ProductsNeedNoPeriod tests the product-only exception
func TestInvoiceRequest_ProductsNeedNoPeriod(t *testing.T) {
	r := validRequest()
	r.Concept = ConceptProductos
	r.Period = nil
	require.NoError(t, r.ValidateAt(testNow))
}

// TestServicePeriod_ValidateAt tests period ordering rules
func TestServicePeriod_ValidateAt(t *testing.T) {
	tests := []struct {
		name    string
		period  ServicePeriod
		wantErr string
	}{
		{
			name: "valid period",
			period: ServicePeriod{
				Start: testNow.AddDate(0, -1, 0),
				End:   testNow,
				Due:   testNow.AddDate(0, 0, 15),
			},
		},
		{
			name: "due on period end today",
			period: ServicePeriod{
				Start: testNow.AddDate(0, 0, -10),
				End:   testNow,
				Due:   testNow,
			},
		},
		{
			name: "end before start",
			period: ServicePeriod{
				Start: testNow,
				End:   testNow.AddDate(0, 0, -1),
				Due:   testNow.AddDate(0, 0, 15),
			},
			wantErr: "before start",
		},
		{
			name: "due before end",
			period: ServicePeriod{
				Start: testNow.AddDate(0, -1, 0),
				End:   testNow,
				Due:   testNow.AddDate(0, 0, -1),
			},
			wantErr: "before period end",
		},
		{
			name: "due in the past",
			period: ServicePeriod{
				Start: testNow.AddDate(0, -2, 0),
				End:   testNow.AddDate(0, -1, 0),
				Due:   testNow.AddDate(0, 0, -5),
			},
			wantErr: "in the past",
		},
		{
			name: "start in the future",
			period: ServicePeriod{
				Start: testNow.AddDate(0, 0, 1),
				End:   testNow.AddDate(0, 0, 2),
				Due:   testNow.AddDate(0, 0, 13),
			},
			wantErr: "in the future",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.period.ValidateAt(testNow)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestLineItem_Validate tests line rules per regime
func TestLineItem_Validate(t *testing.T) {
	tests := []struct {
		name     string
		item     LineItem
		category IssuerCategory
		wantErr  bool
	}{
		{
			name:     "monotributo line without rate",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "1000"},
			category: CategoryMonotributo,
		},
		{
			name:     "monotributo line with rate",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "1000", Rate: RateVeintiuno},
			category: CategoryMonotributo,
			wantErr:  true,
		},
		{
			name:     "RI line with rate",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "1000", Rate: RateVeintiuno},
			category: CategoryResponsableInscripto,
		},
		{
			name:     "RI line without rate",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "1000"},
			category: CategoryResponsableInscripto,
			wantErr:  true,
		},
		{
			name:     "code out of range",
			item:     LineItem{Code: 10000, Description: "Servicios", UnitPrice: "1000"},
			category: CategoryMonotributo,
			wantErr:  true,
		},
		{
			name:     "empty description",
			item:     LineItem{Code: 17, Description: "  ", UnitPrice: "1000"},
			category: CategoryMonotributo,
			wantErr:  true,
		},
		{
			name:     "price with three decimals",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "10.123"},
			category: CategoryMonotributo,
			wantErr:  true,
		},
		{
			name:     "price with letters",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "12a"},
			category: CategoryMonotributo,
			wantErr:  true,
		},
		{
			name:     "price too long",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "123456789012345678.90"},
			category: CategoryMonotributo,
			wantErr:  true,
		},
		{
			name:     "valid discount",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "1000", Discount: "12.5"},
			category: CategoryMonotributo,
		},
		{
			name:     "discount above 100",
			item:     LineItem{Code: 17, Description: "Servicios", UnitPrice: "1000", Discount: "101"},
			category: CategoryMonotributo,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate(tt.category)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
		})
	}
}

// TestLineItem_PaddedCode tests the four-digit code form
func TestLineItem_PaddedCode(t *testing.T) {
	assert.Equal(t, "0017", LineItem{Code: 17}.PaddedCode())
	assert.Equal(t, "9999", LineItem{Code: 9999}.PaddedCode())
	assert.Equal(t, "0000", LineItem{Code: 0}.PaddedCode())
}

// TestLineItem_HasDiscount tests discount detection
func TestLineItem_HasDiscount(t *testing.T) {
	assert.False(t, LineItem{}.HasDiscount())
	assert.False(t, LineItem{Discount: "0"}.HasDiscount())
	assert.True(t, LineItem{Discount: "12.5"}.HasDiscount())
}

// TestDates tests the portal date format round trip
func TestDates(t *testing.T) {
	d, err := ParseDate("16/03/2026")
	require.NoError(t, err)
	assert.Equal(t, "16/03/2026", FormatDate(d))

	_, err = ParseDate("2026-03-16")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

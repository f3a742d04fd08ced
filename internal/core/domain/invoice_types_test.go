package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestInvoiceType_AllowedFor tests the type/regime matrix
func TestInvoiceType_AllowedFor(t *testing.T) {
	tests := []struct {
		name     string
		invoice  InvoiceType
		category IssuerCategory
		allowed  bool
	}{
		{"factura C for monotributo", FacturaC, CategoryMonotributo, true},
		{"recibo C for monotributo", ReciboC, CategoryMonotributo, true},
		{"FCE C for monotributo", FacturaMiPymeC, CategoryMonotributo, true},
		{"factura A for monotributo", FacturaA, CategoryMonotributo, false},
		{"factura B for monotributo", FacturaB, CategoryMonotributo, false},
		{"factura A for responsable inscripto", FacturaA, CategoryResponsableInscripto, true},
		{"factura B for responsable inscripto", FacturaB, CategoryResponsableInscripto, true},
		{"factura T for responsable inscripto", FacturaT, CategoryResponsableInscripto, true},
		{"FCE B for responsable inscripto", NotaCreditoMiPymeB, CategoryResponsableInscripto, true},
		{"factura C for responsable inscripto", FacturaC, CategoryResponsableInscripto, false},
		{"FCE C for responsable inscripto", FacturaMiPymeC, CategoryResponsableInscripto, false},
		{"unknown category", FacturaC, IssuerCategory("other"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.invoice.AllowedFor(tt.category))
		})
	}
}

// TestInvoiceType_Codes tests the portal select values
func TestInvoiceType_Codes(t *testing.T) {
	assert.Equal(t, "2", FacturaC.SelectValue())
	assert.Equal(t, "10", FacturaA.SelectValue())
	assert.Equal(t, "19", FacturaB.SelectValue())
	assert.Equal(t, "111", FacturaT.SelectValue())
	assert.Equal(t, "122", NotaCreditoMiPymeC.SelectValue())
}

// TestInvoiceType_Description tests display names
func TestInvoiceType_Description(t *testing.T) {
	assert.Equal(t, "Factura C", FacturaC.Description())
	assert.Equal(t, "Nota de Débito A", NotaDebitoA.Description())
	assert.Equal(t, "Factura de Crédito Electrónica MiPyMEs (FCE) B", FacturaMiPymeB.Description())
	assert.Empty(t, InvoiceType(999).Description())
	assert.False(t, InvoiceType(999).IsValid())
	assert.True(t, ReciboB.IsValid())
}

// TestPointOfSale tests padding and range checks
func TestPointOfSale(t *testing.T) {
	assert.Equal(t, "00005", PointOfSale(5).Padded())
	assert.Equal(t, "00123", PointOfSale(123).Padded())
	assert.Equal(t, "99999", PointOfSale(99999).Padded())
	assert.Equal(t, "5", PointOfSale(5).SelectValue())

	assert.True(t, PointOfSale(1).IsValid())
	assert.True(t, PointOfSale(99999).IsValid())
	assert.False(t, PointOfSale(0).IsValid())
	assert.False(t, PointOfSale(-3).IsValid())
	assert.False(t, PointOfSale(100000).IsValid())
}

// TestConceptType tests service detection
func TestConceptType(t *testing.T) {
	assert.False(t, ConceptProductos.IncludesServices())
	assert.True(t, ConceptServicios.IncludesServices())
	assert.True(t, ConceptProductosYServicios.IncludesServices())

	assert.True(t, ConceptProductos.IsValid())
	assert.False(t, ConceptType(0).IsValid())
	assert.False(t, ConceptType(4).IsValid())
	assert.Equal(t, "2", ConceptServicios.SelectValue())
}

// TestIVACondition_ValidFor tests the condition/regime/type matrix
func TestIVACondition_ValidFor(t *testing.T) {
	tests := []struct {
		name      string
		condition IVACondition
		category  IssuerCategory
		invoice   InvoiceType
		valid     bool
	}{
		{"RI recipient on factura A", CondIVAResponsableInscripto, CategoryResponsableInscripto, FacturaA, true},
		{"monotributo recipient on factura A", CondResponsableMonotributo, CategoryResponsableInscripto, FacturaA, true},
		{"final consumer on factura A", CondConsumidorFinal, CategoryResponsableInscripto, FacturaA, false},
		{"final consumer on factura B", CondConsumidorFinal, CategoryResponsableInscripto, FacturaB, true},
		{"RI recipient on factura B", CondIVAResponsableInscripto, CategoryResponsableInscripto, FacturaB, false},
		{"exento on FCE A", CondIVASujetoExento, CategoryResponsableInscripto, FacturaMiPymeA, false},
		{"social on FCE A", CondMonotributistaSocial, CategoryResponsableInscripto, FacturaMiPymeA, true},
		{"final consumer on factura C", CondConsumidorFinal, CategoryMonotributo, FacturaC, true},
		{"RI recipient on factura C", CondIVAResponsableInscripto, CategoryMonotributo, FacturaC, true},
		{"no alcanzado on factura C", CondIVANoAlcanzado, CategoryMonotributo, FacturaC, true},
		{"unknown condition", IVACondition(99), CategoryMonotributo, FacturaC, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.condition.ValidFor(tt.category, tt.invoice))
		})
	}
}

// TestIVACondition_RequiresRecipientID tests the final consumer exception
func TestIVACondition_RequiresRecipientID(t *testing.T) {
	assert.False(t, CondConsumidorFinal.RequiresRecipientID())
	assert.True(t, CondIVAResponsableInscripto.RequiresRecipientID())
	assert.True(t, CondIVASujetoExento.RequiresRecipientID())
	assert.True(t, CondResponsableMonotributo.RequiresRecipientID())
}

// TestIVARate tests rate codes and validity
func TestIVARate(t *testing.T) {
	assert.True(t, RateVeintiuno.IsValid())
	assert.True(t, RateDosCinco.IsValid())
	assert.False(t, RateNone.IsValid())
	assert.False(t, IVARate(7).IsValid())

	assert.Equal(t, "5", RateVeintiuno.SelectValue())
	assert.Equal(t, "21%", RateVeintiuno.String())
	assert.Equal(t, "10,5%", RateDiezCinco.String())
}

// TestPaymentMethod tests method codes and validity
func TestPaymentMethod(t *testing.T) {
	assert.True(t, PayContado.IsValid())
	assert.True(t, PayOtra.IsValid())
	assert.False(t, PaymentMethod(2).IsValid())

	assert.Equal(t, "68", PayTarjetaCredito.CheckboxValue())
	assert.Equal(t, "Contado", PayContado.String())
	assert.Equal(t, "Transferencia Bancaria", PayTransferenciaBancaria.String())
}

// TestIssuerCategory tests regime validity
func TestIssuerCategory(t *testing.T) {
	assert.True(t, CategoryResponsableInscripto.IsValid())
	assert.True(t, CategoryMonotributo.IsValid())
	assert.False(t, IssuerCategory("autonomo").IsValid())
}

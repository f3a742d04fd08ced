package domain

import "strconv"

// IssuerCategory is the tax regime the issuer is registered under.
// It constrains which invoice types and line-item fields are valid.
type IssuerCategory string

const (
	// CategoryResponsableInscripto issuers emit A/B/T class invoices and
	// must declare an IVA rate per line item.
	CategoryResponsableInscripto IssuerCategory = "responsable_inscripto"

	// CategoryMonotributo issuers emit C class invoices with no IVA
	// discrimination.
	CategoryMonotributo IssuerCategory = "monotributo"
)

// IsValid returns true if the category is a known tax regime.
func (c IssuerCategory) IsValid() bool {
	return c == CategoryResponsableInscripto || c == CategoryMonotributo
}

// String returns the string representation of the category.
func (c IssuerCategory) String() string {
	return string(c)
}

// InvoiceType is the numeric code the portal uses to identify a voucher
// class in its type selector.
type InvoiceType int

// Monotributo invoice types.
const (
	FacturaC     InvoiceType = 2
	NotaDebitoC  InvoiceType = 3
	NotaCreditoC InvoiceType = 4
	ReciboC      InvoiceType = 5
)

// Responsable Inscripto invoice types.
const (
	FacturaA     InvoiceType = 10
	NotaDebitoA  InvoiceType = 11
	NotaCreditoA InvoiceType = 12
	ReciboA      InvoiceType = 13
	FacturaB     InvoiceType = 19
	NotaDebitoB  InvoiceType = 21
	NotaCreditoB InvoiceType = 23
	ReciboB      InvoiceType = 25
	FacturaT     InvoiceType = 111
	NotaDebitoT  InvoiceType = 112
	NotaCreditoT InvoiceType = 113
)

// Electronic credit invoice (FCE MiPyME) types.
const (
	FacturaMiPymeA     InvoiceType = 114
	NotaDebitoMiPymeA  InvoiceType = 115
	NotaCreditoMiPymeA InvoiceType = 116
	FacturaMiPymeB     InvoiceType = 117
	NotaDebitoMiPymeB  InvoiceType = 118
	NotaCreditoMiPymeB InvoiceType = 119
	FacturaMiPymeC     InvoiceType = 120
	NotaDebitoMiPymeC  InvoiceType = 121
	NotaCreditoMiPymeC InvoiceType = 122
)

// IsValid returns true if the code is a known invoice type.
func (t InvoiceType) IsValid() bool {
	return t.Description() != ""
}

// AllowedFor reports whether this invoice type can be emitted under the
// given issuer category.
func (t InvoiceType) AllowedFor(c IssuerCategory) bool {
	switch c {
	case CategoryMonotributo:
		switch t {
		case FacturaC, NotaDebitoC, NotaCreditoC, ReciboC,
			FacturaMiPymeC, NotaDebitoMiPymeC, NotaCreditoMiPymeC:
			return true
		}
	case CategoryResponsableInscripto:
		switch t {
		case FacturaA, NotaDebitoA, NotaCreditoA, ReciboA,
			FacturaB, NotaDebitoB, NotaCreditoB, ReciboB,
			FacturaT, NotaDebitoT, NotaCreditoT,
			FacturaMiPymeA, NotaDebitoMiPymeA, NotaCreditoMiPymeA,
			FacturaMiPymeB, NotaDebitoMiPymeB, NotaCreditoMiPymeB:
			return true
		}
	}
	return false
}

// SelectValue returns the value the portal's type selector expects.
func (t InvoiceType) SelectValue() string {
	return strconv.Itoa(int(t))
}

// String returns the human-readable voucher name.
func (t InvoiceType) String() string {
	if d := t.Description(); d != "" {
		return d
	}
	return "Unknown invoice type " + strconv.Itoa(int(t))
}

// Description returns the voucher name as the portal displays it, or ""
// for unknown codes.
func (t InvoiceType) Description() string {
	switch t {
	case FacturaC:
		return "Factura C"
	case NotaDebitoC:
		return "Nota de Débito C"
	case NotaCreditoC:
		return "Nota de Crédito C"
	case ReciboC:
		return "Recibo C"
	case FacturaA:
		return "Factura A"
	case NotaDebitoA:
		return "Nota de Débito A"
	case NotaCreditoA:
		return "Nota de Crédito A"
	case ReciboA:
		return "Recibo A"
	case FacturaB:
		return "Factura B"
	case NotaDebitoB:
		return "Nota de Débito B"
	case NotaCreditoB:
		return "Nota de Crédito B"
	case ReciboB:
		return "Recibo B"
	case FacturaT:
		return "Factura T"
	case NotaDebitoT:
		return "Nota de Débito T"
	case NotaCreditoT:
		return "Nota de Crédito T"
	case FacturaMiPymeA:
		return "Factura de Crédito Electrónica MiPyMEs (FCE) A"
	case NotaDebitoMiPymeA:
		return "Nota de Débito Electrónica MiPyMEs (FCE) A"
	case NotaCreditoMiPymeA:
		return "Nota de Crédito Electrónica MiPyMEs (FCE) A"
	case FacturaMiPymeB:
		return "Factura de Crédito Electrónica MiPyMEs (FCE) B"
	case NotaDebitoMiPymeB:
		return "Nota de Débito Electrónica MiPyMEs (FCE) B"
	case NotaCreditoMiPymeB:
		return "Nota de Crédito Electrónica MiPyMEs (FCE) B"
	case FacturaMiPymeC:
		return "Factura de Crédito Electrónica MiPyMEs (FCE) C"
	case NotaDebitoMiPymeC:
		return "Nota de Débito Electrónica MiPyMEs (FCE) C"
	case NotaCreditoMiPymeC:
		return "Nota de Crédito Electrónica MiPyMEs (FCE) C"
	default:
		return ""
	}
}

// PointOfSale is the issuing point of sale, between 1 and 99999. The
// portal displays it zero-padded to five digits but its selector expects
// the unpadded numeric value.
type PointOfSale int

// IsValid returns true if the point of sale is in the portal's range.
func (p PointOfSale) IsValid() bool {
	return p >= 1 && p <= 99999
}

// Padded returns the five-digit zero-padded display form.
func (p PointOfSale) Padded() string {
	s := strconv.Itoa(int(p))
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

// SelectValue returns the value the portal's point-of-sale selector expects.
func (p PointOfSale) SelectValue() string {
	return strconv.Itoa(int(p))
}

// ConceptType declares whether an invoice covers products, services or
// both. Service concepts require a billing period.
type ConceptType int

const (
	// ConceptProductos covers goods only.
	ConceptProductos ConceptType = 1
	// ConceptServicios covers services only.
	ConceptServicios ConceptType = 2
	// ConceptProductosYServicios covers both.
	ConceptProductosYServicios ConceptType = 3
)

// IsValid returns true if the concept is a known portal code.
func (c ConceptType) IsValid() bool {
	return c >= ConceptProductos && c <= ConceptProductosYServicios
}

// IncludesServices reports whether the concept requires a billing period.
func (c ConceptType) IncludesServices() bool {
	return c == ConceptServicios || c == ConceptProductosYServicios
}

// SelectValue returns the value the portal's concept selector expects.
func (c ConceptType) SelectValue() string {
	return strconv.Itoa(int(c))
}

// String returns the concept name as the portal displays it.
func (c ConceptType) String() string {
	switch c {
	case ConceptProductos:
		return "Productos"
	case ConceptServicios:
		return "Servicios"
	case ConceptProductosYServicios:
		return "Productos y Servicios"
	default:
		return "Unknown concept " + strconv.Itoa(int(c))
	}
}

// IVACondition is the recipient's IVA standing, as coded by the portal's
// recipient selector. Which conditions are selectable depends on the
// issuer category and invoice type.
type IVACondition int

const (
	CondIVAResponsableInscripto   IVACondition = 1
	CondIVASujetoExento           IVACondition = 4
	CondConsumidorFinal           IVACondition = 5
	CondResponsableMonotributo    IVACondition = 6
	CondSujetoNoCategorizado      IVACondition = 7
	CondProveedorDelExterior      IVACondition = 8
	CondClienteDelExterior        IVACondition = 9
	CondIVALiberadoLey19640       IVACondition = 10
	CondMonotributistaSocial      IVACondition = 13
	CondIVANoAlcanzado            IVACondition = 15
	CondMonotributistaTIPromovido IVACondition = 16
)

// IsValid returns true if the condition is a known portal code.
func (c IVACondition) IsValid() bool {
	return c.Description() != ""
}

// RequiresRecipientID reports whether a recipient CUIT must accompany
// the condition. Final consumers are the only recipients the portal
// accepts without a document number.
func (c IVACondition) RequiresRecipientID() bool {
	return c != CondConsumidorFinal
}

// ValidFor reports whether the condition is selectable for the given
// issuer category and invoice type. Responsable Inscripto issuers see a
// restricted set on A-class vouchers; Monotributo issuers see the full
// list.
func (c IVACondition) ValidFor(cat IssuerCategory, t InvoiceType) bool {
	if !c.IsValid() {
		return false
	}
	if cat != CategoryResponsableInscripto {
		return true
	}
	aClass := t == FacturaA || t == NotaDebitoA || t == NotaCreditoA ||
		t == ReciboA || t == FacturaMiPymeA || t == NotaDebitoMiPymeA ||
		t == NotaCreditoMiPymeA
	if aClass {
		switch c {
		case CondIVAResponsableInscripto, CondResponsableMonotributo,
			CondMonotributistaSocial, CondMonotributistaTIPromovido:
			return true
		}
		return false
	}
	switch c {
	case CondIVASujetoExento, CondConsumidorFinal, CondSujetoNoCategorizado,
		CondProveedorDelExterior, CondClienteDelExterior,
		CondIVALiberadoLey19640, CondIVANoAlcanzado:
		return true
	}
	return false
}

// SelectValue returns the value the portal's condition selector expects.
func (c IVACondition) SelectValue() string {
	return strconv.Itoa(int(c))
}

// String returns the human-readable condition name.
func (c IVACondition) String() string {
	if d := c.Description(); d != "" {
		return d
	}
	return "Unknown IVA condition " + strconv.Itoa(int(c))
}

// Description returns the condition name as the portal displays it, or ""
// for unknown codes.
func (c IVACondition) Description() string {
	switch c {
	case CondIVAResponsableInscripto:
		return "IVA Responsable Inscripto"
	case CondIVASujetoExento:
		return "IVA Sujeto Exento"
	case CondConsumidorFinal:
		return "Consumidor Final"
	case CondResponsableMonotributo:
		return "Responsable Monotributo"
	case CondSujetoNoCategorizado:
		return "Sujeto No Categorizado"
	case CondProveedorDelExterior:
		return "Proveedor del Exterior"
	case CondClienteDelExterior:
		return "Cliente del Exterior"
	case CondIVALiberadoLey19640:
		return "IVA Liberado - Ley Nº 19.640"
	case CondMonotributistaSocial:
		return "Monotributista Social"
	case CondIVANoAlcanzado:
		return "IVA No Alcanzado"
	case CondMonotributistaTIPromovido:
		return "Monotributista Trabajador Independiente Promovido"
	default:
		return ""
	}
}

// IVARate is the per-line IVA rate, as coded by the portal's line-item
// selector. Required for Responsable Inscripto issuers, forbidden for
// Monotributo.
type IVARate int

const (
	// RateNone marks a line with no declared rate (Monotributo lines).
	RateNone        IVARate = 0
	RateNoGravado   IVARate = 1
	RateExento      IVARate = 2
	RateCero        IVARate = 3
	RateDiezCinco   IVARate = 4
	RateVeintiuno   IVARate = 5
	RateVeintisiete IVARate = 6
	RateCinco       IVARate = 8
	RateDosCinco    IVARate = 9
)

// IsValid returns true if the rate is a known portal code. RateNone is
// not a selectable rate.
func (r IVARate) IsValid() bool {
	switch r {
	case RateNoGravado, RateExento, RateCero, RateDiezCinco,
		RateVeintiuno, RateVeintisiete, RateCinco, RateDosCinco:
		return true
	}
	return false
}

// SelectValue returns the value the portal's rate selector expects.
func (r IVARate) SelectValue() string {
	return strconv.Itoa(int(r))
}

// String returns the rate as the portal displays it.
func (r IVARate) String() string {
	switch r {
	case RateNone:
		return "none"
	case RateNoGravado:
		return "No gravado"
	case RateExento:
		return "Exento"
	case RateCero:
		return "0%"
	case RateDiezCinco:
		return "10,5%"
	case RateVeintiuno:
		return "21%"
	case RateVeintisiete:
		return "27%"
	case RateCinco:
		return "5%"
	case RateDosCinco:
		return "2,5%"
	default:
		return "Unknown IVA rate " + strconv.Itoa(int(r))
	}
}

// PaymentMethod is the declared payment method, as coded by the portal's
// payment checkboxes.
type PaymentMethod int

const (
	PayContado                 PaymentMethod = 1
	PayTarjetaCredito          PaymentMethod = 68
	PayTarjetaDebito           PaymentMethod = 69
	PayOtrosMediosElectronicos PaymentMethod = 90
	PayTransferenciaBancaria   PaymentMethod = 91
	PayCuentaCorriente         PaymentMethod = 96
	PayCheque                  PaymentMethod = 97
	PayOtra                    PaymentMethod = 99
)

// IsValid returns true if the method is a known portal code.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PayContado, PayTarjetaCredito, PayTarjetaDebito,
		PayOtrosMediosElectronicos, PayTransferenciaBancaria,
		PayCuentaCorriente, PayCheque, PayOtra:
		return true
	}
	return false
}

// CheckboxValue returns the value attribute of the portal's payment
// checkbox for this method.
func (m PaymentMethod) CheckboxValue() string {
	return strconv.Itoa(int(m))
}

// String returns the method name as the portal displays it.
func (m PaymentMethod) String() string {
	switch m {
	case PayContado:
		return "Contado"
	case PayTarjetaCredito:
		return "Tarjeta de Crédito"
	case PayTarjetaDebito:
		return "Tarjeta de Débito"
	case PayOtrosMediosElectronicos:
		return "Otros medios de pago electrónico"
	case PayTransferenciaBancaria:
		return "Transferencia Bancaria"
	case PayCuentaCorriente:
		return "Cuenta Corriente"
	case PayCheque:
		return "Cheque"
	case PayOtra:
		return "Otra"
	default:
		return "Unknown payment method " + strconv.Itoa(int(m))
	}
}

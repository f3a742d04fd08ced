package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

// Wizard form selectors, one group per step.
const (
	continueButton = `input[value="Continuar >"]`

	invoiceTypeSelect = `select#universocomprobante`

	issuanceDateField = `input#fc`
	conceptSelect     = `select#idconcepto`
	periodStartField  = `input#fsd`
	periodEndField    = `input#fsh`
	periodDueField    = `input#vencimientopago`

	recipientIVASelect = `select#idivareceptor`
	recipientIDField   = `input#nrodocreceptor`

	addItemButton = `input[value="Agregar línea descripción"]`

	confirmButton = `#btngenerar`
	printButton   = `input[value="Imprimir..."]`
)

// Line item fields repeat their name attribute per row, so they are
// addressed by name and row index rather than by selector.
const (
	itemCodeField        = "detalleCodigoArticulo"
	itemDescriptionField = "detalleDescripcion"
	itemPriceField       = "detallePrecio"
	itemDiscountField    = "detallePorcentajeBonificacion"
	itemIVASelect        = "detalleTipoIVA"
)

// SelectInvoiceType picks the point of sale and invoice type and
// advances to the issuance data form.
func (s *Session) SelectInvoiceType(ctx context.Context, pos domain.PointOfSale, t domain.InvoiceType) error {
	err := s.run(ctx,
		chromedp.WaitVisible(pointOfSaleSelect, chromedp.ByQuery),
		pause(500, 1000),
		selectOption(pointOfSaleSelect, pos.SelectValue()),
		// The type selector is repopulated by an AJAX call keyed on the
		// chosen point of sale.
		pause(1000, 1500),
		selectOption(invoiceTypeSelect, t.SelectValue()),
		pause(500, 1000),
		chromedp.Click(continueButton, chromedp.ByQuery),
		chromedp.WaitVisible(issuanceDateField, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, errNoOption) {
			return fmt.Errorf("%w: %w", domain.ErrFormRejected, err)
		}
		return fmt.Errorf("%w: selecting invoice type: %w", domain.ErrNavigation, err)
	}
	return nil
}

// FillIssuanceData fills the issuance date, the concept type and, for
// concepts that include services, the billing period.
func (s *Session) FillIssuanceData(ctx context.Context, date time.Time, concept domain.ConceptType, period *domain.ServicePeriod) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(issuanceDateField, chromedp.ByQuery),
		pause(500, 1000),
		setField(issuanceDateField, domain.FormatDate(date)),
		pause(500, 1000),
		selectOption(conceptSelect, concept.SelectValue()),
	}

	// Selecting a service concept reveals the period fields.
	if period != nil {
		actions = append(actions,
			chromedp.WaitVisible(periodStartField, chromedp.ByQuery),
			pause(500, 1000),
			setField(periodStartField, domain.FormatDate(period.Start)),
			pause(500, 1000),
			setField(periodEndField, domain.FormatDate(period.End)),
			pause(500, 1000),
			setField(periodDueField, domain.FormatDate(period.Due)),
		)
	}

	actions = append(actions,
		pause(500, 1000),
		chromedp.Click(continueButton, chromedp.ByQuery),
		chromedp.WaitVisible(recipientIVASelect, chromedp.ByQuery),
	)

	if err := s.run(ctx, actions...); err != nil {
		if errors.Is(err, errNoOption) {
			return fmt.Errorf("%w: %w", domain.ErrFormRejected, err)
		}
		return fmt.Errorf("%w: filling issuance data: %w", domain.ErrNavigation, err)
	}
	return nil
}

// FillRecipientData fills the recipient IVA condition, the recipient
// CUIT when the condition requires one, and the payment method.
func (s *Session) FillRecipientData(ctx context.Context, cond domain.IVACondition, recipient domain.TaxID, payment domain.PaymentMethod) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(recipientIVASelect, chromedp.ByQuery),
		pause(500, 1000),
		selectOption(recipientIVASelect, cond.SelectValue()),
	}

	if cond.RequiresRecipientID() {
		actions = append(actions,
			pause(500, 1000),
			setField(recipientIDField, string(recipient)),
			// The portal verifies the CUIT with an AJAX round trip.
			pause(1000, 1500),
		)
	}

	paymentBox := fmt.Sprintf(`input[name="formaDePago"][value=%q]`, payment.CheckboxValue())
	actions = append(actions,
		pause(500, 1000),
		checkBox(paymentBox),
		pause(500, 1000),
		chromedp.Click(continueButton, chromedp.ByQuery),
		chromedp.WaitVisible(fmt.Sprintf(`input[name=%q]`, itemCodeField), chromedp.ByQuery),
	)

	if err := s.run(ctx, actions...); err != nil {
		if errors.Is(err, errNoOption) {
			return fmt.Errorf("%w: %w", domain.ErrFormRejected, err)
		}
		return fmt.Errorf("%w: filling recipient data: %w", domain.ErrNavigation, err)
	}
	return nil
}

// FillContentData fills the invoice line items and advances to the
// summary page.
func (s *Session) FillContentData(ctx context.Context, category domain.IssuerCategory, items []domain.LineItem) error {
	for i, item := range items {
		if i > 0 {
			err := s.run(ctx,
				pause(500, 1000),
				chromedp.Click(addItemButton, chromedp.ByQuery),
			)
			if err != nil {
				return fmt.Errorf("%w: adding line %d: %w", domain.ErrNavigation, i+1, err)
			}
		}
		if err := s.fillItem(ctx, i, category, item); err != nil {
			return err
		}
	}

	err := s.run(ctx,
		pause(500, 1000),
		chromedp.Click(continueButton, chromedp.ByQuery),
		chromedp.WaitVisible(confirmButton, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("%w: advancing to invoice summary: %w", domain.ErrNavigation, err)
	}
	return nil
}

// fillItem fills the index-th line item row.
func (s *Session) fillItem(ctx context.Context, index int, category domain.IssuerCategory, item domain.LineItem) error {
	actions := []chromedp.Action{
		pause(500, 1000),
		setItemField(itemCodeField, index, item.PaddedCode()),
		pause(500, 1000),
		setItemField(itemDescriptionField, index, item.Description),
		pause(500, 1000),
		setItemField(itemPriceField, index, item.UnitPrice),
	}

	if item.HasDiscount() {
		actions = append(actions,
			pause(500, 1000),
			setItemField(itemDiscountField, index, item.Discount),
		)
	}

	// Monotributo forms carry no per-line IVA select.
	if category == domain.CategoryResponsableInscripto {
		actions = append(actions,
			pause(500, 1000),
			selectItemOption(itemIVASelect, index, item.Rate.SelectValue()),
		)
	}

	if err := s.run(ctx, actions...); err != nil {
		if errors.Is(err, errNoOption) {
			return fmt.Errorf("%w: %w", domain.ErrFormRejected, err)
		}
		return fmt.Errorf("%w: filling line %d: %w", domain.ErrNavigation, index+1, err)
	}
	return nil
}

// confirmOutcomeJS reports which of the result containers the portal
// revealed after the generation call, or "" while it is still running.
const confirmOutcomeJS = `(() => {
	const ok = document.getElementById('botones_comprobante');
	if (ok && ok.offsetParent !== null) return 'ok';
	const err = document.getElementById('error_comprobante');
	if (err && err.offsetParent !== null) return 'error';
	return '';
})()`

// invoiceIDJS reads the identifier the portal assigns to the generated
// invoice, or "" when it is absent or not numeric.
const invoiceIDJS = `(typeof idComprobante !== 'undefined' && !isNaN(parseInt(idComprobante))) ? String(idComprobante) : ''`

// rejectionJS collects the portal's error box. The html carries the
// machine-readable comment markers; the text is the operator-facing
// message.
const rejectionJS = `(() => {
	const el = document.getElementById('mensaje_error');
	if (!el) return {html: '', text: ''};
	return {html: el.innerHTML, text: el.innerText.trim()};
})()`

// confirmOutcomeInterval is how often the generation outcome is polled.
const confirmOutcomeInterval = 250 * time.Millisecond

// Confirm triggers invoice generation from the summary page and returns
// the portal-issued invoice identifier.
func (s *Session) Confirm(ctx context.Context) (string, error) {
	err := s.run(ctx,
		chromedp.WaitVisible(confirmButton, chromedp.ByQuery),
		pause(500, 1000),
		// The portal guards generation behind a confirm() dialog.
		chromedp.Evaluate(`confirm = () => true;`, nil),
		chromedp.Click(confirmButton, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: confirming invoice: %w", domain.ErrNavigation, err)
	}

	var outcome string
	if err := s.run(ctx, poll(confirmOutcomeJS, confirmOutcomeInterval, &outcome)); err != nil {
		return "", fmt.Errorf("%w: waiting for generation outcome: %w", domain.ErrNavigation, err)
	}

	if outcome == "error" {
		var rejection struct {
			HTML string `json:"html"`
			Text string `json:"text"`
		}
		if err := s.run(ctx, chromedp.Evaluate(rejectionJS, &rejection)); err != nil {
			return "", fmt.Errorf("%w: reading rejection detail: %w", domain.ErrFormRejected, err)
		}
		return "", classifyRejection(rejection.HTML, rejection.Text)
	}

	var invoiceID string
	if err := s.run(ctx, chromedp.Evaluate(invoiceIDJS, &invoiceID)); err != nil {
		return "", fmt.Errorf("%w: reading invoice identifier: %w", domain.ErrNavigation, err)
	}
	if invoiceID == "" {
		return "", fmt.Errorf("%w: generation succeeded but no invoice identifier was assigned", domain.ErrNavigation)
	}

	logger.Debug("Session %s: invoice %s generated", s.cred.Issuer, invoiceID)
	return invoiceID, nil
}

// classifyRejection maps the portal's error markers to domain errors.
func classifyRejection(markers, message string) error {
	if message == "" {
		message = "the portal reported no detail"
	}
	switch {
	case strings.Contains(markers, "<!--pdferror-->"):
		return fmt.Errorf("%w: invoice generated but its document is not available: %s",
			domain.ErrDocumentRetrieval, message)
	case strings.Contains(markers, "<!--caeerror-->"):
		return fmt.Errorf("%w: no authorisation code issued: %s", domain.ErrFormRejected, message)
	case strings.Contains(markers, "<!--datosadicionaleserror-->"):
		return fmt.Errorf("%w: additional invoice data rejected: %s", domain.ErrFormRejected, message)
	default:
		return fmt.Errorf("%w: %s", domain.ErrFormRejected, message)
	}
}

package services

import (
	"context"
	"time"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

// wizardStep binds one form-filling operation to the state it represents.
type wizardStep struct {
	step domain.Step
	run  func(ctx context.Context, sess driven.Session, req *domain.InvoiceRequest) error
}

// wizardSteps is the strictly forward wizard flow, in portal order.
// Confirmation and document retrieval follow separately because they
// produce values.
var wizardSteps = []wizardStep{
	{domain.StepNavigatingToForm, func(ctx context.Context, sess driven.Session, req *domain.InvoiceRequest) error {
		return sess.OpenGenerator(ctx, req.CompanyName)
	}},
	{domain.StepSelectingType, func(ctx context.Context, sess driven.Session, req *domain.InvoiceRequest) error {
		return sess.SelectInvoiceType(ctx, req.PointOfSale, req.Type)
	}},
	{domain.StepFillingIssuanceData, func(ctx context.Context, sess driven.Session, req *domain.InvoiceRequest) error {
		return sess.FillIssuanceData(ctx, req.IssuanceDate, req.Concept, req.Period)
	}},
	{domain.StepFillingRecipientData, func(ctx context.Context, sess driven.Session, req *domain.InvoiceRequest) error {
		return sess.FillRecipientData(ctx, req.RecipientCondition, req.RecipientID, req.Payment)
	}},
	{domain.StepFillingContentData, func(ctx context.Context, sess driven.Session, req *domain.InvoiceRequest) error {
		return sess.FillContentData(ctx, req.Category, req.Items)
	}},
}

// submission drives single invoices through the portal wizard. One value
// is shared by all invoices of a run; it holds no per-invoice state.
type submission struct {
	creds       driven.CredentialStore
	factory     driven.SessionFactory
	stepTimeout time.Duration
	outputDir   string
}

// Run takes one request to a terminal outcome. It never returns an
// error: every failure is classified into the result. The session is
// opened here and closed on every exit path.
func (s *submission) Run(ctx context.Context, req domain.InvoiceRequest) domain.InvoiceResult {
	started := time.Now()

	// Requests normally arrive validated; a failure here terminates the
	// invoice before any session is opened.
	if err := req.Validate(); err != nil {
		return s.failed(req, started, "", err)
	}

	cred, err := s.creds.Get(ctx, req.Issuer)
	if err != nil {
		return s.failed(req, started, "", err)
	}

	sess, err := s.open(ctx, *cred)
	if err != nil {
		return s.failed(req, started, "", err)
	}
	defer sess.Close()

	for _, ws := range wizardSteps {
		logger.Debug("Invoice %d (%s): %s", req.Position+1, req.Issuer, ws.step)
		if err := s.step(ctx, func(stepCtx context.Context) error {
			return ws.run(stepCtx, sess, &req)
		}); err != nil {
			return s.failed(req, started, ws.step, err)
		}
	}

	logger.Debug("Invoice %d (%s): %s", req.Position+1, req.Issuer, domain.StepConfirming)
	var invoiceID string
	if err := s.step(ctx, func(stepCtx context.Context) error {
		var confirmErr error
		invoiceID, confirmErr = sess.Confirm(stepCtx)
		return confirmErr
	}); err != nil {
		return s.failed(req, started, domain.StepConfirming, err)
	}

	var docPath string
	if err := s.step(ctx, func(stepCtx context.Context) error {
		var retrieveErr error
		docPath, retrieveErr = sess.RetrieveDocument(stepCtx, invoiceID, s.outputDir)
		return retrieveErr
	}); err != nil {
		// The invoice exists on the portal side even though the caller
		// has no document for it, so the identifier is reported.
		res := s.failed(req, started, domain.StepConfirming, err)
		res.InvoiceID = invoiceID
		return res
	}

	logger.Info("Invoice %d (%s): generated %s", req.Position+1, req.Issuer, invoiceID)
	return domain.InvoiceResult{
		Issuer:       req.Issuer,
		Position:     req.Position,
		Type:         req.Type,
		Outcome:      domain.OutcomeSucceeded,
		InvoiceID:    invoiceID,
		DocumentPath: docPath,
		StartedAt:    started,
		EndedAt:      time.Now(),
	}
}

// open authenticates a fresh session, bounded like any other step.
func (s *submission) open(ctx context.Context, cred domain.Credential) (driven.Session, error) {
	openCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()
	return s.factory.Open(openCtx, cred)
}

// step runs one wizard operation under the per-step timeout.
func (s *submission) step(ctx context.Context, fn func(context.Context) error) error {
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()
	return fn(stepCtx)
}

// failed builds the terminal record for a classified failure. step is
// empty when the failure preceded the wizard.
func (s *submission) failed(req domain.InvoiceRequest, started time.Time, step domain.Step, err error) domain.InvoiceResult {
	kind := domain.KindOf(err)
	if step != "" {
		logger.Debug("Invoice %d (%s) failed at %s: %v", req.Position+1, req.Issuer, step, err)
	} else {
		logger.Debug("Invoice %d (%s) failed: %v", req.Position+1, req.Issuer, err)
	}
	return domain.InvoiceResult{
		Issuer:        req.Issuer,
		Position:      req.Position,
		Type:          req.Type,
		Outcome:       domain.OutcomeFailed,
		Kind:          kind,
		Message:       err.Error(),
		StepAtFailure: step,
		StartedAt:     started,
		EndedAt:       time.Now(),
	}
}

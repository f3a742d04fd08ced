package portal

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

// loginURL is the portal's single sign-on entry point.
const loginURL = "https://auth.afip.gob.ar/contribuyente_/login.xhtml"

// Login page selectors. The form ids carry a JSF naming-container colon
// that must stay escaped in the query.
const (
	usernameField  = `#F1\:username`
	nextButton     = `#F1\:btnSiguiente`
	passwordField  = `#F1\:password`
	loginButton    = `#F1\:btnIngresar`
	loggedCUIT     = `.numeroCuit`
	servicesLink   = `a[href="/portal/app/mis-servicios"]`
	servicePanel   = `a.panel.panel-default[title="rcel"]`
	servicePanelH3 = `a.panel.panel-default[title="rcel"] h3`
	serviceHeading = "COMPROBANTES EN LÍNEA"
)

// Invoicing service selectors.
const (
	serviceUserHeader = `table#encabezado_usuario td`
	companyButton     = `input.btn_empresa`
	generateButton    = `a#btn_gen_cmp`
	pointOfSaleSelect = `select#puntodeventa`
)

// Ensure Session implements the interface.
var _ driven.Session = (*Session)(nil)

// Session drives one authenticated portal tab for a single issuer.
type Session struct {
	cred        domain.Credential
	limiter     *rate.Limiter
	workDir     string
	downloadDir string

	// tab is the chromedp context of the active portal tab. It starts
	// on the login tab and moves to the invoicing service tab once the
	// service opens in a new window.
	tab     context.Context
	cancels []context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// Issuer returns the CUIT the session is authenticated as.
func (s *Session) Issuer() domain.TaxID {
	return s.cred.Issuer
}

// Close releases the browser and the session's working directory.
// Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, cancel := range s.cancels {
		cancel()
	}
	if err := os.RemoveAll(s.workDir); err != nil {
		return fmt.Errorf("removing session directory: %w", err)
	}
	return nil
}

// run executes browser actions on the session tab, honouring the
// caller's cancellation and deadline. One limiter token is taken per
// call so concurrent sessions share the portal interaction budget.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// login authenticates against the portal and verifies the session
// landed on the issuer's account.
func (s *Session) login(ctx context.Context) error {
	logger.Debug("Session %s: logging in", s.cred.Issuer)

	err := s.run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(usernameField, chromedp.ByQuery),
		pause(1000, 2000),
		humanType(usernameField, string(s.cred.Issuer)),
		pause(500, 1000),
		chromedp.Click(nextButton, chromedp.ByQuery),
		chromedp.WaitVisible(passwordField, chromedp.ByQuery),
		pause(1000, 2000),
		humanType(passwordField, s.cred.ClaveFiscal),
		pause(500, 1000),
		chromedp.Click(loginButton, chromedp.ByQuery),
		chromedp.WaitVisible(loggedCUIT, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	var shown string
	if err := s.run(ctx, chromedp.Text(loggedCUIT, &shown, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: reading portal account: %w", domain.ErrAuthentication, err)
	}
	if got := cleanCUIT(shown); got != string(s.cred.Issuer) {
		return fmt.Errorf("%w: portal shows CUIT %s, credential is for %s",
			domain.ErrAuthentication, got, s.cred.Issuer)
	}

	logger.Debug("Session %s: authenticated", s.cred.Issuer)
	return nil
}

// openService navigates to the invoicing service, which the portal
// opens in a new tab, and verifies the service header shows the issuer.
func (s *Session) openService(ctx context.Context) error {
	logger.Debug("Session %s: opening invoicing service", s.cred.Issuer)

	err := s.run(ctx,
		chromedp.WaitVisible(servicesLink, chromedp.ByQuery),
		pause(500, 1000),
		chromedp.Click(servicesLink, chromedp.ByQuery),
		chromedp.WaitVisible(servicePanel, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("%w: locating invoicing service: %w", domain.ErrNavigation, err)
	}

	var heading string
	if err := s.run(ctx, chromedp.Text(servicePanelH3, &heading, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: reading service panel: %w", domain.ErrNavigation, err)
	}
	if !strings.Contains(heading, serviceHeading) {
		return fmt.Errorf("%w: service panel reads %q, want %q",
			domain.ErrNavigation, heading, serviceHeading)
	}

	// The service opens in a new window; watch for the target before
	// clicking so the navigation is never missed.
	targets := chromedp.WaitNewTarget(s.tab, func(info *target.Info) bool {
		return info.URL != "" && info.URL != "about:blank"
	})

	if err := s.run(ctx, pause(500, 1000), chromedp.Click(servicePanel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: opening invoicing service: %w", domain.ErrNavigation, err)
	}

	var serviceTab target.ID
	select {
	case serviceTab = <-targets:
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for service tab: %w", domain.ErrNavigation, ctx.Err())
	}

	tabCtx, tabCancel := chromedp.NewContext(s.tab, chromedp.WithTargetID(serviceTab))
	s.tab = tabCtx
	s.cancels = append([]context.CancelFunc{tabCancel}, s.cancels...)

	var header string
	err = s.run(ctx,
		chromedp.WaitVisible(serviceUserHeader, chromedp.ByQuery),
		chromedp.Text(serviceUserHeader, &header, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("%w: verifying invoicing service: %w", domain.ErrNavigation, err)
	}
	if got := headerCUIT(header); got != string(s.cred.Issuer) {
		return fmt.Errorf("%w: invoicing service shows CUIT %s, credential is for %s",
			domain.ErrNavigation, got, s.cred.Issuer)
	}

	logger.Debug("Session %s: invoicing service ready", s.cred.Issuer)
	return nil
}

// OpenGenerator selects the represented company and navigates to the
// invoice generator form.
func (s *Session) OpenGenerator(ctx context.Context, companyName string) error {
	company := companyButton
	if companyName != "" {
		company = fmt.Sprintf(`input.btn_empresa[value=%q]`, companyName)
	}

	err := s.run(ctx,
		chromedp.WaitVisible(company, chromedp.ByQuery),
		pause(500, 1000),
		chromedp.Click(company, chromedp.ByQuery),
		chromedp.WaitVisible(generateButton, chromedp.ByQuery),
		pause(500, 1000),
		chromedp.Click(generateButton, chromedp.ByQuery),
		chromedp.WaitVisible(pointOfSaleSelect, chromedp.ByQuery),
	)
	if err != nil {
		if companyName != "" {
			return fmt.Errorf("%w: opening invoice generator for %q: %w",
				domain.ErrNavigation, companyName, err)
		}
		return fmt.Errorf("%w: opening invoice generator: %w", domain.ErrNavigation, err)
	}
	return nil
}

// cleanCUIT normalises the CUIT shown next to the portal account name,
// which arrives as "[20-11111111-2]".
func cleanCUIT(s string) string {
	r := strings.NewReplacer("[", "", "]", "", "-", "", " ", "")
	return strings.TrimSpace(r.Replace(s))
}

// headerCUIT extracts the CUIT from the service header cell, formatted
// as "CUIT - COMPANY NAME".
func headerCUIT(s string) string {
	cuit, _, _ := strings.Cut(s, " - ")
	return strings.TrimSpace(cuit)
}

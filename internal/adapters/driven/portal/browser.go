package portal

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"

	"github.com/aguaralabs/facturante-cli/internal/core/domain"
	"github.com/aguaralabs/facturante-cli/internal/core/ports/driven"
	"github.com/aguaralabs/facturante-cli/internal/logger"
)

const (
	// InteractionsPerSecond is the proactive throttle rate for portal
	// page interactions, shared across all concurrent sessions.
	InteractionsPerSecond = 2.0

	// InteractionBurst allows short bursts while keeping the average
	// rate at InteractionsPerSecond.
	InteractionBurst = 3

	// timezoneID pins every session to the portal's home timezone.
	timezoneID = "America/Argentina/Cordoba"
)

// userAgents are rotated per session. All current desktop Chrome builds;
// the portal serves a degraded login page to unknown agents.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Edge/122.0.2365.66",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
}

// viewports are common desktop resolutions, rotated per session.
var viewports = [][2]int{
	{1920, 1080},
	{1366, 768},
	{1536, 864},
	{1440, 900},
}

// fingerprintScript runs before every page load and removes the marks
// headless Chrome leaves on the navigator object.
const fingerprintScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined
});
Object.defineProperty(navigator, 'plugins', {
	get: () => [
		{
			0: {type: "application/x-google-chrome-pdf"},
			description: "Portable Document Format",
			filename: "internal-pdf-viewer",
			length: 1,
			name: "Chrome PDF Plugin"
		}
	]
});
`

// Ensure Factory implements the interface.
var _ driven.SessionFactory = (*Factory)(nil)

// Factory opens isolated browser sessions against the AFIP portal.
type Factory struct {
	headless bool
	limiter  *rate.Limiter
}

// NewFactory creates a session factory. headless controls browser
// visibility; the interaction limiter is shared by every session the
// factory opens.
func NewFactory(headless bool) *Factory {
	return &Factory{
		headless: headless,
		limiter:  rate.NewLimiter(rate.Limit(InteractionsPerSecond), InteractionBurst),
	}
}

// Open launches a fresh browser, authenticates with the credential and
// lands on the invoicing service. The caller must Close the returned
// session on every exit path.
func (f *Factory) Open(ctx context.Context, cred domain.Credential) (driven.Session, error) {
	workDir, err := os.MkdirTemp("", "facturante-session-*")
	if err != nil {
		return nil, fmt.Errorf("creating session directory: %w", err)
	}

	downloadDir := filepath.Join(workDir, "downloads")
	profileDir := filepath.Join(workDir, "profile")
	for _, dir := range []string{downloadDir, profileDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			os.RemoveAll(workDir)
			return nil, fmt.Errorf("creating session directory: %w", err)
		}
	}

	viewport := viewports[rand.N(len(viewports))]
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.headless),
		chromedp.UserAgent(userAgents[rand.N(len(userAgents))]),
		chromedp.WindowSize(viewport[0], viewport[1]),
		chromedp.UserDataDir(profileDir),
		chromedp.Flag("lang", "es-AR"),
		chromedp.Flag("accept-lang", "es-AR,es;q=0.9,en;q=0.8"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	// The browser outlives any single step deadline, so its contexts
	// hang off Background; the caller's ctx bounds login below.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		cred:        cred,
		limiter:     f.limiter,
		workDir:     workDir,
		downloadDir: downloadDir,
		tab:         tabCtx,
		cancels:     []context.CancelFunc{tabCancel, allocCancel},
	}

	if err := s.run(ctx,
		emulation.SetTimezoneOverride(timezoneID),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(fingerprintScript).Do(ctx)
			return err
		}),
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(downloadDir).
			WithEventsEnabled(true),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("preparing browser: %w", err)
	}

	logger.Debug("Session %s: browser ready (headless=%v)", cred.Issuer, f.headless)

	if err := s.login(ctx); err != nil {
		s.Close()
		return nil, err
	}

	if err := s.openService(ctx); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

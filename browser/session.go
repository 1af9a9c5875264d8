package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/prometheus/client_golang/prometheus"

	"review-harvester/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/124.0.0.0 Safari/537.36"

// stealthScript masks the most common automation fingerprints. It is
// registered before the first navigation so every document in the session
// sees the overrides. Not perfect, but often enough for basic bot checks.
const stealthScript = `
// webdriver flag
Object.defineProperty(navigator, 'webdriver', {get: () => undefined});
// chrome object
window.chrome = { runtime: {} };
// languages
Object.defineProperty(navigator, 'languages', {get: () => ['en-US', 'en']});
// plugins
Object.defineProperty(navigator, 'plugins', {get: () => [1,2,3,4,5]});
// permissions
const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
  parameters.name === 'notifications'
    ? Promise.resolve({ state: Notification.permission })
    : originalQuery(parameters)
);
`

// Options configures a browsing session.
type Options struct {
	Headless   bool
	ChromeBin  string
	NavTimeout time.Duration
	// ScrollDelta is the fixed magnitude of each simulated scroll step.
	ScrollDelta int
	Pacer       utils.Pacer
	Logger      *utils.Logger
	// NavRetries, when set, counts relaxed-wait navigation retries.
	NavRetries prometheus.Counter
}

// Session is an isolated browsing context with a spoofed identity. A single
// page is reused for every navigation; pages are processed strictly
// sequentially.
type Session struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc

	navTimeout  time.Duration
	scrollDelta int
	pacer       utils.Pacer
	logger      *utils.Logger
	navRetries  prometheus.Counter
}

// NewSession launches the browser, applies the identity overrides and
// registers the stealth shims. The caller must Close the session on every
// exit path.
func NewSession(opts Options) (*Session, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 60 * time.Second
	}
	if opts.ScrollDelta <= 0 {
		opts.ScrollDelta = 900
	}
	if opts.Pacer == nil {
		opts.Pacer = utils.NewRandomPacer(0)
	}

	bin := opts.ChromeBin
	if bin == "" {
		bin = findChromeBinary()
	}
	opts.Logger.Debug("[browser] Using browser binary: %s", bin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent(userAgent),
	)
	if bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	// Suppress chromedp log noise
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	s := &Session{
		ctx:         ctx,
		cancelCtx:   cancelCtx,
		cancelAlloc: cancelAlloc,
		navTimeout:  opts.NavTimeout,
		scrollDelta: opts.ScrollDelta,
		pacer:       opts.Pacer,
		logger:      opts.Logger,
		navRetries:  opts.NavRetries,
	}

	if err := chromedp.Run(ctx,
		chromedp.EmulateViewport(1366, 768),
		chromedp.ActionFunc(s.applyIdentity),
	); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: start session: %w", err)
	}

	return s, nil
}

// applyIdentity installs the spoofed identity and the stealth shims. Each
// override is best effort: a failed shim is logged and skipped, never fatal.
func (s *Session) applyIdentity(ctx context.Context) error {
	if err := emulation.SetUserAgentOverride(userAgent).
		WithAcceptLanguage("en-US,en").
		WithPlatform("Win32").
		Do(ctx); err != nil {
		s.logger.Warn("[browser] User agent override failed: %v", err)
	}
	if err := emulation.SetTimezoneOverride("Asia/Kolkata").Do(ctx); err != nil {
		s.logger.Warn("[browser] Timezone override failed: %v", err)
	}
	if _, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx); err != nil {
		s.logger.Warn("[browser] Stealth shim registration failed: %v", err)
	}
	return nil
}

// Close releases the page and the browser process.
func (s *Session) Close() {
	s.cancelCtx()
	s.cancelAlloc()
}

// FetchPage navigates to pageURL, runs the best-effort interactions and
// returns the fully rendered markup.
func (s *Session) FetchPage(ctx context.Context, pageURL string, scrollSteps int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := s.navigate(pageURL); err != nil {
		return "", err
	}

	s.pacer.Pause(1200*time.Millisecond, 2200*time.Millisecond)
	s.dismissCookieBanner()
	s.scroll(scrollSteps)

	captureCtx, cancel := context.WithTimeout(s.ctx, 15*time.Second)
	defer cancel()

	var html string
	if err := chromedp.Run(captureCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("browser: capture markup for %s: %w", pageURL, err)
	}
	return html, nil
}

// navigate loads a URL, waiting for DOM readiness. A timeout triggers exactly
// one retry with relaxed wait semantics; a second failure propagates and is
// fatal for the run.
func (s *Session) navigate(pageURL string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err == nil {
		return nil
	}

	s.logger.Warn("[browser] Navigation to %s failed (%v). Retrying once with relaxed wait...", pageURL, err)
	if s.navRetries != nil {
		s.navRetries.Inc()
	}

	retryCtx, cancelRetry := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancelRetry()

	if err := chromedp.Run(retryCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(2*time.Second),
	); err != nil {
		return fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	return nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

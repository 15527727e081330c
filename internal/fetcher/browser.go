package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TourneySync/internal/config"
	"TourneySync/internal/model"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// ErrBrowserDisabled returned for dynamic sources when no browser is configured
var ErrBrowserDisabled = errors.New("headless browser disabled")

// BrowserFetcher renders JavaScript-driven schedule pages in headless Chromium.
// The browser is launched on first use and shared; each fetch gets its own context.
type BrowserFetcher struct {
	cfg       config.BrowserConfig
	gate      Gate
	logger    *logrus.Logger
	userAgent string
	attempts  int
	backoff   time.Duration

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewBrowserFetcher(cfg config.BrowserConfig, fetchCfg *config.FetchConfig, gate Gate, logger *logrus.Logger) *BrowserFetcher {
	if gate == nil {
		gate = noGate{}
	}
	ua := fetchCfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	attempts := fetchCfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	return &BrowserFetcher{
		cfg:       cfg,
		gate:      gate,
		logger:    logger,
		userAgent: ua,
		attempts:  attempts,
		backoff:   fetchCfg.RetryBackoff,
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	if !f.cfg.Enabled {
		return nil, ErrBrowserDisabled
	}
	browser, err := f.ensureBrowser()
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.backoff):
			}
		}
		if err := f.gate.Wait(ctx, rawURL); err != nil {
			return nil, err
		}

		page, err := f.render(browser, rawURL)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !Retryable(err) {
			return nil, err
		}
		f.logger.WithError(err).WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": attempt,
			"of":      f.attempts,
		}).Warn("render attempt failed")
	}
	return nil, lastErr
}

func (f *BrowserFetcher) render(browser playwright.Browser, rawURL string) (*model.Page, error) {
	timeoutMs := float64(f.cfg.NavTimeout / time.Millisecond)
	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(f.userAgent),
	})
	if err != nil {
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}

	resp, err := page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(timeoutMs),
	})
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if resp != nil && resp.Status() >= 400 {
		return nil, &HTTPError{URL: page.URL(), Status: resp.Status()}
	}

	// schedule widgets usually load over XHR after DOMContentLoaded
	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(timeoutMs),
	}); err != nil {
		f.logger.WithError(err).WithField("url", rawURL).Debug("network never went idle, using current DOM")
	}

	html, err := page.Content()
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	return &model.Page{Body: []byte(html), FinalURL: page.URL(), Rendered: true}, nil
}

func (f *BrowserFetcher) ensureBrowser() (playwright.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.browser != nil {
		return f.browser, nil
	}

	if f.cfg.InstallDriver {
		if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
			return nil, fmt.Errorf("install playwright driver: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(f.cfg.Headless)}
	if f.cfg.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(f.cfg.ExecutablePath)
	}
	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	f.pw, f.browser = pw, browser
	f.logger.WithField("headless", f.cfg.Headless).Info("headless browser started")
	return browser, nil
}

// Close stops the browser and the driver; safe to call when never started
func (f *BrowserFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	if f.browser != nil {
		errs = append(errs, f.browser.Close())
		f.browser = nil
	}
	if f.pw != nil {
		errs = append(errs, f.pw.Stop())
		f.pw = nil
	}
	return errors.Join(errs...)
}

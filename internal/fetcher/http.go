// Package fetcher retrieves schedule pages over plain HTTP or through a
// headless browser for JavaScript-rendered sites.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"TourneySync/internal/config"
	"TourneySync/internal/model"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 8 << 20

// Gate spaces requests per host; ratelimit.HostGate in production
type Gate interface {
	Wait(ctx context.Context, rawURL string) error
}

type noGate struct{}

func (noGate) Wait(ctx context.Context, _ string) error { return ctx.Err() }

// HTTPFetcher plain HTTP fetch with retry, per-attempt timeout and manual redirects
type HTTPFetcher struct {
	client       *http.Client
	gate         Gate
	logger       *logrus.Logger
	userAgent    string
	timeout      time.Duration
	attempts     int
	backoff      time.Duration
	maxRedirects int
}

// NewHTTPFetcher gate may be nil
func NewHTTPFetcher(client *http.Client, gate Gate, cfg *config.FetchConfig, logger *logrus.Logger) *HTTPFetcher {
	if gate == nil {
		gate = noGate{}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	attempts := cfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPFetcher{
		client:       client,
		gate:         gate,
		logger:       logger,
		userAgent:    ua,
		timeout:      cfg.Timeout,
		attempts:     attempts,
		backoff:      cfg.RetryBackoff,
		maxRedirects: cfg.MaxRedirects,
	}
}

// Fetch returns the body of the first non-redirect 2xx response.
// Network errors are retried; HTTP error statuses and redirect loops are not.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
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

		page, err := f.fetchOnce(ctx, rawURL)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !Retryable(err) {
			return nil, err
		}
		f.logger.WithError(err).WithFields(logrus.Fields{
			"url":     rawURL,
			"attempt": attempt,
			"of":      f.attempts,
		}).Warn("fetch attempt failed")
	}
	return nil, lastErr
}

// fetchOnce one attempt: follow the redirect chain under a single timeout
func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL string) (*model.Page, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	current := rawURL
	for hop := 0; ; hop++ {
		// the caller waited for the first hop; every followed redirect is a new request
		if hop > 0 {
			if err := f.gate.Wait(ctx, current); err != nil {
				return nil, err
			}
		}
		resp, err := f.do(ctx, current)
		if err != nil {
			return nil, err
		}

		if isRedirect(resp.StatusCode) {
			loc := resp.Header.Get("Location")
			drain(resp)
			if loc == "" {
				return nil, &HTTPError{URL: current, Status: resp.StatusCode}
			}
			if hop >= f.maxRedirects {
				return nil, fmt.Errorf("%w: %s after %d hops", ErrTooManyRedirects, rawURL, hop)
			}
			next, err := resolve(current, loc)
			if err != nil {
				return nil, fmt.Errorf("bad redirect location %q from %s: %w", loc, current, err)
			}
			f.logger.WithFields(logrus.Fields{"from": current, "to": next}).Debug("following redirect")
			current = next
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			drain(resp)
			return nil, &HTTPError{URL: current, Status: resp.StatusCode}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if err != nil {
			return nil, &NetworkError{URL: current, Err: err}
		}
		if resp.Header.Get("X-From-Cache") == "1" {
			f.logger.WithField("url", current).Debug("served from cache")
		}
		return &model.Page{Body: body, FinalURL: current}, nil
	}
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	return resp, nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// resolve Location may be absolute, host-relative or path-relative
func resolve(base, location string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	l, err := url.Parse(location)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(l).String(), nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

package fetcher

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"TourneySync/internal/config"

	"github.com/gregjones/httpcache"
	"github.com/sirupsen/logrus"
)

// NewHTTPClient shared client for schedule pages: proxy, gzip, optional cache.
// Redirects are never followed by the client itself; HTTPFetcher walks them.
// cache may be nil; it is only used when cfg.CacheTTL > 0.
func NewHTTPClient(cfg *config.FetchConfig, cache httpcache.Cache, logger *logrus.Logger) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", cfg.Proxy).Warn("invalid proxy, fetching directly")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", cfg.Proxy).Info("fetch client using proxy")
		}
	}

	var rt http.RoundTripper = &compressedTransport{transport: transport, logger: logger}

	if cfg.CacheTTL > 0 {
		if cache == nil {
			cache = httpcache.NewMemoryCache()
		}
		ct := httpcache.NewTransport(cache)
		// venue sites send no-cache headers or none at all; pin our own TTL
		ct.Transport = &headerOverrideTransport{
			wrapped: rt,
			response: func(resp *http.Response) {
				resp.Header.Del("Pragma")
				resp.Header.Del("Expires")
				if resp.StatusCode != http.StatusOK {
					resp.Header.Set("Cache-Control", "no-store")
					return
				}
				resp.Header.Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cfg.CacheTTL/time.Second)))
			},
		}
		rt = ct
		logger.WithField("ttl", cfg.CacheTTL).Info("fetch client response cache enabled")
	}

	return &http.Client{
		Transport: rt,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type compressedTransport struct {
	transport http.RoundTripper
	logger    *logrus.Logger
}

func (c *compressedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := c.transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			c.logger.WithError(err).WithField("url", req.URL.String()).Warn("gzip decode failed, returning raw body")
			return resp, nil
		}
		resp.Body = &gzipReadCloser{Reader: gzReader, closer: resp.Body}
		resp.Header.Del("Content-Encoding")
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
	}
	return resp, nil
}

// gzipReadCloser closes both the gzip reader and the underlying body
type gzipReadCloser struct {
	*gzip.Reader
	closer io.ReadCloser
}

func (g *gzipReadCloser) Close() error {
	if err := g.Reader.Close(); err != nil {
		g.closer.Close()
		return err
	}
	return g.closer.Close()
}

type headerOverrideTransport struct {
	wrapped  http.RoundTripper
	response func(resp *http.Response)
}

func (t *headerOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.wrapped.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if t.response != nil {
		t.response(resp)
	}
	return resp, nil
}

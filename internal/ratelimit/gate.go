// Package ratelimit spaces out requests to the same host.
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostGate fixed-interval gate per host: at most one request per interval to a
// given host, independent hosts never wait on each other.
type HostGate struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHostGate interval <= 0 disables gating
func NewHostGate(interval time.Duration) *HostGate {
	return &HostGate{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Wait blocks until a request to rawURL's host may be issued or ctx ends
func (g *HostGate) Wait(ctx context.Context, rawURL string) error {
	if g == nil || g.interval <= 0 {
		return ctx.Err()
	}
	return g.limiter(HostOf(rawURL)).Wait(ctx)
}

func (g *HostGate) limiter(host string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(g.interval), 1)
		g.limiters[host] = l
	}
	return l
}

// HostOf lower-cased host without port; the raw string if it does not parse
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname())
}

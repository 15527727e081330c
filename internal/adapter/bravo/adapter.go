// Package bravo scrapes Bravo Poker Live schedules, which only exist after
// the page's JavaScript has run.
package bravo

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"TourneySync/internal/adapter"
	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"
	"TourneySync/internal/parser"
)

// SiteURL Bravo Poker Live
const SiteURL = "https://www.bravopokerlive.com"

// roomPatterns places a room's schedule has lived on the site, tried in order
var roomPatterns = []string{"/room/%s", "/%s", "/tournaments/%s"}

// MaxCandidates most URLs tried for one venue: scrape_url plus every room pattern
var MaxCandidates = 1 + len(roomPatterns)

func init() {
	adapter.Register(model.SourceBravo, New)
}

type Adapter struct {
	fetcher interfaces.Fetcher
	parser  *parser.Dynamic
}

func New(deps adapter.Deps) interfaces.SourceAdapter {
	return &Adapter{fetcher: deps.Browser, parser: parser.NewDynamic(nil)}
}

func (a *Adapter) Source() model.ScrapeSource { return model.SourceBravo }

// Candidates scrape_url first, then the room patterns when the room id is
// known. scrape_url may be a bare room id or any page on the Bravo site.
func (a *Adapter) Candidates(v *model.Venue) []string {
	raw := strings.TrimSpace(v.ScrapeURL)
	if raw == "" {
		return nil
	}

	var urls []string
	roomID := ""
	if !strings.ContainsAny(raw, "./") {
		roomID = raw
	} else {
		base := adapter.BaseURL(raw)
		urls = append(urls, base)
		roomID = roomIDFrom(base)
	}
	if roomID == "" {
		return urls
	}

	seen := map[string]bool{}
	for _, u := range urls {
		seen[u] = true
	}
	for _, p := range roomPatterns {
		u := SiteURL + fmt.Sprintf(p, url.PathEscape(roomID))
		if !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls
}

// roomIDFrom last path segment of a Bravo site URL; empty for other hosts
func roomIDFrom(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host != "bravopokerlive.com" {
		return ""
	}
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

func (a *Adapter) Probing() bool                   { return true }
func (a *Adapter) Fetcher() interfaces.Fetcher     { return a.fetcher }
func (a *Adapter) Parser() interfaces.SourceParser { return a.parser }

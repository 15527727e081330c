// Package pokeratlas scrapes venue tournament tables from PokerAtlas listings.
package pokeratlas

import (
	"net/url"
	"strings"

	"TourneySync/internal/adapter"
	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"
	"TourneySync/internal/parser"
)

const tournamentsPath = "/tournaments"

func init() {
	adapter.Register(model.SourcePokerAtlas, New)
}

type Adapter struct {
	fetcher interfaces.Fetcher
	parser  *parser.Structured
}

func New(deps adapter.Deps) interfaces.SourceAdapter {
	return &Adapter{fetcher: deps.HTTP, parser: parser.NewStructured()}
}

func (a *Adapter) Source() model.ScrapeSource { return model.SourcePokerAtlas }

// Candidates the venue's PokerAtlas page, falling back to scrape_url, always
// pointed at its /tournaments tab. Query and fragment are kept as they were.
func (a *Adapter) Candidates(v *model.Venue) []string {
	raw := v.PokerAtlasURL
	if strings.TrimSpace(raw) == "" {
		raw = v.ScrapeURL
	}
	base := adapter.BaseURL(raw)
	if base == "" {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return nil
	}
	p := strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(p, tournamentsPath) {
		p += tournamentsPath
	}
	u.Path = p
	u.RawPath = ""
	return []string{u.String()}
}

func (a *Adapter) Probing() bool                   { return false }
func (a *Adapter) Fetcher() interfaces.Fetcher     { return a.fetcher }
func (a *Adapter) Parser() interfaces.SourceParser { return a.parser }

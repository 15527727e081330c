// Package website scrapes a venue's own site, probing the usual paths a poker
// room keeps its schedule under.
package website

import (
	"TourneySync/internal/adapter"
	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"
	"TourneySync/internal/parser"
)

// ProbePaths tried in order; the first one that yields records wins
var ProbePaths = []string{"", "/poker", "/poker/tournaments", "/tournaments"}

func init() {
	adapter.Register(model.SourceDirectWebsite, New)
}

type Adapter struct {
	fetcher interfaces.Fetcher
	parser  *parser.Generic
}

func New(deps adapter.Deps) interfaces.SourceAdapter {
	return &Adapter{fetcher: deps.HTTP, parser: parser.NewGeneric()}
}

func (a *Adapter) Source() model.ScrapeSource { return model.SourceDirectWebsite }

func (a *Adapter) Candidates(v *model.Venue) []string {
	base := adapter.BaseURL(v.ScrapeURL)
	if base == "" {
		return nil
	}
	urls := make([]string, 0, len(ProbePaths))
	for _, p := range ProbePaths {
		urls = append(urls, base+p)
	}
	return urls
}

func (a *Adapter) Probing() bool                   { return true }
func (a *Adapter) Fetcher() interfaces.Fetcher     { return a.fetcher }
func (a *Adapter) Parser() interfaces.SourceParser { return a.parser }

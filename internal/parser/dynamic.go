package parser

import (
	"TourneySync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// DefaultSelectors candidate containers for one tournament, most specific first
var DefaultSelectors = []string{
	".tournament-row",
	".tournament-item",
	"[data-tournament]",
	"table tbody tr",
	".event-list-item",
	".schedule-item",
}

// Dynamic rendered DOM of JavaScript-driven schedule widgets (Bravo)
type Dynamic struct {
	selectors []string
}

// NewDynamic nil selectors means DefaultSelectors
func NewDynamic(selectors []string) *Dynamic {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	return &Dynamic{selectors: selectors}
}

func (*Dynamic) Kind() model.ParserKind { return model.ParserDynamic }

func (p *Dynamic) Parse(content []byte, venueName string) []*model.TournamentRecord {
	doc, ok := loadDocument(content)
	if !ok {
		return nil
	}

	// first selector that matches anything wins, even if its elements yield nothing
	var items *goquery.Selection
	for _, sel := range p.selectors {
		if found := doc.Find(sel); found.Length() > 0 {
			items = found
			break
		}
	}
	if items == nil {
		return nil
	}

	var records []*model.TournamentRecord
	items.Each(func(_ int, el *goquery.Selection) {
		if rec, ok := candidate(textOf(el), venueName, extractOpts{}); ok {
			records = append(records, rec)
		}
	})
	return dedupByKey(records)
}

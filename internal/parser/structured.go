package parser

import (
	"strings"

	"TourneySync/internal/model"

	"github.com/PuerkitoBio/goquery"
)

// Structured listing-site tables (PokerAtlas): one tournament per <tr>
type Structured struct{}

func NewStructured() *Structured { return &Structured{} }

func (*Structured) Kind() model.ParserKind { return model.ParserStructured }

func (*Structured) Parse(content []byte, venueName string) []*model.TournamentRecord {
	doc, ok := loadDocument(content)
	if !ok {
		return nil
	}

	var records []*model.TournamentRecord
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		// header rows
		if row.ChildrenFiltered("th").Length() > 0 {
			return
		}
		cells := row.ChildrenFiltered("td")
		if cells.Length() < 2 {
			return
		}
		texts := make([]string, 0, cells.Length())
		cells.Each(func(_ int, td *goquery.Selection) {
			if t := textOf(td); t != "" {
				texts = append(texts, t)
			}
		})
		rowText := strings.Join(texts, " ")
		if !strings.Contains(rowText, "$") {
			return
		}
		if rec, ok := candidate(rowText, venueName, extractOpts{guarantee: true}); ok {
			records = append(records, rec)
		}
	})
	return dedupByKey(records)
}

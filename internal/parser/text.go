package parser

import (
	"bytes"
	"strconv"
	"strings"

	"TourneySync/internal/model"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// skipped when flattening markup to text
var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

func loadDocument(content []byte) (*goquery.Document, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, false
	}
	return doc, true
}

// textOf visible text of sel with element boundaries turned into spaces,
// so "<b>Fri</b>7:00" reads "Fri 7:00" rather than "Fri7:00".
func textOf(sel *goquery.Selection) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if invisible[n.Data] {
				return
			}
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapse(sb.String())
}

// dedupByKey first occurrence of each (day, time, buy-in) wins
func dedupByKey(records []*model.TournamentRecord) []*model.TournamentRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]*model.TournamentRecord, 0, len(records))
	for _, r := range records {
		key := r.DayOfWeek + "|" + r.StartTime + "|" + strconv.Itoa(r.BuyIn)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

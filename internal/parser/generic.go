package parser

import (
	"regexp"

	"TourneySync/internal/model"
)

// maxBlockLen blocks longer than this are prose, not schedule entries
const maxBlockLen = 500

var blockStartRe = regexp.MustCompile(`\$\d`)

// Generic free-form venue websites: the page is flattened to text and cut
// into blocks, each starting at a dollar amount
type Generic struct{}

func NewGeneric() *Generic { return &Generic{} }

func (*Generic) Kind() model.ParserKind { return model.ParserGeneric }

func (*Generic) Parse(content []byte, venueName string) []*model.TournamentRecord {
	doc, ok := loadDocument(content)
	if !ok {
		return nil
	}
	text := textOf(doc.Selection)

	var records []*model.TournamentRecord
	for _, block := range splitBlocks(text) {
		if len(block) > maxBlockLen {
			continue
		}
		if rec, ok := candidate(block, venueName, extractOpts{}); ok {
			records = append(records, rec)
		}
	}
	return dedupByKey(records)
}

// splitBlocks cuts text before every "$<digit>"; text ahead of the first
// amount is dropped since it cannot carry a buy-in
func splitBlocks(text string) []string {
	idx := blockStartRe.FindAllStringIndex(text, -1)
	blocks := make([]string, 0, len(idx))
	for i, loc := range idx {
		end := len(text)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		blocks = append(blocks, text[loc[0]:end])
	}
	return blocks
}

package parser

import "TourneySync/internal/model"

type extractOpts struct {
	guarantee bool
}

// candidate builds a record from one row/block of text; a buy-in and a
// start time are both required
func candidate(text, venueName string, opts extractOpts) (*model.TournamentRecord, bool) {
	buyIn, ok := ExtractBuyIn(text)
	if !ok {
		return nil, false
	}
	start, ok := ExtractStartTime(text)
	if !ok {
		return nil, false
	}
	rec := &model.TournamentRecord{
		VenueName: venueName,
		DayOfWeek: ExtractDay(text),
		StartTime: start,
		BuyIn:     buyIn,
		GameType:  ExtractGameType(text),
		Format:    ExtractFormat(text),
		IsActive:  true,
	}
	if opts.guarantee {
		rec.Guaranteed = ExtractGuarantee(text)
	}
	return rec, true
}

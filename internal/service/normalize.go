package service

import (
	"time"

	"TourneySync/internal/model"
)

// Normalize binds parser output to the venue and drops repeats by identity key
// (venue, day, start time, buy-in); the first occurrence wins. Records that
// fail validation are dropped, unknown days and game types fall back to defaults.
func Normalize(venue *model.Venue, sourceURL string, records []*model.TournamentRecord, now time.Time) []*model.TournamentRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]*model.TournamentRecord, 0, len(records))
	for _, r := range records {
		if r == nil || r.StartTime == "" || !model.ValidBuyIn(r.BuyIn) {
			continue
		}
		if !model.IsValidDay(r.DayOfWeek) {
			r.DayOfWeek = model.DayDaily
		}
		switch r.GameType {
		case model.GameNLH, model.GamePLO, model.GameOmaha:
		default:
			r.GameType = model.GameNLH
		}

		r.VenueID = venue.ID
		r.VenueName = venue.Name
		r.SourceURL = sourceURL
		r.LastScraped = now
		r.IsActive = true

		key := r.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

package service

import (
	"testing"
	"time"

	"TourneySync/internal/model"
)

func TestNormalize(t *testing.T) {
	v := &model.Venue{ID: 42, Name: "Aria"}
	now := time.Date(2026, 3, 6, 12, 0, 0, 0, time.UTC)
	in := []*model.TournamentRecord{
		{DayOfWeek: "Friday", StartTime: "7:00PM", BuyIn: 150, GameType: model.GameNLH},
		{DayOfWeek: "Friday", StartTime: "7:00PM", BuyIn: 150, GameType: model.GamePLO},
		{DayOfWeek: "Friday", StartTime: "7:00PM", BuyIn: 200},
		{DayOfWeek: "someday", StartTime: "1:00PM", BuyIn: 100, GameType: "Razz"},
		{DayOfWeek: "Monday", StartTime: "", BuyIn: 100},
		{DayOfWeek: "Monday", StartTime: "9:00PM", BuyIn: 5},
		nil,
	}

	out := Normalize(v, "https://example.com/tournaments", in, now)
	if len(out) != 3 {
		t.Fatalf("got %d records, want 3", len(out))
	}
	// first occurrence wins
	if out[0].GameType != model.GameNLH {
		t.Errorf("duplicate replaced the first record: %+v", out[0])
	}
	if out[1].GameType != model.GameNLH {
		t.Errorf("empty game type not defaulted: %q", out[1].GameType)
	}
	if out[2].DayOfWeek != model.DayDaily || out[2].GameType != model.GameNLH {
		t.Errorf("invalid enums not defaulted: %+v", out[2])
	}
	for _, r := range out {
		if r.VenueID != 42 || r.VenueName != "Aria" || r.SourceURL != "https://example.com/tournaments" ||
			!r.LastScraped.Equal(now) || !r.IsActive {
			t.Errorf("record not bound to venue: %+v", r)
		}
	}
}

func TestCursorTracker(t *testing.T) {
	tests := []struct {
		name string
		base uint64
		ids  []uint64
		done []uint64
		want uint64
	}{
		{"nothing done", 5, []uint64{7, 9, 12}, nil, 5},
		{"in order", 0, []uint64{7, 9, 12}, []uint64{7, 9}, 9},
		{"gap holds cursor", 0, []uint64{7, 9, 12}, []uint64{7, 12}, 7},
		{"out of order completes", 0, []uint64{7, 9, 12}, []uint64{12, 9, 7}, 12},
		{"first missing", 3, []uint64{7, 9}, []uint64{9}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCursorTracker(tt.base, tt.ids)
			for _, id := range tt.done {
				c.markDone(id)
			}
			if got := c.cursor(); got != tt.want {
				t.Errorf("cursor = %d, want %d", got, tt.want)
			}
		})
	}
}

package interfaces

import (
	"context"
	"time"

	"TourneySync/internal/model"
)

// Fetcher retrieves the content behind a URL (raw bytes or a rendered DOM)
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
}

// SourceParser turns one page into candidate tournaments. Best-effort: malformed
// input yields partial or empty results, never an error.
type SourceParser interface {
	Kind() model.ParserKind
	Parse(content []byte, venueName string) []*model.TournamentRecord
}

// SourceAdapter binds a scrape_source to its entry URLs, fetcher and parser
type SourceAdapter interface {
	Source() model.ScrapeSource
	// Candidates ordered URLs to try; empty when the venue has no usable URL
	Candidates(venue *model.Venue) []string
	// Probing true when a failed candidate should fall through to the next one
	Probing() bool
	Fetcher() Fetcher
	Parser() SourceParser
}

// VenueRepository read/write access to the venue registry
type VenueRepository interface {
	ListDue(ctx context.Context, filter model.DueFilter, now time.Time, window time.Duration) ([]*model.Venue, error)
	MarkScraped(ctx context.Context, venueID uint64, status model.ScrapeStatus, at time.Time) error
}

// TournamentRepository upsert side of the tournament store
type TournamentRepository interface {
	UpsertTournaments(ctx context.Context, records []*model.TournamentRecord) (int, error)
}

// RunRepository persists run reports
type RunRepository interface {
	CreateRun(ctx context.Context, run *model.ScrapeRun) error
	FinishRun(ctx context.Context, run *model.ScrapeRun) error
	ListRuns(ctx context.Context, limit int) ([]*model.ScrapeRun, error)
	GetRun(ctx context.Context, runUUID string) (*model.ScrapeRun, error)
}

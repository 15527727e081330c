package model

import "strings"

// ScrapeSource extraction strategy a venue is bound to
type ScrapeSource string

const (
	SourcePokerAtlas    ScrapeSource = "pokeratlas"
	SourceDirectWebsite ScrapeSource = "direct_website"
	SourceBravo         ScrapeSource = "bravo"
	SourceManual        ScrapeSource = "manual"
)

// ParseScrapeSource validates a user-supplied source filter
func ParseScrapeSource(s string) (ScrapeSource, bool) {
	switch src := ScrapeSource(strings.ToLower(strings.TrimSpace(s))); src {
	case SourcePokerAtlas, SourceDirectWebsite, SourceBravo, SourceManual:
		return src, true
	default:
		return "", false
	}
}

// ScrapeStatus venue freshness/failure state written after each run
type ScrapeStatus string

const (
	StatusPending       ScrapeStatus = "pending"
	StatusComplete      ScrapeStatus = "complete"
	StatusNoTournaments ScrapeStatus = "no_tournaments"
	StatusError         ScrapeStatus = "error"
)

// DayDaily is used when a schedule row names no weekday.
const DayDaily = "Daily"

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// IsValidDay reports whether d is a canonical day_of_week value
func IsValidDay(d string) bool {
	if d == DayDaily {
		return true
	}
	for _, w := range weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// GameType poker variant
type GameType string

const (
	GameNLH   GameType = "NLH"
	GamePLO   GameType = "PLO"
	GameOmaha GameType = "Omaha"
)

// Format optional tournament structure tag
type Format string

const (
	FormatTurbo     Format = "Turbo"
	FormatDeepStack Format = "Deep Stack"
	FormatBounty    Format = "Bounty"
)

// ParserKind tags which family of parser produced a record
type ParserKind string

const (
	ParserStructured ParserKind = "structured"
	ParserGeneric    ParserKind = "generic"
	ParserDynamic    ParserKind = "dynamic"
)

// Buy-in bounds; amounts outside are marketing copy or fees, not tournaments.
const (
	MinBuyIn = 10
	MaxBuyIn = 50000
)

// ValidBuyIn reports whether amount is a plausible tournament buy-in
func ValidBuyIn(amount int) bool {
	return amount >= MinBuyIn && amount <= MaxBuyIn
}

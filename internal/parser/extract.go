// Package parser turns fetched schedule pages into tournament candidates.
// Parsers are best effort: malformed markup yields fewer records, never an error.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"TourneySync/internal/model"
)

var (
	// first dollar amount; comma grouped or a plain digit run
	buyInRe     = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})+|\d+)`)
	timeRe      = regexp.MustCompile(`(?i)\b(\d{1,2}:\d{2}\s*(?:AM|PM)?)`)
	dayRe       = regexp.MustCompile(`(?i)\b(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday|Daily|Mon|Tues|Tue|Wed|Thurs|Thur|Thu|Fri|Sat|Sun)\b`)
	gtdRe       = regexp.MustCompile(`(?i)(?:GTD|Guaranteed)[:\s]*\$?([\d,]+)`)
	gtdSuffixRe = regexp.MustCompile(`(?i)\$([\d,]+)\s*(?:GTD|Guaranteed)`)
	ploRe       = regexp.MustCompile(`(?i)\bPLO\b`)
	omahaRe     = regexp.MustCompile(`(?i)\bOmaha\b`)
	turboRe     = regexp.MustCompile(`(?i)turbo`)
	deepStackRe = regexp.MustCompile(`(?i)deep\s*stack`)
	bountyRe    = regexp.MustCompile(`(?i)bounty`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

var dayByPrefix = map[string]string{
	"mon": "Monday",
	"tue": "Tuesday",
	"wed": "Wednesday",
	"thu": "Thursday",
	"fri": "Friday",
	"sat": "Saturday",
	"sun": "Sunday",
	"dai": model.DayDaily,
}

// ExtractBuyIn first dollar amount in text; ok is false when absent or out of range.
// When a row carries several amounts (buy-in, fee, guarantee) the first one wins.
func ExtractBuyIn(text string) (int, bool) {
	m := buyInRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, ok := parseAmount(m[1])
	if !ok || !model.ValidBuyIn(n) {
		return 0, false
	}
	return n, true
}

// ExtractStartTime "7:00 pm" -> "7:00PM"
func ExtractStartTime(text string) (string, bool) {
	m := timeRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(spaceRe.ReplaceAllString(m[1], "")), true
}

// ExtractDay canonical weekday, Daily when none is named
func ExtractDay(text string) string {
	m := dayRe.FindStringSubmatch(text)
	if m == nil {
		return model.DayDaily
	}
	if day, ok := dayByPrefix[strings.ToLower(m[1][:3])]; ok {
		return day
	}
	return model.DayDaily
}

func ExtractGameType(text string) model.GameType {
	switch {
	case ploRe.MatchString(text):
		return model.GamePLO
	case omahaRe.MatchString(text):
		return model.GameOmaha
	default:
		return model.GameNLH
	}
}

// ExtractFormat nil when the text names no known structure
func ExtractFormat(text string) *model.Format {
	var f model.Format
	switch {
	case turboRe.MatchString(text):
		f = model.FormatTurbo
	case deepStackRe.MatchString(text):
		f = model.FormatDeepStack
	case bountyRe.MatchString(text):
		f = model.FormatBounty
	default:
		return nil
	}
	return &f
}

// ExtractGuarantee "GTD $10,000", "Guaranteed: 5000" or "$10,000 GTD"
func ExtractGuarantee(text string) *int {
	for _, re := range []*regexp.Regexp{gtdRe, gtdSuffixRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, ok := parseAmount(m[1]); ok && n > 0 {
				return &n
			}
		}
	}
	return nil
}

func parseAmount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}

// collapse squeezes whitespace runs to one space
func collapse(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

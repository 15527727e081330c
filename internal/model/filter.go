package model

// DueFilter optional narrowing of the due-set, as received from the trigger
type DueFilter struct {
	State  string       // two-letter state code, upper-cased
	Source ScrapeSource // empty means any source
	Limit  int          // <= 0 means no caller limit (hard ceiling still applies)
	Force  bool         // bypass the freshness window
	After  uint64       // resume cursor: only venues with id > After
}

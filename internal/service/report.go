package service

import (
	"sync"
)

// VenueError one isolated venue failure
type VenueError struct {
	VenueID uint64 `json:"venueId"`
	Venue   string `json:"venue"`
	Error   string `json:"error"`
}

// Stats aggregate counters returned to the trigger
type Stats struct {
	VenuesProcessed     int          `json:"venuesProcessed"`
	TournamentsFound    int          `json:"tournamentsFound"`
	TournamentsInserted int          `json:"tournamentsInserted"`
	Skipped             int          `json:"skipped"`
	Errors              []VenueError `json:"errors"`
}

// RunResult what one invocation achieved; Cursor feeds the next run's "after"
type RunResult struct {
	Success   bool   `json:"success"`
	Stats     Stats  `json:"stats"`
	Remaining int    `json:"remaining"`
	Cursor    uint64 `json:"cursor"`
	RunID     string `json:"runId"`
}

// runReport accumulates stats from concurrent venue workers
type runReport struct {
	mu        sync.Mutex
	stats     Stats
	unstarted int
}

func newRunReport() *runReport {
	return &runReport{stats: Stats{Errors: []VenueError{}}}
}

func (r *runReport) processed() {
	r.mu.Lock()
	r.stats.VenuesProcessed++
	r.mu.Unlock()
}

func (r *runReport) skipped() {
	r.mu.Lock()
	r.stats.VenuesProcessed++
	r.stats.Skipped++
	r.mu.Unlock()
}

func (r *runReport) found(n int) {
	r.mu.Lock()
	r.stats.TournamentsFound += n
	r.mu.Unlock()
}

func (r *runReport) inserted(n int) {
	r.mu.Lock()
	r.stats.TournamentsInserted += n
	r.mu.Unlock()
}

func (r *runReport) failed(venueID uint64, venue string, err error) {
	r.mu.Lock()
	r.stats.Errors = append(r.stats.Errors, VenueError{VenueID: venueID, Venue: venue, Error: err.Error()})
	r.mu.Unlock()
}

// notStarted venue dropped because the run budget ran out
func (r *runReport) notStarted() {
	r.mu.Lock()
	r.unstarted++
	r.mu.Unlock()
}

func (r *runReport) snapshot() (Stats, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.Errors = append([]VenueError{}, r.stats.Errors...)
	return s, r.unstarted
}

// cursorTracker largest venue id such that every selected venue up to and
// including it has been handled; venues may finish out of order
type cursorTracker struct {
	mu    sync.Mutex
	order []uint64
	done  map[uint64]bool
	next  int
	base  uint64
}

func newCursorTracker(base uint64, ids []uint64) *cursorTracker {
	return &cursorTracker{order: ids, done: make(map[uint64]bool, len(ids)), base: base}
}

func (c *cursorTracker) markDone(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done[id] = true
	for c.next < len(c.order) && c.done[c.order[c.next]] {
		c.next++
	}
}

func (c *cursorTracker) cursor() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.next == 0 {
		return c.base
	}
	return c.order[c.next-1]
}

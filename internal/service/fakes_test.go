package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"TourneySync/internal/adapter"
	_ "TourneySync/internal/adapter/bravo"
	_ "TourneySync/internal/adapter/pokeratlas"
	_ "TourneySync/internal/adapter/website"
	"TourneySync/internal/model"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type statusUpdate struct {
	status model.ScrapeStatus
	at     time.Time
}

type memVenues struct {
	mu      sync.Mutex
	venues  []*model.Venue
	updates map[uint64][]statusUpdate
	listErr error
	filters []model.DueFilter
}

func newMemVenues(venues ...*model.Venue) *memVenues {
	return &memVenues{venues: venues, updates: map[uint64][]statusUpdate{}}
}

func (m *memVenues) ListDue(_ context.Context, f model.DueFilter, now time.Time, window time.Duration) ([]*model.Venue, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	var out []*model.Venue
	for _, v := range m.venues {
		if !v.IsActive || v.ID <= f.After {
			continue
		}
		if f.State != "" && v.State != strings.ToUpper(f.State) {
			continue
		}
		if f.Source != "" && v.ScrapeSource != f.Source {
			continue
		}
		if !f.Force && v.LastScraped != nil && now.Sub(*v.LastScraped) < window {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memVenues) MarkScraped(_ context.Context, id uint64, status model.ScrapeStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates[id] = append(m.updates[id], statusUpdate{status: status, at: at})
	for _, v := range m.venues {
		if v.ID == id {
			t := at
			v.LastScraped = &t
			v.ScrapeStatus = status
		}
	}
	return nil
}

func (m *memVenues) lastStatus(id uint64) model.ScrapeStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.updates[id]
	if len(u) == 0 {
		return ""
	}
	return u[len(u)-1].status
}

type memTournaments struct {
	mu   sync.Mutex
	rows map[string]model.TournamentRecord
	err  error
}

func newMemTournaments() *memTournaments {
	return &memTournaments{rows: map[string]model.TournamentRecord{}}
}

func (m *memTournaments) UpsertTournaments(_ context.Context, records []*model.TournamentRecord) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.rows[r.IdentityKey()] = *r
	}
	return len(records), nil
}

func (m *memTournaments) forVenue(id uint64) []model.TournamentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.TournamentRecord
	for _, r := range m.rows {
		if r.VenueID == id {
			out = append(out, r)
		}
	}
	return out
}

type memRuns struct {
	mu   sync.Mutex
	runs map[string]*model.ScrapeRun
}

func newMemRuns() *memRuns { return &memRuns{runs: map[string]*model.ScrapeRun{}} }

func (m *memRuns) CreateRun(_ context.Context, run *model.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *run
	m.runs[run.RunUUID] = &cp
	return nil
}

func (m *memRuns) FinishRun(_ context.Context, run *model.ScrapeRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.RunUUID]; !ok {
		return errors.New("unknown run")
	}
	cp := *run
	m.runs[run.RunUUID] = &cp
	return nil
}

func (m *memRuns) ListRuns(context.Context, int) ([]*model.ScrapeRun, error) { return nil, nil }

func (m *memRuns) GetRun(_ context.Context, id string) (*model.ScrapeRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[id], nil
}

// fakeSite serves canned pages by URL and counts requests
type fakeSite struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	delay  time.Duration
	panics map[string]bool
	hits   map[string]int
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages:  map[string]string{},
		errs:   map[string]error{},
		panics: map[string]bool{},
		hits:   map[string]int{},
	}
}

func (f *fakeSite) Fetch(_ context.Context, url string) (*model.Page, error) {
	f.mu.Lock()
	f.hits[url]++
	body, ok := f.pages[url]
	err := f.errs[url]
	boom := f.panics[url]
	delay := f.delay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if boom {
		panic("renderer crashed")
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("HTTP 404 from " + url)
	}
	return &model.Page{Body: []byte(body), FinalURL: url}, nil
}

func (f *fakeSite) hitCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[url]
}

func (f *fakeSite) totalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.hits {
		n += h
	}
	return n
}

func newTestRegistry(site *fakeSite) *adapter.SourceRegistry {
	deps := adapter.Deps{HTTP: site, Browser: site}
	return adapter.NewSourceRegistry([]string{"pokeratlas", "direct_website", "bravo"}, deps, testLogger())
}

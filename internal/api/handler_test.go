package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"TourneySync/internal/config"
	"TourneySync/internal/model"
	"TourneySync/internal/repository"
	"TourneySync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeRunner struct {
	calls  int
	filter model.DueFilter
	result *service.RunResult
	err    error
}

func (f *fakeRunner) Run(_ context.Context, _ string, filter model.DueFilter) (*service.RunResult, error) {
	f.calls++
	f.filter = filter
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeRuns struct {
	runs []*model.ScrapeRun
}

func (f *fakeRuns) CreateRun(context.Context, *model.ScrapeRun) error { return nil }
func (f *fakeRuns) FinishRun(context.Context, *model.ScrapeRun) error { return nil }
func (f *fakeRuns) ListRuns(_ context.Context, limit int) ([]*model.ScrapeRun, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}
func (f *fakeRuns) GetRun(_ context.Context, id string) (*model.ScrapeRun, error) {
	for _, r := range f.runs {
		if r.RunUUID == id {
			return r, nil
		}
	}
	return nil, repository.ErrRunNotFound
}

func okResult() *service.RunResult {
	return &service.RunResult{
		Success: true,
		Stats: service.Stats{
			VenuesProcessed:     2,
			TournamentsFound:    5,
			TournamentsInserted: 5,
			Skipped:             1,
			Errors:              []service.VenueError{},
		},
		Remaining: 7,
		Cursor:    42,
		RunID:     "run-1",
	}
}

func newTestRouter(env, secret string, runner ScrapeRunner, runs *fakeRuns) *gin.Engine {
	r := gin.New()
	h := NewScrapeHandler(runner, runs, testLogger())
	cron := r.Group("/api/cron/venue-tournaments", CronAuth(
		config.ServerConfig{Env: env},
		config.AuthConfig{CronSecret: secret},
		testLogger(),
	))
	cron.GET("", h.TriggerScrape)
	cron.POST("", h.TriggerScrape)
	cron.GET("/runs", h.ListRuns)
	cron.GET("/runs/:run_uuid", h.GetRun)
	return r
}

func do(r http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCronAuth(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		secret     string
		token      string
		wantStatus int
		wantRun    bool
	}{
		{"valid token", "production", "s3cret", "s3cret", http.StatusOK, true},
		{"wrong token", "production", "s3cret", "guess", http.StatusUnauthorized, false},
		{"missing token", "production", "s3cret", "", http.StatusUnauthorized, false},
		{"secret not configured", "production", "", "anything", http.StatusInternalServerError, false},
		{"development skips auth", "development", "", "", http.StatusOK, true},
		{"local skips auth", "local", "s3cret", "", http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: okResult()}
			r := newTestRouter(tt.env, tt.secret, runner, &fakeRuns{})
			w := do(r, http.MethodPost, "/api/cron/venue-tournaments", tt.token)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := runner.calls > 0; got != tt.wantRun {
				t.Errorf("runner called = %v, want %v", got, tt.wantRun)
			}
		})
	}
}

func TestTriggerScrapeResponseShape(t *testing.T) {
	runner := &fakeRunner{result: okResult()}
	r := newTestRouter("production", "s3cret", runner, &fakeRuns{})

	w := do(r, http.MethodGet, "/api/cron/venue-tournaments", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success bool `json:"success"`
		Stats   struct {
			VenuesProcessed     int               `json:"venuesProcessed"`
			TournamentsFound    int               `json:"tournamentsFound"`
			TournamentsInserted int               `json:"tournamentsInserted"`
			Skipped             int               `json:"skipped"`
			Errors              []json.RawMessage `json:"errors"`
		} `json:"stats"`
		Remaining *int `json:"remaining"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Stats.VenuesProcessed != 2 || body.Stats.TournamentsInserted != 5 || body.Stats.Skipped != 1 {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
	if body.Stats.Errors == nil {
		t.Error("errors must be an empty array, not null")
	}
	if body.Remaining == nil || *body.Remaining != 7 {
		t.Errorf("remaining missing or wrong: %s", w.Body.String())
	}
}

func TestTriggerScrapeFilters(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		want       model.DueFilter
	}{
		{"no params", "", http.StatusOK, model.DueFilter{}},
		{
			name:       "all params",
			query:      "?state=nv&source=pokeratlas&limit=10&force=true&after=120",
			wantStatus: http.StatusOK,
			want:       model.DueFilter{State: "NV", Source: model.SourcePokerAtlas, Limit: 10, Force: true, After: 120},
		},
		{"force false", "?force=false", http.StatusOK, model.DueFilter{}},
		{"bad state", "?state=Nevada", http.StatusBadRequest, model.DueFilter{}},
		{"bad source", "?source=myspace", http.StatusBadRequest, model.DueFilter{}},
		{"zero limit", "?limit=0", http.StatusBadRequest, model.DueFilter{}},
		{"non-numeric limit", "?limit=ten", http.StatusBadRequest, model.DueFilter{}},
		{"bad force", "?force=maybe", http.StatusBadRequest, model.DueFilter{}},
		{"negative after", "?after=-1", http.StatusBadRequest, model.DueFilter{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{result: okResult()}
			r := newTestRouter("development", "", runner, &fakeRuns{})
			w := do(r, http.MethodGet, "/api/cron/venue-tournaments"+tt.query, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if runner.calls != 0 {
					t.Error("runner must not be called on invalid input")
				}
				return
			}
			if runner.filter != tt.want {
				t.Errorf("filter = %+v, want %+v", runner.filter, tt.want)
			}
		})
	}
}

func TestTriggerScrapeStartFailure(t *testing.T) {
	runner := &fakeRunner{err: errors.New("list due venues: connection refused")}
	r := newTestRouter("development", "", runner, &fakeRuns{})
	w := do(r, http.MethodPost, "/api/cron/venue-tournaments", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestRunHistory(t *testing.T) {
	runs := &fakeRuns{runs: []*model.ScrapeRun{
		{RunUUID: "run-b", Trigger: service.TriggerCron, Success: true},
		{RunUUID: "run-a", Trigger: service.TriggerHTTP, Success: true},
	}}
	r := newTestRouter("production", "s3cret", &fakeRunner{}, runs)

	w := do(r, http.MethodGet, "/api/cron/venue-tournaments/runs?limit=1", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Runs []model.ScrapeRun `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Runs) != 1 || list.Runs[0].RunUUID != "run-b" {
		t.Errorf("runs = %+v", list.Runs)
	}

	if w := do(r, http.MethodGet, "/api/cron/venue-tournaments/runs/run-a", "s3cret"); w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/cron/venue-tournaments/runs/missing", "s3cret"); w.Code != http.StatusNotFound {
		t.Errorf("missing run status = %d, want 404", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/cron/venue-tournaments/runs", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated history status = %d, want 401", w.Code)
	}
}

type fakeSchedule struct{ rows []*model.TournamentRecord }

func (f *fakeSchedule) ListByVenue(_ context.Context, id uint64) ([]*model.TournamentRecord, error) {
	var out []*model.TournamentRecord
	for _, r := range f.rows {
		if r.VenueID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestListVenueTournaments(t *testing.T) {
	r := gin.New()
	h := NewScheduleHandler(&fakeSchedule{rows: []*model.TournamentRecord{
		{VenueID: 3, DayOfWeek: "Monday", StartTime: "11:00 AM", BuyIn: 150},
		{VenueID: 4, DayOfWeek: "Friday", StartTime: "7:00 PM", BuyIn: 400},
	}}, testLogger())
	r.GET("/api/venues/:venue_id/tournaments", h.ListVenueTournaments)

	w := do(r, http.MethodGet, "/api/venues/3/tournaments", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Tournaments []model.TournamentRecord `json:"tournaments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Tournaments) != 1 || body.Tournaments[0].BuyIn != 150 {
		t.Errorf("tournaments = %+v", body.Tournaments)
	}

	if w := do(r, http.MethodGet, "/api/venues/abc/tournaments", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"TourneySync/internal/config"
	"TourneySync/internal/fetcher"
	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// Trigger names recorded on each run
const (
	TriggerHTTP = "http"
	TriggerCron = "cron"
	TriggerCLI  = "cli"
)

// ScrapeService runs one batch: select due venues, scrape each in isolation,
// upsert what was found and report
type ScrapeService struct {
	venues      interfaces.VenueRepository
	tournaments interfaces.TournamentRepository
	runs        interfaces.RunRepository
	scheduler   *Scheduler
	cfg         config.SyncConfig
	logger      *logrus.Logger
	now         func() time.Time

	// scheduled runs resume after the previous one's cursor
	schedMu     sync.Mutex
	resumeAfter uint64
}

// NewScrapeService runs may be nil, in which case runs are not persisted
func NewScrapeService(
	venues interfaces.VenueRepository,
	tournaments interfaces.TournamentRepository,
	runs interfaces.RunRepository,
	sources SourceLookup,
	cfg config.SyncConfig,
	logger *logrus.Logger,
) *ScrapeService {
	return &ScrapeService{
		venues:      venues,
		tournaments: tournaments,
		runs:        runs,
		scheduler:   NewScheduler(venues, sources, cfg.MaxVenuesPerRun, cfg.FreshnessWindow, logger),
		cfg:         cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one invocation. An error is returned only when nothing could
// start (the due-set query failed); venue failures end up in the result.
func (s *ScrapeService) Run(ctx context.Context, trigger string, filter model.DueFilter) (*RunResult, error) {
	runID := uuid.NewString()
	started := s.now()
	log := s.logger.WithFields(logrus.Fields{"run_id": runID, "trigger": trigger})

	// 1. pick the due set
	due, err := s.scheduler.Select(ctx, filter, started)
	if err != nil {
		return nil, err
	}

	run := &model.ScrapeRun{
		RunUUID:      runID,
		Trigger:      trigger,
		FilterState:  filter.State,
		FilterSource: string(filter.Source),
		FilterLimit:  filter.Limit,
		Force:        filter.Force,
		After:        filter.After,
		StartedAt:    started,
	}
	s.createRun(ctx, run, log)

	report := newRunReport()
	ids := make([]uint64, 0, len(due.Selected))
	for _, v := range due.Selected {
		ids = append(ids, v.ID)
	}
	tracker := newCursorTracker(filter.After, ids)

	// 2. skipped venues are handled by being counted
	for _, v := range due.Skipped {
		report.skipped()
		tracker.markDone(v.ID)
	}

	// 3. scrape; the budget only gates starting new venues, work already
	// under way finishes with its own fetch timeouts
	budget := ctx
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		budget, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}
	work := context.WithoutCancel(ctx)

	var g errgroup.Group
	if s.cfg.Concurrency > 0 {
		g.SetLimit(s.cfg.Concurrency)
	} else {
		g.SetLimit(1)
	}
	for _, job := range due.Jobs {
		if budget.Err() != nil {
			report.notStarted()
			continue
		}
		g.Go(func() error {
			if budget.Err() != nil {
				report.notStarted()
				return nil
			}
			s.processVenue(work, job, report)
			tracker.markDone(job.Venue.ID)
			return nil
		})
	}
	_ = g.Wait()

	// 4. report
	stats, unstarted := report.snapshot()
	result := &RunResult{
		Success:   true,
		Stats:     stats,
		Remaining: due.Remaining + unstarted,
		Cursor:    tracker.cursor(),
		RunID:     runID,
	}
	if unstarted > 0 {
		log.WithField("unstarted", unstarted).Warn("run budget exhausted, venues left for the next run")
	}
	s.finishRun(work, run, result, log)

	log.WithFields(logrus.Fields{
		"processed": stats.VenuesProcessed,
		"found":     stats.TournamentsFound,
		"inserted":  stats.TournamentsInserted,
		"skipped":   stats.Skipped,
		"errors":    len(stats.Errors),
		"remaining": result.Remaining,
		"cursor":    result.Cursor,
		"elapsed":   time.Since(started).Round(time.Millisecond),
	}).Info("scrape run finished")
	return result, nil
}

// RunScheduled one in-process scheduled run with default filters. While a run
// leaves venues behind, the next one starts after its cursor; once a run
// finishes the due set the cursor resets to the lowest ids.
func (s *ScrapeService) RunScheduled(ctx context.Context) (*RunResult, error) {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()

	result, err := s.Run(ctx, TriggerCron, model.DueFilter{After: s.resumeAfter})
	if err != nil {
		return nil, err
	}
	if result.Remaining > 0 {
		s.resumeAfter = result.Cursor
	} else {
		s.resumeAfter = 0
	}
	return result, nil
}

// processVenue isolation boundary: whatever happens to this venue, including
// a panic, is recorded against it and never escapes
func (s *ScrapeService) processVenue(ctx context.Context, job Job, report *runReport) {
	v := job.Venue
	log := s.logger.WithFields(logrus.Fields{
		"venue_id": v.ID,
		"venue":    v.Name,
		"source":   v.ScrapeSource,
	})
	report.processed()

	defer func() {
		if r := recover(); r != nil {
			s.fail(ctx, v, fmt.Errorf("panic: %v", r), report, log)
		}
	}()

	records, sourceURL, err := s.scrapeVenue(ctx, job, log)
	if err != nil {
		s.fail(ctx, v, err, report, log)
		return
	}

	now := s.now()
	status := model.StatusNoTournaments
	if len(records) > 0 {
		normalized := Normalize(v, sourceURL, records, now)
		report.found(len(normalized))
		inserted, err := s.tournaments.UpsertTournaments(ctx, normalized)
		if err != nil {
			s.fail(ctx, v, fmt.Errorf("persist tournaments: %w", err), report, log)
			return
		}
		report.inserted(inserted)
		if inserted > 0 {
			status = model.StatusComplete
		}
		log.WithFields(logrus.Fields{"url": sourceURL, "found": len(normalized), "inserted": inserted}).Info("venue scraped")
	} else {
		log.Info("no tournaments found")
	}

	if err := s.venues.MarkScraped(ctx, v.ID, status, now); err != nil {
		s.fail(ctx, v, fmt.Errorf("update venue status: %w", err), report, log)
	}
}

// scrapeVenue fetches and parses the job's URLs. Probing adapters move on to
// the next URL when a fetch fails or parses to nothing; others stop at the first.
func (s *ScrapeService) scrapeVenue(ctx context.Context, job Job, log *logrus.Entry) ([]*model.TournamentRecord, string, error) {
	pageFetcher, parser := job.Adapter.Fetcher(), job.Adapter.Parser()
	if pageFetcher == nil || parser == nil {
		return nil, "", fmt.Errorf("source %s has no fetcher configured", job.Adapter.Source())
	}
	probing := job.Adapter.Probing()

	for _, u := range job.URLs {
		page, err := pageFetcher.Fetch(ctx, u)
		if err != nil {
			if !probing || errors.Is(err, context.Canceled) || errors.Is(err, fetcher.ErrBrowserDisabled) {
				return nil, "", err
			}
			log.WithError(err).WithField("url", u).Debug("probe failed, trying next path")
			continue
		}
		records := parser.Parse(page.Body, job.Venue.Name)
		finalURL := page.FinalURL
		if finalURL == "" {
			finalURL = u
		}
		if len(records) > 0 || !probing {
			return records, finalURL, nil
		}
		log.WithField("url", u).Debug("probe yielded no tournaments")
	}
	return nil, "", nil
}

func (s *ScrapeService) fail(ctx context.Context, v *model.Venue, err error, report *runReport, log *logrus.Entry) {
	log.WithError(err).Warn("venue failed")
	report.failed(v.ID, v.Name, err)
	if mErr := s.venues.MarkScraped(ctx, v.ID, model.StatusError, s.now()); mErr != nil {
		log.WithError(mErr).Error("could not mark venue as errored")
	}
}

func (s *ScrapeService) createRun(ctx context.Context, run *model.ScrapeRun, log *logrus.Entry) {
	if s.runs == nil {
		return
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		log.WithError(err).Warn("could not record run start")
	}
}

func (s *ScrapeService) finishRun(ctx context.Context, run *model.ScrapeRun, result *RunResult, log *logrus.Entry) {
	if s.runs == nil {
		return
	}
	finished := s.now()
	run.FinishedAt = &finished
	run.VenuesProcessed = result.Stats.VenuesProcessed
	run.TournamentsFound = result.Stats.TournamentsFound
	run.TournamentsInserted = result.Stats.TournamentsInserted
	run.Skipped = result.Stats.Skipped
	run.Remaining = result.Remaining
	run.Cursor = result.Cursor
	run.Success = result.Success
	if raw, err := json.Marshal(result.Stats.Errors); err == nil {
		run.Errors = datatypes.JSON(raw)
	}
	if err := s.runs.FinishRun(ctx, run); err != nil {
		log.WithError(err).Warn("could not record run result")
	}
}

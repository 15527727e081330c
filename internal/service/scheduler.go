package service

import (
	"context"
	"fmt"
	"time"

	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"

	"github.com/sirupsen/logrus"
)

// SourceLookup resolves a venue's scrape_source to its adapter
type SourceLookup interface {
	Get(source model.ScrapeSource) (interfaces.SourceAdapter, error)
}

// Job one venue to scrape: the adapter bound to its source and the URLs to try
type Job struct {
	Venue   *model.Venue
	Adapter interfaces.SourceAdapter
	URLs    []string
}

// DueSet venues selected for this invocation
type DueSet struct {
	Selected  []*model.Venue // id order; Jobs and Skipped partition it
	Jobs      []Job
	Skipped   []*model.Venue
	Remaining int // scrapeable due venues left over by the per-run ceiling
}

// Scheduler picks the due venues for one run
type Scheduler struct {
	venues  interfaces.VenueRepository
	sources SourceLookup
	ceiling int
	window  time.Duration
	logger  *logrus.Logger
}

func NewScheduler(venues interfaces.VenueRepository, sources SourceLookup, ceiling int, window time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		venues:  venues,
		sources: sources,
		ceiling: ceiling,
		window:  window,
		logger:  logger,
	}
}

// Select applies freshness and filters (in the repository query), then the
// hard ceiling. Manual venues and venues without a usable URL are skipped and
// do not take a slot under the ceiling, so they can never crowd out scrapeable
// venues with higher ids.
func (s *Scheduler) Select(ctx context.Context, filter model.DueFilter, now time.Time) (*DueSet, error) {
	candidates, err := s.venues.ListDue(ctx, filter, now, s.window)
	if err != nil {
		return nil, fmt.Errorf("list due venues: %w", err)
	}

	due := &DueSet{}
	for _, v := range candidates {
		job, reason := s.plan(v)
		full := s.ceiling > 0 && len(due.Jobs) >= s.ceiling
		if reason != "" {
			if full {
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"venue_id": v.ID,
				"venue":    v.Name,
				"source":   v.ScrapeSource,
				"reason":   reason,
			}).Debug("venue skipped")
			due.Selected = append(due.Selected, v)
			due.Skipped = append(due.Skipped, v)
			continue
		}
		if full {
			due.Remaining++
			continue
		}
		due.Selected = append(due.Selected, v)
		due.Jobs = append(due.Jobs, job)
	}

	s.logger.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"jobs":       len(due.Jobs),
		"skipped":    len(due.Skipped),
		"remaining":  due.Remaining,
		"force":      filter.Force,
	}).Info("due set selected")
	return due, nil
}

// plan returns a non-empty reason when the venue cannot be scraped
func (s *Scheduler) plan(v *model.Venue) (Job, string) {
	source := v.ScrapeSource
	if source == "" || source == model.SourceManual {
		return Job{}, "manual source"
	}
	a, err := s.sources.Get(source)
	if err != nil {
		return Job{}, err.Error()
	}
	urls := a.Candidates(v)
	if len(urls) == 0 {
		return Job{}, "no usable url"
	}
	return Job{Venue: v, Adapter: a, URLs: urls}, ""
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"TourneySync/internal/model"

	"gorm.io/gorm"
)

// ErrRunNotFound no scrape run with that uuid
var ErrRunNotFound = errors.New("scrape run not found")

const maxRunListSize = 200

// RunRepository persists the scrape_runs audit trail
type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) CreateRun(ctx context.Context, run *model.ScrapeRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("create run %s: %w", run.RunUUID, err)
	}
	return nil
}

// FinishRun writes the final counters. A run whose start was never recorded
// is inserted here instead.
func (r *RunRepository) FinishRun(ctx context.Context, run *model.ScrapeRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("finish run %s: %w", run.RunUUID, err)
	}
	return nil
}

// ListRuns most recent runs first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]*model.ScrapeRun, error) {
	if limit <= 0 || limit > maxRunListSize {
		limit = maxRunListSize
	}
	var runs []*model.ScrapeRun
	if err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (r *RunRepository) GetRun(ctx context.Context, runUUID string) (*model.ScrapeRun, error) {
	var run model.ScrapeRun
	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runUUID, err)
	}
	return &run, nil
}

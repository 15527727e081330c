package repository

import (
	"context"
	"fmt"

	"TourneySync/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 100

// TournamentRepository writes venue_daily_tournaments
type TournamentRepository struct {
	db *gorm.DB
}

func NewTournamentRepository(db *gorm.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

// UpsertTournaments inserts or updates records keyed on
// (venue_id, day_of_week, start_time, buy_in) in one transaction. Returns the
// number of records written; nothing is written when an error is returned.
func (r *TournamentRepository) UpsertTournaments(ctx context.Context, records []*model.TournamentRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, fmt.Errorf("begin tx: %w", tx.Error)
	}
	defer func() {
		if rec := recover(); rec != nil {
			tx.Rollback()
			panic(rec)
		}
	}()

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "venue_id"},
			{Name: "day_of_week"},
			{Name: "start_time"},
			{Name: "buy_in"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"venue_name", "game_type", "format", "guaranteed",
			"source_url", "last_scraped", "is_active", "updated_at",
		}),
	}).CreateInBatches(records, upsertBatchSize).Error
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("upsert tournaments: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return len(records), nil
}

// ListByVenue current schedule of one venue, ordered for display
func (r *TournamentRepository) ListByVenue(ctx context.Context, venueID uint64) ([]*model.TournamentRecord, error) {
	var out []*model.TournamentRecord
	err := r.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("day_of_week ASC, start_time ASC, buy_in ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list tournaments for venue %d: %w", venueID, err)
	}
	return out, nil
}

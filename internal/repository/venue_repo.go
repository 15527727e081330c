package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TourneySync/internal/model"

	"gorm.io/gorm"
)

// VenueRepository reads the venue registry and writes back scrape status
type VenueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// ListDue active venues matching the filter whose last_scraped is missing or
// at least window old, ordered by id ascending
func (r *VenueRepository) ListDue(ctx context.Context, f model.DueFilter, now time.Time, window time.Duration) ([]*model.Venue, error) {
	q := r.db.WithContext(ctx).Model(&model.Venue{}).
		Where("is_active = ?", true).
		Where("id > ?", f.After)

	if state := strings.ToUpper(strings.TrimSpace(f.State)); state != "" {
		q = q.Where("state = ?", state)
	}
	if f.Source != "" {
		q = q.Where("scrape_source = ?", string(f.Source))
	}
	if !f.Force {
		q = q.Where("(last_scraped IS NULL OR last_scraped <= ?)", now.Add(-window))
	}
	q = q.Order("id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var venues []*model.Venue
	if err := q.Find(&venues).Error; err != nil {
		return nil, fmt.Errorf("list due venues: %w", err)
	}
	return venues, nil
}

// MarkScraped sets last_scraped and scrape_status for one venue
func (r *VenueRepository) MarkScraped(ctx context.Context, id uint64, status model.ScrapeStatus, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Venue{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_scraped":  at,
			"scrape_status": string(status),
		})
	if res.Error != nil {
		return fmt.Errorf("update venue %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update venue %d: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}

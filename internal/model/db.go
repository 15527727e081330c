package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Venue a physical poker room; the unit of scraping. Owned by the venue registry,
// the pipeline only reads the scrape fields and writes last_scraped/scrape_status.
type Venue struct {
	ID            uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	Name          string       `gorm:"column:name;type:varchar(256);not null"`
	City          string       `gorm:"column:city;type:varchar(128)"`
	State         string       `gorm:"column:state;type:varchar(8);index"`
	ScrapeSource  ScrapeSource `gorm:"column:scrape_source;type:varchar(32);default:'manual';index"`
	ScrapeURL     string       `gorm:"column:scrape_url;type:varchar(512)"`
	PokerAtlasURL string       `gorm:"column:pokeratlas_url;type:varchar(512)"`
	LastScraped   *time.Time   `gorm:"column:last_scraped;type:timestamp"`
	ScrapeStatus  ScrapeStatus `gorm:"column:scrape_status;type:varchar(32);default:'pending'"`
	IsActive      bool         `gorm:"column:is_active;type:boolean;default:true"`
	CreatedAt     time.Time    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time    `gorm:"column:updated_at;autoUpdateTime"`
}

// TournamentRecord one recurring tournament on a venue's schedule
type TournamentRecord struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	VenueID     uint64    `gorm:"column:venue_id;type:bigint;not null;uniqueIndex:uk_tournament_identity,priority:1" json:"venue_id"`
	VenueName   string    `gorm:"column:venue_name;type:varchar(256)" json:"venue_name"`
	DayOfWeek   string    `gorm:"column:day_of_week;type:varchar(16);not null;uniqueIndex:uk_tournament_identity,priority:2" json:"day_of_week"`
	StartTime   string    `gorm:"column:start_time;type:varchar(16);not null;uniqueIndex:uk_tournament_identity,priority:3" json:"start_time"`
	BuyIn       int       `gorm:"column:buy_in;type:int;not null;uniqueIndex:uk_tournament_identity,priority:4" json:"buy_in"`
	GameType    GameType  `gorm:"column:game_type;type:varchar(16);default:'NLH'" json:"game_type"`
	Format      *Format   `gorm:"column:format;type:varchar(32)" json:"format,omitempty"`
	Guaranteed  *int      `gorm:"column:guaranteed;type:int" json:"guaranteed,omitempty"`
	SourceURL   string    `gorm:"column:source_url;type:varchar(1024)" json:"source_url"`
	LastScraped time.Time `gorm:"column:last_scraped;type:timestamp" json:"last_scraped"`
	IsActive    bool      `gorm:"column:is_active;type:boolean;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// IdentityKey (venue_id, day_of_week, start_time, buy_in)
func (t *TournamentRecord) IdentityKey() string {
	return fmt.Sprintf("%d|%s|%s|%d", t.VenueID, t.DayOfWeek, t.StartTime, t.BuyIn)
}

// ScrapeRun one invocation of the pipeline and what it achieved
type ScrapeRun struct {
	ID                  uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RunUUID             string         `gorm:"column:run_uuid;type:varchar(64);uniqueIndex;not null" json:"run_uuid"`
	Trigger             string         `gorm:"column:trigger_source;type:varchar(16);not null" json:"trigger"`
	FilterState         string         `gorm:"column:filter_state;type:varchar(8)" json:"filter_state"`
	FilterSource        string         `gorm:"column:filter_source;type:varchar(32)" json:"filter_source"`
	FilterLimit         int            `gorm:"column:filter_limit;type:int;default:0" json:"filter_limit"`
	Force               bool           `gorm:"column:force;type:boolean;default:false" json:"force"`
	After               uint64         `gorm:"column:after_venue_id;type:bigint;default:0" json:"after_venue_id"`
	StartedAt           time.Time      `gorm:"column:started_at;type:timestamp;not null" json:"started_at"`
	FinishedAt          *time.Time     `gorm:"column:finished_at;type:timestamp" json:"finished_at,omitempty"`
	VenuesProcessed     int            `gorm:"column:venues_processed;type:int;default:0" json:"venues_processed"`
	TournamentsFound    int            `gorm:"column:tournaments_found;type:int;default:0" json:"tournaments_found"`
	TournamentsInserted int            `gorm:"column:tournaments_inserted;type:int;default:0" json:"tournaments_inserted"`
	Skipped             int            `gorm:"column:skipped;type:int;default:0" json:"skipped"`
	Remaining           int            `gorm:"column:remaining;type:int;default:0" json:"remaining"`
	Cursor              uint64         `gorm:"column:cursor_venue_id;type:bigint;default:0" json:"cursor"`
	Errors              datatypes.JSON `gorm:"column:errors;type:jsonb" json:"errors"`
	Success             bool           `gorm:"column:success;type:boolean;default:false" json:"success"`
}

func (Venue) TableName() string            { return "poker_venues" }
func (TournamentRecord) TableName() string { return "venue_daily_tournaments" }
func (ScrapeRun) TableName() string        { return "scrape_runs" }

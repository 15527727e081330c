package api

import (
	"context"
	"net/http"
	"strconv"

	"TourneySync/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ScheduleReader read side of the tournament store
type ScheduleReader interface {
	ListByVenue(ctx context.Context, venueID uint64) ([]*model.TournamentRecord, error)
}

// ScheduleHandler exposes the scraped schedule of a venue
type ScheduleHandler struct {
	reader ScheduleReader
	logger *logrus.Logger
}

func NewScheduleHandler(reader ScheduleReader, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{reader: reader, logger: logger}
}

// ListVenueTournaments
// GET /api/venues/:venue_id/tournaments
func (h *ScheduleHandler) ListVenueTournaments(c *gin.Context) {
	venueID, err := strconv.ParseUint(c.Param("venue_id"), 10, 64)
	if err != nil || venueID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "venue_id must be a positive integer"})
		return
	}
	rows, err := h.reader.ListByVenue(c.Request.Context(), venueID)
	if err != nil {
		h.logger.WithError(err).Error("ListVenueTournaments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"venue_id": venueID, "tournaments": rows})
}

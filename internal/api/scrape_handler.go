package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"TourneySync/internal/interfaces"
	"TourneySync/internal/model"
	"TourneySync/internal/repository"
	"TourneySync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var stateCodeRe = regexp.MustCompile(`^[A-Za-z]{2}$`)

// ScrapeRunner runs one scrape batch
type ScrapeRunner interface {
	Run(ctx context.Context, trigger string, filter model.DueFilter) (*service.RunResult, error)
}

// ScrapeHandler the scheduled trigger and its run history
type ScrapeHandler struct {
	runner ScrapeRunner
	runs   interfaces.RunRepository
	logger *logrus.Logger
}

func NewScrapeHandler(runner ScrapeRunner, runs interfaces.RunRepository, logger *logrus.Logger) *ScrapeHandler {
	return &ScrapeHandler{runner: runner, runs: runs, logger: logger}
}

// TriggerScrape runs one batch over the due venues
// GET|POST /api/cron/venue-tournaments?state=NV&source=pokeratlas&limit=10&force=true&after=120
func (h *ScrapeHandler) TriggerScrape(c *gin.Context) {
	filter, err := parseDueFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.runner.Run(c.Request.Context(), service.TriggerHTTP, filter)
	if err != nil {
		h.logger.WithError(err).Error("scrape run failed to start")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListRuns recent runs, newest first
// GET /api/cron/venue-tournaments/runs?limit=20
func (h *ScrapeHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := h.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("ListRuns failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// GetRun one run by uuid
// GET /api/cron/venue-tournaments/runs/:run_uuid
func (h *ScrapeHandler) GetRun(c *gin.Context) {
	runUUID := c.Param("run_uuid")
	if runUUID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_uuid is required"})
		return
	}
	run, err := h.runs.GetRun(c.Request.Context(), runUUID)
	if errors.Is(err, repository.ErrRunNotFound) || (err == nil && run == nil) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("GetRun failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, run)
}

func parseDueFilter(c *gin.Context) (model.DueFilter, error) {
	var f model.DueFilter

	if state := strings.TrimSpace(c.Query("state")); state != "" {
		if !stateCodeRe.MatchString(state) {
			return f, fmt.Errorf("state must be a two-letter code, got %q", state)
		}
		f.State = strings.ToUpper(state)
	}
	if raw := c.Query("source"); raw != "" {
		src, ok := model.ParseScrapeSource(raw)
		if !ok {
			return f, fmt.Errorf("unknown source %q", raw)
		}
		f.Source = src
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return f, fmt.Errorf("limit must be a positive integer, got %q", raw)
		}
		f.Limit = n
	}
	if raw := c.Query("force"); raw != "" {
		force, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("force must be true or false, got %q", raw)
		}
		f.Force = force
	}
	if raw := c.Query("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("after must be a venue id, got %q", raw)
		}
		f.After = after
	}
	return f, nil
}

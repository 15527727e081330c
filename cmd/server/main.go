package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TourneySync/internal/api"
	"TourneySync/internal/app"
	"TourneySync/internal/config"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func main() {
	// 1. config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. logging
	logger := app.NewLogger(cfg.Server)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}
	if !cfg.Server.IsDevelopment() && cfg.Auth.CronSecret == "" {
		logger.Warn("CRON_SECRET is empty, trigger requests will be refused")
	}

	// 3. database
	db, err := app.OpenDatabase(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}

	// 4. pipeline
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.NewPipeline(ctx, cfg, db, logger)
	if err != nil {
		logger.Fatalf("build pipeline: %v", err)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.WithError(err).Warn("close pipeline")
		}
	}()

	// 5. in-process schedule
	if cfg.Sync.Cron != "" {
		cronLogger := cron.VerbosePrintfLogger(logger)
		c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger)))
		_, err := c.AddFunc(cfg.Sync.Cron, func() {
			if _, err := pipeline.Service.RunScheduled(ctx); err != nil {
				logger.WithError(err).Error("scheduled scrape failed")
			}
		})
		if err != nil {
			logger.Fatalf("invalid sync.cron %q: %v", cfg.Sync.Cron, err)
		}
		c.Start()
		defer c.Stop()
		logger.WithField("schedule", cfg.Sync.Cron).Info("in-process scrape schedule enabled")
	}

	// 6. http
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Server.Mode != gin.ReleaseMode {
		r.Use(gin.Logger())
		pprof.Register(r)
	}

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scrapeHandler := api.NewScrapeHandler(pipeline.Service, pipeline.Runs, logger)
	cronGroup := r.Group("/api/cron/venue-tournaments", api.CronAuth(cfg.Server, cfg.Auth, logger))
	cronGroup.GET("", scrapeHandler.TriggerScrape)
	cronGroup.POST("", scrapeHandler.TriggerScrape)
	cronGroup.GET("/runs", scrapeHandler.ListRuns)
	cronGroup.GET("/runs/:run_uuid", scrapeHandler.GetRun)

	scheduleHandler := api.NewScheduleHandler(pipeline.Tournaments, logger)
	r.GET("/api/venues/:venue_id/tournaments", scheduleHandler.ListVenueTournaments)

	writeTimeout := app.TriggerWriteTimeout(cfg)
	logger.WithField("write_timeout", writeTimeout).Info("trigger response deadline")
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}
	go func() {
		logger.Infof("listening on :%d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
}

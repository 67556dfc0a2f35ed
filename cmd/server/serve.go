package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/studyspace/internal/api"
	"github.com/vytor/studyspace/internal/calendar"
	"github.com/vytor/studyspace/internal/db"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/repository/sqlite"
	"github.com/vytor/studyspace/internal/services"
	"github.com/vytor/studyspace/internal/worker"
)

const (
	shutdownTimeout = 30 * time.Second
	sessionSweep    = time.Hour
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	log.Info("===========================================")
	log.Info("StudySpace Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("default_timezone=%s", cfg.DefaultTimezone)
	log.Debug("first_review_hour=%d", cfg.FirstReviewHour)
	log.Debug("calendar_worker_count=%d", cfg.CalendarWorkerCount)
	log.Debug("calendar_queue_size=%d", cfg.CalendarQueueSize)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	userRepo := sqlite.NewUserRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	topicRepo := sqlite.NewTopicRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)
	streakRepo := sqlite.NewStreakRepository(database.DB)

	calendarPool := worker.NewPool(cfg.CalendarWorkerCount, cfg.CalendarQueueSize)
	var syncer calendar.Syncer = calendar.NewLogSyncer()
	if cfg.CalendarURL != "" {
		log.Info("calendar sync enabled: %s", cfg.CalendarURL)
		syncer = calendar.NewHTTPSyncer(cfg.CalendarURL)
	}
	notifier := calendar.NewDispatcher(calendarPool, syncer, reviewRepo)

	settings := services.Settings{
		DefaultTimezone: cfg.DefaultTimezone,
		FirstReviewHour: cfg.FirstReviewHour,
		SessionTTL:      time.Duration(cfg.SessionTTLHours) * time.Hour,
		BcryptCost:      cfg.BcryptCost,
	}
	streakService := services.NewStreakService(userRepo, streakRepo, settings)

	srv := &api.Server{
		UserService:     services.NewUserService(userRepo, sessionRepo, settings),
		TopicService:    services.NewTopicService(topicRepo, notifier),
		CardService:     services.NewCardService(cardRepo, userRepo, notifier, settings),
		ReviewService:   services.NewReviewService(reviewRepo, notifier, settings),
		ScheduleService: services.NewScheduleService(reviewRepo, settings),
		StreakService:   streakService,
		StatsService:    services.NewStatsService(userRepo, topicRepo, cardRepo, reviewRepo, streakService, settings),
		DB:              database,
		Limiter:         api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calendarPool.Start(ctx)
	go sweepSessions(ctx, sessionRepo)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serverErr:
		log.Error("HTTP server error: %v", err)
		cancel()
		calendarPool.Stop()
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Stop drains queued calendar jobs before cancelling the worker context.
	log.Debug("stopping calendar pool: %d queued notifications to flush", calendarPool.QueueSize())
	calendarPool.Stop()
	if dropped := calendarPool.Dropped(); dropped > 0 {
		log.Warn("calendar notifications dropped: %d", dropped)
	}

	log.Info("===========================================")
	log.Info("StudySpace Server Stopped")
	log.Info("===========================================")
	return nil
}

// sweepSessions deletes expired sessions until ctx is done.
func sweepSessions(ctx context.Context, sessions repository.SessionRepository) {
	ticker := time.NewTicker(sessionSweep)
	defer ticker.Stop()
	log := logger.Default().WithPrefix("sessions")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				log.Warn("failed to delete expired sessions: %v", err)
				continue
			}
			if n > 0 {
				log.Info("deleted %d expired sessions", n)
			}
		}
	}
}

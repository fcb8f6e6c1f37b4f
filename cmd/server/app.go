package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"

	"github.com/atinyakov/daybook/internal/config"
	"github.com/atinyakov/daybook/internal/db"
	"github.com/atinyakov/daybook/internal/middleware"
	"github.com/atinyakov/daybook/internal/pdf"
	"github.com/atinyakov/daybook/internal/repository"
	"github.com/atinyakov/daybook/internal/server/handler/http"
	"github.com/atinyakov/daybook/internal/service"
	"github.com/atinyakov/daybook/internal/session"
	"go.uber.org/zap"
)

// app is the wired server: its router and the resources to release on exit.
type app struct {
	Handler nethttp.Handler
	closers []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// newApp connects storage, builds the services and mounts them on the router.
// Background workers stop when ctx is done.
func newApp(ctx context.Context, options *config.Options, log *zap.Logger) (*app, error) {
	a := &app{}

	loc, err := options.Location()
	if err != nil {
		return nil, err
	}

	// Initialize the relational store.
	database, err := db.Open(options.DatabaseDriver, options.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("cannot init database: %w", err)
	}
	a.closers = append(a.closers, database)

	// Periodically drop tags left without an entry.
	db.StartOrphanTagCleaner(ctx, database, tagCleanupInterval, log)

	store, err := newSessionStore(ctx, options)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	sessions := session.NewManager(store)

	// Initialize repositories.
	users := repository.NewUserRepository(database, options.DatabaseDriver)
	entries := repository.NewEntryRepository(database, options.DatabaseDriver)

	// Initialize business-logic services.
	clock := service.ClockIn(loc)
	authService := service.NewAuthService(users, sessions, log, clock)
	journalService := service.NewJournalService(entries, sessions, log, clock)
	statsService := service.NewStatsService(users, entries, log, clock)
	exportService := service.NewExportService(users, entries, pdf.NewRenderer(loc), log, clock)

	routerOpts := http.RouterOptions{
		CORSOrigins: options.CORSOrigins,
		Timeout:     requestTimeout,
	}
	if options.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(options.RateLimitRPS, options.RateLimitBurst)
		limiter.StartCleanupWorker(ctx, limiterSweep, limiterIdle)
		routerOpts.Limiter = limiter
	}

	// Build the router with middleware and routes.
	a.Handler = http.NewRouter(http.Handlers{
		Auth:    &http.AuthHandler{AuthService: authService},
		Entries: &http.EntryHandler{JournalService: journalService},
		Stats:   &http.StatsHandler{StatsService: statsService},
		Export:  &http.ExportHandler{ExportService: exportService, Location: loc, Logger: log},
	}, journalService, log, routerOpts)

	log.Info("storage ready",
		zap.String("driver", options.DatabaseDriver),
		zap.String("sessions", options.SessionStore),
		zap.String("timezone", loc.String()),
	)
	return a, nil
}

func newSessionStore(ctx context.Context, options *config.Options) (session.Store, error) {
	switch options.SessionStore {
	case config.SessionRedis:
		store, err := session.ConnectRedis(ctx, options.RedisURL, options.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to redis: %w", err)
		}
		return store, nil
	default:
		return session.NewMemoryStore(options.SessionTTL), nil
	}
}

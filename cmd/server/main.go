// Package main initializes and starts the daybook journal server,
// setting up configuration, logging, database connections, session storage,
// repositories, services, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/daybook/internal/config"
	"github.com/atinyakov/daybook/internal/logger"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	tagCleanupInterval = time.Hour
	limiterSweep       = time.Minute
	limiterIdle        = 10 * time.Minute
	requestTimeout     = 30 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	// Parse command-line and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init(options.LogLevel, options.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log
	defer func() { _ = zapLogger.Sync() }()

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, options, zapLogger); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

// run serves until ctx is cancelled, then shuts the server down gracefully.
func run(ctx context.Context, options *config.Options, log *zap.Logger) error {
	app, err := newApp(ctx, options, log)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		tlsOn := options.TLSCert != ""
		log.Info("starting server", zap.String("addr", options.Port), zap.Bool("tls", tlsOn))
		if tlsOn {
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

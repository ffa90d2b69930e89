package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miretskiy/ossim/config"
	"github.com/miretskiy/ossim/integration"
	"github.com/rs/zerolog"
)

// historyLimit bounds the in-memory run history when no record file is set
const historyLimit = 200

func newRecorder(cfg config.Config, logger zerolog.Logger) (integration.Recorder, error) {
	if cfg.RecordPath == "" {
		return integration.NewMemoryRecorder(historyLimit), nil
	}
	rec, err := integration.NewFileRecorder(cfg.RecordPath, logger)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// quitHandler asks main to shut the server down gracefully
func quitHandler(quit chan<- struct{}, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Info().Msg("shutdown requested via /quitquitquit")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "Server shutting down...")
		select {
		case quit <- struct{}{}:
		default:
		}
	}
}

func main() {
	configPath := flag.String("config", "", "Config file (.yaml, .json or .toml)")
	addr := flag.String("addr", "", "HTTP listen address, overrides the config file")
	logLevel := flag.String("log-level", "", "debug|info|warn|error, overrides the config file")
	flag.Parse()

	var cfg config.Config
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg, os.Stderr)

	recorder, err := newRecorder(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open run recorder")
	}
	defer recorder.Close()

	quit := make(chan struct{}, 1)
	s := newServer(cfg, logger, recorder)
	router := s.routes()
	router.Post("/quitquitquit", quitHandler(quit, logger))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("server starting")
		logger.Info().Str("endpoint", "ws://localhost"+cfg.Addr+"/ws").Msg("websocket endpoint")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	logger.Info().Msg("server stopped")
}

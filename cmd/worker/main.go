package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meteorwatch/skyfall-alert/internal/adapter/article"
	"github.com/meteorwatch/skyfall-alert/internal/adapter/feeds"
	"github.com/meteorwatch/skyfall-alert/internal/adapter/httpapi"
	"github.com/meteorwatch/skyfall-alert/internal/adapter/nominatim"
	"github.com/meteorwatch/skyfall-alert/internal/adapter/telegram"
	"github.com/meteorwatch/skyfall-alert/internal/config"
	"github.com/meteorwatch/skyfall-alert/internal/observability"
	"github.com/meteorwatch/skyfall-alert/internal/pipeline"
	"github.com/meteorwatch/skyfall-alert/internal/store"
)

const (
	feedTimeout    = 15 * time.Second
	articleTimeout = 20 * time.Second
	notifyTimeout  = 20 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := store.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Error("failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	geocoder := nominatim.NewResolver(
		st,
		nominatim.NewClient(cfg.UserAgent, cfg.GeocodeTimeout, logger),
		clock,
		cfg.GeocodeMinInterval,
		logger,
		metrics,
	)

	p := pipeline.New(pipeline.Deps{
		Store:    st,
		Source:   feeds.Source{},
		Feeds:    feeds.NewFetcher(cfg.UserAgent, feedTimeout, logger),
		Articles: article.NewFetcher(cfg.UserAgent, articleTimeout, logger),
		Resolver: geocoder,
		Notifier: telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, notifyTimeout, logger),
		Query:    cfg.NewsQuery,
		Interval: cfg.PollInterval,
		Clock:    clock,
		Logger:   logger,
		Metrics:  metrics,
	})

	srv := httpapi.NewOpsServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

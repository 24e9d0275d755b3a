package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/ai"
	"server/internal/content"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	contentClient, err := content.NewClient(content.Options{
		BaseURL: cfg.ContentAPIURL,
		Token:   cfg.ContentAPIToken,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure content store")
	}

	jobs := repo.NewJobRepository(dbpool)
	orders := repo.NewOrderRepository(dbpool)

	var trigger ai.WorkerTrigger
	if cfg.WorkerTriggerURL != "" {
		trigger, err = ai.NewHTTPTrigger(cfg.WorkerTriggerURL, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure worker trigger")
		}
	} else {
		logger.Warn().Msg("WORKER_TRIGGER_URL not set, relying on the worker claim loop only")
	}

	dispatcher := ai.NewDispatcher(jobs, trigger, logger)
	poller := ai.NewPoller(jobs, cfg.JobPollInterval, cfg.JobPollMaxAttempts, logger)
	materializer := ai.NewMaterializer(jobs, contentClient, contentClient, contentClient, logger)

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, locale falls back to headers")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := &handlers.App{
		Config:        cfg,
		Logger:        logger,
		Validate:      validator.New(),
		Jobs:          jobs,
		Orders:        orders,
		Protocols:     contentClient,
		Templates:     contentClient,
		Practitioners: contentClient,
		Dispatcher:    dispatcher,
		Poller:        poller,
		Materializer:  materializer,
	}

	router := httpapi.NewRouter(app, countryLookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

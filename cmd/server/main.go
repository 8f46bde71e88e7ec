package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/castillodev/storefront-scraper/internal/api"
	"github.com/castillodev/storefront-scraper/internal/assets"
	"github.com/castillodev/storefront-scraper/internal/backoff"
	"github.com/castillodev/storefront-scraper/internal/browser"
	"github.com/castillodev/storefront-scraper/internal/config"
	"github.com/castillodev/storefront-scraper/internal/database"
	"github.com/castillodev/storefront-scraper/internal/events"
	"github.com/castillodev/storefront-scraper/internal/provider"
	"github.com/castillodev/storefront-scraper/internal/scraper"
	"github.com/castillodev/storefront-scraper/pkg/logger"
)

func main() {
	// Missing .env is fine; plain environment variables still apply.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting storefront scraper")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	descriptors := provider.Defaults()
	if cfg.ProvidersFile != "" {
		extra, err := provider.LoadFile(cfg.ProvidersFile)
		if err != nil {
			logger.Error("failed to load providers file", "path", cfg.ProvidersFile, "error", err)
			os.Exit(1)
		}
		descriptors = append(descriptors, extra...)
	}

	registry, err := provider.NewRegistry(descriptors...)
	if err != nil {
		logger.Error("invalid provider configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("providers registered", "keys", registry.Keys())

	db, err := database.New(ctx, database.Config{
		Host:        cfg.Database.Host,
		Port:        cfg.Database.Port,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		Database:    cfg.Database.DBName,
		SSLMode:     cfg.Database.SSLMode,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnLife: cfg.Database.MaxConnLife,
		MaxConnIdle: cfg.Database.MaxConnIdle,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()

	relay := database.NewRelay(db, redisClient, logger, database.RelayConfig{
		PollInterval: cfg.Redis.RelayInterval,
		BatchSize:    cfg.Redis.RelayBatch,
	})
	go func() {
		if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("relay stopped", "error", err)
		}
	}()

	browserOpts := &browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		ProfileRoot:    cfg.Browser.ProfileRoot,
	}
	sessions := func() (scraper.ListingSession, error) {
		return browser.Acquire(browserOpts)
	}

	httpClient := &http.Client{Timeout: cfg.Scraper.DetailTimeout}

	lister := scraper.NewLister(sessions, scraper.ListerOptions{
		Scroll:       backoff.Fixed(cfg.Scraper.ScrollIterations, cfg.Scraper.ScrollPause),
		LoadMore:     backoff.Fixed(cfg.Scraper.LoadMoreMax, cfg.Scraper.LoadMorePause),
		LoadMoreWait: cfg.Scraper.LoadMoreWait,
		ListingWait:  cfg.Scraper.ListingWait,
	}, logger)

	assetStore := assets.NewStore(cfg.Assets.Root, httpClient,
		rate.Every(cfg.Scraper.AssetPause), logger)

	categories := database.NewCategoryRepository(db)
	publisher := events.NewPublisher(db, logger)
	snapshots := database.NewSnapshotRepository(db)

	service := scraper.NewService(
		registry,
		scraper.NewDiscoverer(httpClient, logger),
		lister,
		scraper.NewDetailFetcher(httpClient, logger),
		assetStore,
		categories,
		publisher,
		cfg.Scraper.ProductPause,
		logger,
	)

	handlers := api.NewHandlers(service, categories, snapshots,
		cfg.Assets.Root, cfg.Assets.PublicPath, logger)

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", "error", err)
	}
	logger.Info("stopped")
}

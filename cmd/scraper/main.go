package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

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
	var (
		providerKey = flag.String("provider", "", "Provider key to scrape")
		category    = flag.String("category", "", "Category name to scrape")
		listOnly    = flag.Bool("list-categories", false, "Only discover and print categories")
		headless    = flag.Bool("headless", true, "Run browser in headless mode")
	)
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *providerKey == "" {
		fmt.Println("Usage: scraper -provider <key> [-category <name>] [-list-categories]")
		flag.Usage()
		os.Exit(1)
	}

	logger := logger.New(cfg.Logging.Level, cfg.Logging.Format)

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

	browserOpts := &browser.Options{
		Headless:       *headless && cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
		ProfileRoot:    cfg.Browser.ProfileRoot,
	}
	sessions := func() (scraper.ListingSession, error) {
		return browser.Acquire(browserOpts)
	}

	httpClient := &http.Client{Timeout: cfg.Scraper.DetailTimeout}

	service := scraper.NewService(
		registry,
		scraper.NewDiscoverer(httpClient, logger),
		scraper.NewLister(sessions, scraper.ListerOptions{
			Scroll:       backoff.Fixed(cfg.Scraper.ScrollIterations, cfg.Scraper.ScrollPause),
			LoadMore:     backoff.Fixed(cfg.Scraper.LoadMoreMax, cfg.Scraper.LoadMorePause),
			LoadMoreWait: cfg.Scraper.LoadMoreWait,
			ListingWait:  cfg.Scraper.ListingWait,
		}, logger),
		scraper.NewDetailFetcher(httpClient, logger),
		assets.NewStore(cfg.Assets.Root, httpClient, rate.Every(cfg.Scraper.AssetPause), logger),
		database.NewCategoryRepository(db),
		events.NewPublisher(db, logger),
		cfg.Scraper.ProductPause,
		logger,
	)

	if *listOnly {
		categories, err := service.FetchCategories(ctx, *providerKey)
		if err != nil {
			logger.Error("failed to discover categories", "provider", *providerKey, "error", err)
			os.Exit(1)
		}
		for _, c := range categories {
			fmt.Printf("%s\t%s\n", c.Name, c.URL)
		}
		return
	}

	if *category == "" {
		fmt.Println("Either -category or -list-categories is required.")
		flag.Usage()
		os.Exit(1)
	}

	report, err := service.UpdateAssetsForCategory(ctx, *providerKey, *category)
	if err != nil {
		logger.Error("scrape failed", "provider", *providerKey, "category", *category, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Provider:  %s\n", report.Provider)
	fmt.Printf("Category:  %s (id %d)\n", report.Category, report.CategoryID)
	fmt.Printf("Products:  %d\n", report.Products)
	fmt.Printf("Snapshots: %d\n", report.Snapshots)
	for _, f := range report.Failures {
		fmt.Printf("Skipped:   %s (%s): %s\n", f.Name, f.URL, f.Err)
	}
}

package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/castillodev/storefront-scraper/internal/models"
	"github.com/castillodev/storefront-scraper/internal/provider"
	"github.com/castillodev/storefront-scraper/internal/sanitize"
)

// CategoryRegistrar upserts a category keyed by (provider, name) and
// returns its stable id. The upsert must be atomic at the storage layer
// so concurrent scrapes of the same category are safe.
type CategoryRegistrar interface {
	GetOrCreate(ctx context.Context, providerKey, name, url string) (int64, error)
}

// SnapshotWriter appends one immutable ingestion record. It never
// updates or deletes existing rows.
type SnapshotWriter interface {
	Append(ctx context.Context, snap *models.Snapshot) error
}

// AssetStore resolves an image URL to a local file path, downloading it
// unless a file of the derived name already exists.
type AssetStore interface {
	Acquire(ctx context.Context, imageURL, providerKey, category, productName string, headers map[string]string) (string, error)
}

// Service orchestrates one category scrape: discovery, registration,
// listing, per-product detail and asset acquisition, and snapshot
// persistence.
type Service struct {
	registry   *provider.Registry
	discoverer *Discoverer
	lister     *Lister
	details    *DetailFetcher
	assets     AssetStore
	registrar  CategoryRegistrar
	snapshots  SnapshotWriter
	pause      *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	registry *provider.Registry,
	discoverer *Discoverer,
	lister *Lister,
	details *DetailFetcher,
	assets AssetStore,
	registrar CategoryRegistrar,
	snapshots SnapshotWriter,
	productPause time.Duration,
	logger *slog.Logger,
) *Service {
	pause := rate.NewLimiter(rate.Inf, 1)
	if productPause > 0 {
		pause = rate.NewLimiter(rate.Every(productPause), 1)
	}
	return &Service{
		registry:   registry,
		discoverer: discoverer,
		lister:     lister,
		details:    details,
		assets:     assets,
		registrar:  registrar,
		snapshots:  snapshots,
		pause:      pause,
		logger:     logger.With("component", "scraper"),
		now:        time.Now,
	}
}

// FetchCategories discovers the live categories of a provider.
func (s *Service) FetchCategories(ctx context.Context, providerKey string) ([]models.Category, error) {
	desc, err := s.registry.Get(providerKey)
	if err != nil {
		return nil, err
	}
	return s.discoverer.FetchCategories(ctx, desc)
}

// UpdateAssetsForCategory scrapes one category end to end: it matches
// categoryName against freshly discovered categories (case- and
// whitespace-insensitive), registers the category, exhausts the
// listing, then per product fetches the detail page, downloads assets
// and appends a snapshot. A failing product is skipped and recorded in
// the report; the remaining products are still processed.
func (s *Service) UpdateAssetsForCategory(ctx context.Context, providerKey, categoryName string) (*models.ScrapeReport, error) {
	desc, err := s.registry.Get(providerKey)
	if err != nil {
		return nil, err
	}

	categories, err := s.discoverer.FetchCategories(ctx, desc)
	if err != nil {
		return nil, err
	}

	match := findCategory(categories, categoryName)
	if match == nil {
		return nil, fmt.Errorf("%w: %q on provider %q", ErrCategoryNotFound, categoryName, desc.Key)
	}

	categoryID, err := s.registrar.GetOrCreate(ctx, desc.Key, match.Name, match.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to register category %q: %w", match.Name, err)
	}

	stubs, err := s.lister.ListProducts(ctx, desc, match.URL)
	if err != nil {
		return nil, err
	}

	report := &models.ScrapeReport{
		Provider:   desc.Key,
		Category:   match.Name,
		CategoryID: categoryID,
		Products:   len(stubs),
	}

	for _, stub := range stubs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		if err := s.scrapeProduct(ctx, desc, match.Name, categoryID, stub); err != nil {
			s.logger.Warn("skipping product",
				"provider", desc.Key,
				"product", stub.Name,
				"url", stub.DetailURL,
				"error", err)
			report.Failures = append(report.Failures, models.ProductFailure{
				Name: stub.Name,
				URL:  stub.DetailURL,
				Err:  err.Error(),
			})
			continue
		}
		report.Snapshots++

		if err := s.pause.Wait(ctx); err != nil {
			return report, err
		}
	}

	s.logger.Info("category scrape finished",
		"provider", desc.Key,
		"category", match.Name,
		"products", report.Products,
		"snapshots", report.Snapshots,
		"failures", len(report.Failures))

	return report, nil
}

func (s *Service) scrapeProduct(ctx context.Context, desc *provider.Descriptor, categoryName string, categoryID int64, stub models.ProductStub) error {
	detail, err := s.details.FetchDetail(ctx, desc, stub.DetailURL)
	if err != nil {
		return err
	}

	// Asset failures are soft: the candidate is dropped and the
	// snapshot records only files that made it to disk.
	images := make([]string, 0, len(detail.ImageCandidates))
	for _, candidate := range detail.ImageCandidates {
		path, err := s.assets.Acquire(ctx, candidate, desc.Key, categoryName, stub.Name, desc.Headers)
		if err != nil {
			s.logger.Warn("skipping asset",
				"provider", desc.Key,
				"product", stub.Name,
				"image", candidate,
				"error", err)
			continue
		}
		images = append(images, path)
	}

	variants := detail.Variants
	if variants == nil {
		variants = []string{}
	}

	snap := &models.Snapshot{
		Provider:   desc.Key,
		SKU:        sanitize.SKU(stub.Name),
		CategoryID: categoryID,
		FetchedAt:  s.now().UTC(),
		Payload: models.SnapshotPayload{
			Name:        stub.Name,
			Description: detail.Description,
			Variants:    variants,
			Images:      images,
		},
	}

	if err := s.snapshots.Append(ctx, snap); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// findCategory matches name against discovered categories after folding
// case and whitespace, the same normalization used for provider keys.
func findCategory(categories []models.Category, name string) *models.Category {
	folded := sanitize.FoldName(name)
	for i := range categories {
		if sanitize.FoldName(categories[i].Name) == folded {
			return &categories[i]
		}
	}
	return nil
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/castillodev/storefront-scraper/internal/browser"
	"github.com/castillodev/storefront-scraper/internal/models"
	"github.com/castillodev/storefront-scraper/internal/provider"
	"github.com/castillodev/storefront-scraper/internal/sanitize"
	"github.com/castillodev/storefront-scraper/internal/scraper"
)

// Scraper is the slice of the scrape service the API drives.
type Scraper interface {
	FetchCategories(ctx context.Context, providerKey string) ([]models.Category, error)
	UpdateAssetsForCategory(ctx context.Context, providerKey, categoryName string) (*models.ScrapeReport, error)
}

// CategoryStore reads and registers persisted categories.
type CategoryStore interface {
	GetOrCreate(ctx context.Context, providerKey, name, url string) (int64, error)
	ListByProvider(ctx context.Context, providerKey string) ([]models.Category, error)
}

// SnapshotStore reads persisted snapshots.
type SnapshotStore interface {
	ListByProvider(ctx context.Context, providerKey string, categoryID int64) ([]models.Snapshot, error)
}

type Handlers struct {
	scraper    Scraper
	categories CategoryStore
	snapshots  SnapshotStore
	assetsRoot string
	publicPath string
	logger     *slog.Logger
}

func NewHandlers(s Scraper, categories CategoryStore, snapshots SnapshotStore, assetsRoot, publicPath string, logger *slog.Logger) *Handlers {
	return &Handlers{
		scraper:    s,
		categories: categories,
		snapshots:  snapshots,
		assetsRoot: assetsRoot,
		publicPath: publicPath,
		logger:     logger.With("component", "api"),
	}
}

// ListCategories returns a provider's registered categories.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")

	categories, err := h.categories.ListByProvider(r.Context(), providerKey)
	if err != nil {
		h.logger.Error("failed to list categories", "provider", providerKey, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if len(categories) == 0 {
		h.respondError(w, http.StatusNotFound, "no categories for provider "+providerKey)
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

// RefreshCategories re-discovers a provider's live categories, upserts
// them and returns the registered rows.
func (h *Handlers) RefreshCategories(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")

	live, err := h.scraper.FetchCategories(r.Context(), providerKey)
	if err != nil {
		h.respondScrapeError(w, providerKey, err)
		return
	}

	for _, c := range live {
		if _, err := h.categories.GetOrCreate(r.Context(), c.Provider, c.Name, c.URL); err != nil {
			h.logger.Error("failed to register category", "provider", providerKey, "category", c.Name, "error", err)
			h.respondError(w, http.StatusInternalServerError, "failed to register categories")
			return
		}
	}

	categories, err := h.categories.ListByProvider(r.Context(), providerKey)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}

	h.respondJSON(w, http.StatusOK, categories)
}

// ScrapeAssets runs one category scrape and returns its report. The
// request blocks for the duration of the scrape.
func (h *Handlers) ScrapeAssets(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")
	categoryName := chi.URLParam(r, "category")

	report, err := h.scraper.UpdateAssetsForCategory(r.Context(), providerKey, categoryName)
	if err != nil {
		h.respondScrapeError(w, providerKey, err)
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

type assetGroup struct {
	Product string   `json:"product"`
	Files   []string `json:"files"`
}

type assetListing struct {
	Provider string       `json:"provider"`
	Category string       `json:"category"`
	Assets   []assetGroup `json:"assets"`
}

// ListAssets lists the files downloaded for one category, grouped by
// product prefix and addressed by their public URLs.
func (h *Handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")
	categoryName := chi.URLParam(r, "category")

	safeCategory := sanitize.Filename(categoryName)
	dir := filepath.Join(h.assetsRoot, providerKey, safeCategory)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			h.respondError(w, http.StatusNotFound, "no assets for "+providerKey+"/"+safeCategory)
			return
		}
		h.logger.Error("failed to read assets directory", "dir", dir, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	groups := make(map[string][]string)
	var order []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		product := productPrefix(entry.Name())
		if _, seen := groups[product]; !seen {
			order = append(order, product)
		}
		groups[product] = append(groups[product],
			h.publicPath+"/"+providerKey+"/"+safeCategory+"/"+entry.Name())
	}

	listing := assetListing{Provider: providerKey, Category: categoryName}
	for _, product := range order {
		listing.Assets = append(listing.Assets, assetGroup{Product: product, Files: groups[product]})
	}

	h.respondJSON(w, http.StatusOK, listing)
}

// ListSnapshots returns a provider's snapshot history, optionally
// filtered by category id.
func (h *Handlers) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	providerKey := chi.URLParam(r, "provider")

	var categoryID int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "category_id must be an integer")
			return
		}
		categoryID = id
	}

	snapshots, err := h.snapshots.ListByProvider(r.Context(), providerKey, categoryID)
	if err != nil {
		h.logger.Error("failed to list snapshots", "provider", providerKey, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}

	h.respondJSON(w, http.StatusOK, snapshots)
}

// productPrefix recovers the sanitized product name from a derived
// asset filename (everything before the final underscore-joined
// basename is not recoverable exactly, so the first segment group up to
// the last underscore is used).
func productPrefix(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '_' {
			return filename[:i]
		}
	}
	return filename
}

func (h *Handlers) respondScrapeError(w http.ResponseWriter, providerKey string, err error) {
	switch {
	case errors.Is(err, provider.ErrUnknownProvider),
		errors.Is(err, scraper.ErrCategoryNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scraper.ErrListingUnavailable),
		errors.Is(err, scraper.ErrFetchFailed),
		errors.Is(err, browser.ErrBrowserUnavailable):
		h.logger.Error("scrape failed", "provider", providerKey, "error", err)
		h.respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error("scrape failed", "provider", providerKey, "error", err)
		h.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

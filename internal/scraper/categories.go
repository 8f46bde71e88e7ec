package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/castillodev/storefront-scraper/internal/models"
	"github.com/castillodev/storefront-scraper/internal/provider"
)

// Discoverer fetches a storefront homepage and parses its navigation
// menu into categories.
type Discoverer struct {
	client *http.Client
	logger *slog.Logger
}

func NewDiscoverer(client *http.Client, logger *slog.Logger) *Discoverer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Discoverer{
		client: client,
		logger: logger.With("component", "discoverer"),
	}
}

// FetchCategories performs one GET against the provider's base URL and
// returns the categories in menu order. Entries whose link is empty,
// "#", or a script pseudo-URL are excluded; duplicates by name are kept.
func (d *Discoverer) FetchCategories(ctx context.Context, desc *provider.Descriptor) ([]models.Category, error) {
	doc, err := fetchDocument(ctx, d.client, desc.BaseURL, desc.Headers)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	doc.Find(desc.Selectors.CategoryMenu).First().Find(desc.Selectors.CategoryLink).Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if !usableLink(href) {
			return
		}
		name := strings.TrimSpace(a.Text())
		categories = append(categories, models.Category{
			Provider: desc.Key,
			Name:     name,
			URL:      desc.ResolveURL(href),
		})
	})

	d.logger.Info("discovered categories", "provider", desc.Key, "count", len(categories))
	return categories, nil
}

func usableLink(href string) bool {
	if href == "" || href == "#" {
		return false
	}
	return !strings.Contains(strings.ToLower(href), "javascript:")
}

// fetchDocument GETs url with the provider headers and parses the body.
func fetchDocument(ctx context.Context, client *http.Client, url string, headers map[string]string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %s: %v", ErrFetchFailed, url, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFetchFailed, url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

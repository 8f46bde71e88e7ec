package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/castillodev/storefront-scraper/internal/models"
	"github.com/castillodev/storefront-scraper/internal/provider"
)

// DetailFetcher retrieves and parses product detail pages. Detail pages
// are render-complete without JavaScript, so a plain HTTP GET suffices.
type DetailFetcher struct {
	client *http.Client
	logger *slog.Logger
}

func NewDetailFetcher(client *http.Client, logger *slog.Logger) *DetailFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &DetailFetcher{
		client: client,
		logger: logger.With("component", "detail_fetcher"),
	}
}

// FetchDetail GETs productURL and extracts the description, variant
// options and candidate image URLs. A missing description or variant
// block is not an error; only the fetch itself can fail.
func (f *DetailFetcher) FetchDetail(ctx context.Context, desc *provider.Descriptor, productURL string) (*models.ProductDetail, error) {
	doc, err := fetchDocument(ctx, f.client, productURL, desc.Headers)
	if err != nil {
		return nil, err
	}

	detail := &models.ProductDetail{
		Description:     extractDescription(doc, desc),
		Variants:        extractVariants(doc, desc),
		ImageCandidates: extractImageCandidates(doc, desc),
	}

	f.logger.Debug("fetched product detail",
		"url", productURL,
		"variants", len(detail.Variants),
		"images", len(detail.ImageCandidates))

	return detail, nil
}

func extractDescription(doc *goquery.Document, desc *provider.Descriptor) string {
	if desc.Selectors.Description == "" {
		return ""
	}
	sel := doc.Find(desc.Selectors.Description).First()
	if sel.Length() == 0 {
		return ""
	}

	// Preserve block boundaries as newlines, the way the downstream
	// catalog editor expects description text.
	var lines []string
	sel.Find("p, li, br").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return strings.TrimSpace(sel.Text())
	}
	return strings.Join(lines, "\n")
}

func extractVariants(doc *goquery.Document, desc *provider.Descriptor) []string {
	if desc.Selectors.VariantOption == "" || desc.Selectors.VariantAttr == "" {
		return nil
	}
	var variants []string
	doc.Find(desc.Selectors.VariantOption).Each(func(_ int, s *goquery.Selection) {
		if option, ok := s.Attr(desc.Selectors.VariantAttr); ok && option != "" {
			variants = append(variants, option)
		}
	})
	return variants
}

// extractImageCandidates tries the provider's image selector strategies
// in order; the first one yielding any sources wins. Lazy-loaded images
// carry the real source in data-src, so it is preferred over src.
func extractImageCandidates(doc *goquery.Document, desc *provider.Descriptor) []string {
	for _, selector := range desc.Selectors.Images {
		var candidates []string
		doc.Find(selector).Each(func(_ int, img *goquery.Selection) {
			src := img.AttrOr("data-src", "")
			if src == "" {
				src = img.AttrOr("src", "")
			}
			if src == "" {
				return
			}
			src = desc.UpgradeImageURL(src)
			candidates = append(candidates, desc.ResolveURL(src))
		})
		if len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

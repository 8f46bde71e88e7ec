package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/castillodev/storefront-scraper/internal/backoff"
	"github.com/castillodev/storefront-scraper/internal/models"
	"github.com/castillodev/storefront-scraper/internal/provider"
)

// ListingSession is the slice of a browser session the listing
// extractor drives. browser.Session satisfies it; tests substitute a
// fake.
type ListingSession interface {
	Navigate(url string) error
	ScrollToBottom() error
	ClickIfVisible(selector string, timeout time.Duration) (bool, error)
	WaitVisible(selector string, timeout time.Duration) error
	Content() (string, error)
	Release()
}

// SessionFactory acquires a fresh, exclusively owned browser session.
type SessionFactory func() (ListingSession, error)

// Lister drives a browser session through a category listing page,
// exhausting lazy-loaded content before parsing it into product stubs.
type Lister struct {
	sessions     SessionFactory
	scroll       backoff.Policy
	loadMore     backoff.Policy
	loadMoreWait time.Duration
	listingWait  time.Duration
	logger       *slog.Logger
}

type ListerOptions struct {
	// Scroll bounds the lazy-render scroll phase.
	Scroll backoff.Policy
	// LoadMore bounds the "load more" click loop.
	LoadMore backoff.Policy
	// LoadMoreWait is how long one click attempt waits for the control
	// to become clickable.
	LoadMoreWait time.Duration
	// ListingWait is how long to wait for the listing container before
	// declaring the listing unavailable.
	ListingWait time.Duration
}

func NewLister(sessions SessionFactory, opts ListerOptions, logger *slog.Logger) *Lister {
	return &Lister{
		sessions:     sessions,
		scroll:       opts.Scroll,
		loadMore:     opts.LoadMore,
		loadMoreWait: opts.LoadMoreWait,
		listingWait:  opts.ListingWait,
		logger:       logger.With("component", "lister"),
	}
}

// ListProducts exhausts the listing at categoryURL and returns its
// product stubs. The browser session is released before returning on
// every path.
func (l *Lister) ListProducts(ctx context.Context, desc *provider.Descriptor, categoryURL string) ([]models.ProductStub, error) {
	session, err := l.sessions()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer session.Release()

	if err := session.Navigate(categoryURL); err != nil {
		return nil, fmt.Errorf("failed to open listing %s: %w", categoryURL, err)
	}

	if err := session.WaitVisible(desc.Selectors.ListingContainer, l.listingWait); err != nil {
		return nil, fmt.Errorf("%w: container %q at %s: %v",
			ErrListingUnavailable, desc.Selectors.ListingContainer, categoryURL, err)
	}

	// Scroll phase: push the viewport down a bounded number of times,
	// pausing so lazy-loaded items get a chance to render.
	err = l.scroll.Run(func(int) (bool, error) {
		return true, session.ScrollToBottom()
	})
	if err != nil {
		return nil, fmt.Errorf("scroll phase failed at %s: %w", categoryURL, err)
	}

	// Pagination phase: click "load more" until it disappears or stops
	// being clickable. That absence is the normal exhaustion signal.
	clicks := 0
	err = l.loadMore.Run(func(int) (bool, error) {
		clicked, err := session.ClickIfVisible(desc.Selectors.LoadMore, l.loadMoreWait)
		if err != nil {
			return false, err
		}
		if clicked {
			clicks++
		}
		return clicked, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pagination phase failed at %s: %w", categoryURL, err)
	}

	html, err := session.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read listing document: %w", err)
	}

	stubs, err := parseListing(desc, html)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", categoryURL, err)
	}

	l.logger.Info("listing exhausted",
		"provider", desc.Key,
		"url", categoryURL,
		"load_more_clicks", clicks,
		"products", len(stubs))

	return stubs, nil
}

// parseListing extracts product stubs from the final listing document.
// Items without a usable detail link are skipped rather than failing
// the whole listing.
func parseListing(desc *provider.Descriptor, html string) ([]models.ProductStub, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing document: %w", err)
	}

	container := doc.Find(desc.Selectors.ListingContainer).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: container %q missing from document", ErrListingUnavailable, desc.Selectors.ListingContainer)
	}

	linkSelector := desc.Selectors.ProductLink
	if linkSelector == "" {
		linkSelector = "a"
	}

	var stubs []models.ProductStub
	container.Find(desc.Selectors.ProductItem).Each(func(_ int, item *goquery.Selection) {
		link := item.Find(linkSelector).First()
		href := strings.TrimSpace(link.AttrOr("href", ""))
		if !usableLink(href) {
			return
		}

		stub := models.ProductStub{
			Name:      productName(desc, item, link),
			DetailURL: desc.ResolveURL(href),
		}
		if desc.Selectors.ProductPrice != "" {
			stub.Price = strings.TrimSpace(item.Find(desc.Selectors.ProductPrice).First().Text())
		}
		stubs = append(stubs, stub)
	})

	return stubs, nil
}

func productName(desc *provider.Descriptor, item, link *goquery.Selection) string {
	if desc.Selectors.ProductName != "" {
		if name := strings.TrimSpace(item.Find(desc.Selectors.ProductName).First().Text()); name != "" {
			return name
		}
	}
	if title := strings.TrimSpace(link.AttrOr("title", "")); title != "" {
		return title
	}
	return strings.TrimSpace(link.Text())
}

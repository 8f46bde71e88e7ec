package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/time/rate"

	"github.com/castillodev/storefront-scraper/internal/sanitize"
	"github.com/castillodev/storefront-scraper/internal/scraper"
)

// Store downloads product media under root/provider/category/ with
// presence-based deduplication: if a file of the derived name already
// exists its path is returned without a network request. Content is not
// compared.
type Store struct {
	root    string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewStore creates a store rooted at root. pause spaces out downloads
// for politeness; zero disables pacing.
func NewStore(root string, client *http.Client, pause rate.Limit, logger *slog.Logger) *Store {
	if client == nil {
		client = http.DefaultClient
	}
	limit := rate.Inf
	if pause > 0 {
		limit = pause
	}
	return &Store{
		root:    root,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With("component", "asset_store"),
	}
}

// Root returns the directory assets are stored under.
func (s *Store) Root() string {
	return s.root
}

// Acquire resolves imageURL to a local path. The filename is derived
// deterministically from the sanitized product name and the basename of
// the URL path, so repeated acquisitions of the same image are skipped.
func (s *Store) Acquire(ctx context.Context, imageURL, providerKey, category, productName string, headers map[string]string) (string, error) {
	localPath, err := s.localPath(imageURL, providerKey, category, productName)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(localPath); err == nil {
		s.logger.Debug("asset already present", "path", localPath)
		return localPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}

	data, err := s.download(ctx, imageURL, headers)
	if err != nil {
		return "", err
	}

	// Write whole-file via rename so a concurrent acquisition of the
	// same image never observes a partial file.
	tmp := localPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}
	if err := os.Rename(tmp, localPath); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize asset: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return localPath, nil
	}

	return localPath, nil
}

func (s *Store) localPath(imageURL, providerKey, category, productName string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image url %q: %w", imageURL, err)
	}

	filename := sanitize.Filename(productName) + "_" + sanitize.Filename(path.Base(parsed.Path))
	return filepath.Join(s.root, providerKey, sanitize.Filename(category), filename), nil
}

func (s *Store) download(ctx context.Context, imageURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url %s: %v", scraper.ErrFetchFailed, imageURL, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", scraper.ErrFetchFailed, imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", scraper.ErrFetchFailed, imageURL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", scraper.ErrFetchFailed, imageURL, err)
	}
	return data, nil
}

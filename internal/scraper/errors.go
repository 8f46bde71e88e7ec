package scraper

import (
	"errors"
)

var (
	// ErrFetchFailed is an HTTP error or network failure during a static
	// fetch. Category and detail fetches treat it as fatal for the
	// enclosing step; image fetches downgrade it to a skipped asset.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrListingUnavailable means the expected listing container never
	// appeared within the bounded wait. This signals a markup/selector
	// mismatch and needs operator attention, not an automatic retry.
	ErrListingUnavailable = errors.New("listing unavailable")

	// ErrCategoryNotFound means the requested category name has no match
	// among the freshly discovered categories.
	ErrCategoryNotFound = errors.New("category not found")
)

package models

import (
	"time"
)

// Category is one storefront navigation section. The (Provider, Name)
// pair maps to exactly one row; the id is assigned by the registrar.
type Category struct {
	ID       int64  `json:"id"`
	Provider string `json:"provider"`
	Name     string `json:"name"`
	URL      string `json:"url"`
}

// ProductStub is a listing-page entry prior to detail enrichment. Stubs
// live only for the duration of one listing extraction and are never
// persisted.
type ProductStub struct {
	Name      string `json:"name"`
	DetailURL string `json:"detail_url"`
	Price     string `json:"price,omitempty"`
}

// ProductDetail is the result of one detail-page fetch. Missing
// description or variants are represented as zero values, not errors.
type ProductDetail struct {
	Description     string
	Variants        []string
	ImageCandidates []string
}

// SnapshotPayload is the stable payload contract consumed by the
// downstream catalog publisher. Variants and Images are always present
// in the serialized form, empty rather than null.
type SnapshotPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Variants    []string `json:"variants"`
	Images      []string `json:"images"`
}

// Snapshot is one immutable, timestamped ingestion record. Re-scraping
// the same product appends a new snapshot; prior rows are history.
type Snapshot struct {
	ID         int64           `json:"id"`
	Provider   string          `json:"provider"`
	SKU        string          `json:"sku"`
	CategoryID int64           `json:"category_id"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Payload    SnapshotPayload `json:"payload"`
}

// ProductFailure records one product that was skipped during a category
// scrape.
type ProductFailure struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Err  string `json:"error"`
}

// ScrapeReport summarizes one category scrape.
type ScrapeReport struct {
	Provider   string           `json:"provider"`
	Category   string           `json:"category"`
	CategoryID int64            `json:"category_id"`
	Products   int              `json:"products"`
	Snapshots  int              `json:"snapshots"`
	Failures   []ProductFailure `json:"failures,omitempty"`
}

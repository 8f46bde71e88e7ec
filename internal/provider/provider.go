package provider

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/castillodev/storefront-scraper/internal/sanitize"
)

var ErrUnknownProvider = errors.New("unknown provider")

// imageSizeSuffix matches storefront thumbnail URLs that encode the
// rendered size as a -WIDTH-HEIGHT suffix before the extension.
var imageSizeSuffix = regexp.MustCompile(`-(\d+)-(\d+)(\.\w+)$`)

// Selectors holds the DOM selectors a provider's markup is parsed with.
// Providers are an uncontrolled contract: when a storefront changes its
// markup these silently stop matching and the operator has to update them.
type Selectors struct {
	// Category navigation on the storefront homepage.
	CategoryMenu string `yaml:"category_menu"`
	CategoryLink string `yaml:"category_link"`

	// Listing page structure.
	ListingContainer string `yaml:"listing_container"`
	ProductItem      string `yaml:"product_item"`
	ProductLink      string `yaml:"product_link"`
	ProductName      string `yaml:"product_name"`
	ProductPrice     string `yaml:"product_price"`
	LoadMore         string `yaml:"load_more"`

	// Detail page structure.
	Description   string   `yaml:"description"`
	VariantOption string   `yaml:"variant_option"`
	VariantAttr   string   `yaml:"variant_attr"`
	// Image strategies are tried in order; the first selector yielding
	// any result wins.
	Images []string `yaml:"images"`
}

// Descriptor is the static configuration for one storefront source.
type Descriptor struct {
	Key     string            `yaml:"key"`
	BaseURL string            `yaml:"base_url"`
	Headers map[string]string `yaml:"headers"`

	Selectors Selectors `yaml:"selectors"`

	// ImageSizeUpgrade, when set (e.g. "1024-1024"), rewrites recognized
	// thumbnail URLs to that resolution. Unrecognized URL shapes pass
	// through unchanged.
	ImageSizeUpgrade string `yaml:"image_size_upgrade"`
}

// ResolveURL resolves href against the provider's base URL. Absolute
// URLs are returned as-is; malformed input falls back to the raw href.
func (d *Descriptor) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// UpgradeImageURL rewrites a thumbnail URL's size suffix to the
// provider's configured resolution.
func (d *Descriptor) UpgradeImageURL(src string) string {
	if d.ImageSizeUpgrade == "" {
		return src
	}
	if strings.Contains(src, "-"+d.ImageSizeUpgrade) {
		return src
	}
	return imageSizeSuffix.ReplaceAllString(src, "-"+d.ImageSizeUpgrade+"${3}")
}

// Registry is a read-only lookup table of provider descriptors,
// constructed once and injected where needed.
type Registry struct {
	descriptors map[string]*Descriptor
}

// NewRegistry builds a registry from the given descriptors. Keys are
// matched case- and whitespace-insensitively.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	m := make(map[string]*Descriptor, len(descriptors))
	for i := range descriptors {
		d := descriptors[i]
		if d.Key == "" {
			return nil, fmt.Errorf("provider descriptor %d has no key", i)
		}
		if d.BaseURL == "" {
			return nil, fmt.Errorf("provider %q has no base URL", d.Key)
		}
		folded := sanitize.FoldName(d.Key)
		if _, exists := m[folded]; exists {
			return nil, fmt.Errorf("duplicate provider key %q", d.Key)
		}
		m[folded] = &d
	}
	return &Registry{descriptors: m}, nil
}

// Get returns the descriptor for the given provider key.
func (r *Registry) Get(key string) (*Descriptor, error) {
	d, ok := r.descriptors[sanitize.FoldName(key)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, key)
	}
	return d, nil
}

// Keys returns the registered provider keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		keys = append(keys, d.Key)
	}
	sort.Strings(keys)
	return keys
}

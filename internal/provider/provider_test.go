package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRejectsInvalidDescriptors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewRegistry(Descriptor{BaseURL: "https://example.com"})
		assert.Error(t, err)
	})

	t.Run("missing base URL", func(t *testing.T) {
		_, err := NewRegistry(Descriptor{Key: "demo"})
		assert.Error(t, err)
	})

	t.Run("duplicate key after folding", func(t *testing.T) {
		_, err := NewRegistry(
			Descriptor{Key: "demo", BaseURL: "https://example.com"},
			Descriptor{Key: "  DEMO ", BaseURL: "https://other.example.com"},
		)
		assert.Error(t, err)
	})
}

func TestRegistryGet(t *testing.T) {
	registry, err := NewRegistry(
		Descriptor{Key: "demo", BaseURL: "https://example.com"},
	)
	require.NoError(t, err)

	t.Run("exact key", func(t *testing.T) {
		d, err := registry.Get("demo")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com", d.BaseURL)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		d, err := registry.Get("  Demo ")
		require.NoError(t, err)
		assert.Equal(t, "demo", d.Key)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := registry.Get("nope")
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})
}

func TestRegistryKeysSorted(t *testing.T) {
	registry, err := NewRegistry(
		Descriptor{Key: "zeta", BaseURL: "https://z.example.com"},
		Descriptor{Key: "alpha", BaseURL: "https://a.example.com"},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, registry.Keys())
}

func TestResolveURL(t *testing.T) {
	d := Descriptor{Key: "demo", BaseURL: "https://example.com/shop/"}

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"absolute passes through", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"root relative", "/products/ring", "https://example.com/products/ring"},
		{"relative to base path", "ring", "https://example.com/shop/ring"},
		{"protocol relative", "//cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.ResolveURL(tt.href))
		})
	}
}

func TestUpgradeImageURL(t *testing.T) {
	d := Descriptor{
		Key:              "demo",
		BaseURL:          "https://example.com",
		ImageSizeUpgrade: "1024-1024",
	}

	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{
			name:     "thumbnail suffix rewritten",
			src:      "https://cdn.example.com/ring-gold-200-200.jpg",
			expected: "https://cdn.example.com/ring-gold-1024-1024.jpg",
		},
		{
			name:     "already upgraded untouched",
			src:      "https://cdn.example.com/ring-gold-1024-1024.jpg",
			expected: "https://cdn.example.com/ring-gold-1024-1024.jpg",
		},
		{
			name:     "unrecognized shape passes through",
			src:      "https://cdn.example.com/ring-gold.jpg",
			expected: "https://cdn.example.com/ring-gold.jpg",
		},
		{
			name:     "empty passes through",
			src:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.UpgradeImageURL(tt.src))
		})
	}
}

func TestUpgradeImageURLWithoutConfiguredSize(t *testing.T) {
	d := Descriptor{Key: "demo", BaseURL: "https://example.com"}
	src := "https://cdn.example.com/ring-gold-200-200.jpg"
	assert.Equal(t, src, d.UpgradeImageURL(src))
}

func TestDefaultsAreValid(t *testing.T) {
	registry, err := NewRegistry(Defaults()...)
	require.NoError(t, err)

	for _, key := range registry.Keys() {
		d, err := registry.Get(key)
		require.NoError(t, err)
		assert.NotEmpty(t, d.BaseURL, "provider %s", key)
		assert.NotEmpty(t, d.Selectors.CategoryMenu, "provider %s", key)
		assert.NotEmpty(t, d.Selectors.ProductItem, "provider %s", key)
		assert.NotEmpty(t, d.Selectors.Images, "provider %s", key)
	}
}

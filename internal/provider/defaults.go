package provider

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Defaults returns the descriptors for the storefronts shipped with the
// scraper. Both run on the same shop platform but differ in navigation
// markup and image handling.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Key:     "elpatron",
			BaseURL: "https://elpatronimport.mitiendanube.com/",
			Headers: map[string]string{"User-Agent": defaultUserAgent},
			Selectors: Selectors{
				CategoryMenu:     "ul.megamenu-list",
				CategoryLink:     "a.nav-list-link.desktop-nav-link.position-relative",
				ListingContainer: "div.js-product-table",
				ProductItem:      ".product",
				ProductLink:      "a",
				ProductName:      ".product-name",
				ProductPrice:     ".price",
				LoadMore:         ".js-load-more-btn",
				Description:      ".description.product-description-desktop.visible-when-content-ready",
				Images: []string{
					".js-swiper-product-thumbnails img",
					"img.js-product-slide-img",
				},
			},
		},
		{
			Key:     "touche",
			BaseURL: "https://toucheimport.mitiendanube.com/",
			Headers: map[string]string{"User-Agent": defaultUserAgent},
			Selectors: Selectors{
				CategoryMenu:     "ul.desktop-list-subitems",
				CategoryLink:     "a[href]",
				ListingContainer: "div.js-product-table",
				ProductItem:      "div.js-product-item-image-container-private",
				ProductLink:      "a",
				LoadMore:         ".js-load-more-btn",
				Description:      ".description.product-description",
				VariantOption:    "a.js-insta-variant.btn-variant-color",
				VariantAttr:      "data-option",
				Images: []string{
					".js-swiper-product-thumbnails img",
					"img.js-product-slide-img",
				},
			},
			ImageSizeUpgrade: "1024-1024",
		},
	}
}

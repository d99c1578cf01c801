// Package profile defines the per-platform field selector sets used by the
// frontier and the product extractor. A Profile maps each logical product
// field to one or more CSS selectors, tried in order until one matches.
package profile

import (
	"errors"
	"sort"
)

// DefaultKey is the profile used when a request does not name a platform.
const DefaultKey = "woocommerce"

// ErrUnknownPlatform is returned by Lookup for keys with no built-in profile.
var ErrUnknownPlatform = errors.New("unknown platform profile")

// Profile holds the selector lists for one storefront platform. Profiles are
// immutable; callers must not modify the returned slices.
type Profile struct {
	Key         string
	ProductLink []string
	Title       []string
	Price       []string
	SalePrice   []string
	Description []string
	Images      []string
	SKU         []string
	Categories  []string
	Tags        []string
	Stock       []string
}

var builtins = map[string]*Profile{
	"woocommerce": {
		Key:         "woocommerce",
		ProductLink: []string{"a.woocommerce-LoopProduct-link", "li.product a", "a[href*='/product/']"},
		Title:       []string{"h1.product_title", ".product_title", "h1.entry-title"},
		Price:       []string{"p.price", ".summary .price", ".price"},
		SalePrice:   []string{"p.price ins .woocommerce-Price-amount", "p.price ins", ".price ins"},
		Description: []string{".woocommerce-Tabs-panel--description", "#tab-description", ".woocommerce-product-details__short-description"},
		Images:      []string{".woocommerce-product-gallery__image a", ".woocommerce-product-gallery__image img", ".woocommerce-product-gallery img"},
		SKU:         []string{".sku_wrapper .sku", ".sku"},
		Categories:  []string{".posted_in a"},
		Tags:        []string{".tagged_as a"},
		Stock:       []string{".stock"},
	},
	"shopify": {
		Key:         "shopify",
		ProductLink: []string{"a[href*='/products/']"},
		Title:       []string{"h1.product__title", "h1.product-single__title", ".product__title h1", "h1"},
		Price:       []string{".price__regular .price-item--regular", ".product__price", ".price .price-item", ".price"},
		SalePrice:   []string{".price__sale .price-item--sale", ".price--on-sale .price-item--sale"},
		Description: []string{".product__description", ".product-single__description", "[class*='product-description']"},
		Images:      []string{".product__media img", ".product-single__photo img", "img[src*='/products/']"},
		SKU:         []string{".product__sku", ".variant-sku", "[class*='sku']"},
		Categories:  []string{".product__tags a", "nav.breadcrumb a"},
		Tags:        []string{".product__tags a"},
		Stock:       []string{".product__inventory", "[class*='inventory']"},
	},
	"generic": {
		Key:         "generic",
		ProductLink: []string{"a[href*='product']", ".product a", ".product-item a"},
		Title:       []string{"h1"},
		Price:       []string{".price", "[class*='price']"},
		SalePrice:   []string{".sale-price", ".price ins", "[class*='sale']"},
		Description: []string{"[class*='description']", "#description"},
		Images:      []string{".product img", "main img", "article img"},
		SKU:         []string{"[class*='sku']"},
		Categories:  []string{".breadcrumb a", "[class*='category'] a"},
		Tags:        []string{"[class*='tag'] a"},
		Stock:       []string{".stock", "[class*='stock']", "[class*='availability']"},
	},
}

// Lookup resolves a platform key to its Profile. An empty key selects
// DefaultKey; an unrecognized key returns ErrUnknownPlatform.
func Lookup(key string) (*Profile, error) {
	if key == "" {
		key = DefaultKey
	}
	p, ok := builtins[key]
	if !ok {
		return nil, ErrUnknownPlatform
	}
	return p, nil
}

// Keys lists the built-in profile keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(builtins))
	for k := range builtins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package scraper defines the core types and algorithms of the product
// scraping pipeline: frontier traversal, field extraction, and CSV output.
package scraper

import (
	"net/http"
	"time"
)

// Response is the result of fetching a single URL.
type Response struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// ProductRecord holds the fields extracted from one product page. Optional
// fields degrade to the empty string when the page lacks a matching element.
// Name is the exception: an empty title means the page is not a product and
// no record is produced at all.
type ProductRecord struct {
	SKU              string `json:"sku"`
	Name             string `json:"name"`
	RegularPrice     string `json:"regular_price"`
	SalePrice        string `json:"sale_price"`
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Categories       string `json:"categories"`
	Tags             string `json:"tags"`
	// Images is a comma-joined list of archive paths (images/<filename>),
	// listing only images that were confirmed stored in the archive.
	Images    string `json:"images"`
	InStock   bool   `json:"in_stock"`
	SourceURL string `json:"source_url"`
}

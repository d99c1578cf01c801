package scraper

import (
	"errors"
	"fmt"
)

// ErrNoProductsFound is returned when a crawl finishes without discovering a
// single product URL and the seed page itself is not a product. It is fatal
// to the whole scrape.
var ErrNoProductsFound = errors.New("no products found")

// FetchExhaustedError reports that a URL stayed unreachable after every
// retry attempt.
type FetchExhaustedError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchExhaustedError) Unwrap() error {
	return e.Err
}

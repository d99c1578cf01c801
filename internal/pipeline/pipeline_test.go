package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
	"github.com/Hamzashehzad1/nabih-scraper/internal/progress"
	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

// siteFetcher serves a whole fake storefront from canned bodies.
type siteFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *siteFetcher) Fetch(_ context.Context, url string) (scraper.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	body, ok := f.pages[url]
	if !ok {
		return scraper.Response{}, fmt.Errorf("no page at %s", url)
	}
	return scraper.Response{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

type staticIDs struct{ id string }

func (s staticIDs) NewID() (string, error) { return s.id, nil }

func storefront() map[string]string {
	return map[string]string{
		"https://shop.example/": `<html><body>
			<li class="product"><a href="/product/desk">Desk</a></li>
			<li class="product"><a href="/product/lamp">Lamp</a></li>
		</body></html>`,
		"https://shop.example/product/desk": `<html><body>
			<h1 class="product_title">Walnut Desk</h1>
			<p class="price"><span class="woocommerce-Price-amount">$1,299.00</span></p>
			<div class="woocommerce-product-gallery__image"><a href="/img/desk.jpg"></a></div>
		</body></html>`,
		"https://shop.example/product/lamp": `<html><body>
			<h1 class="product_title">Brass Lamp</h1>
			<p class="price"><span class="woocommerce-Price-amount">$89.00</span></p>
			<div class="woocommerce-product-gallery__image"><a href="/img/lamp.jpg"></a></div>
		</body></html>`,
		"https://shop.example/img/desk.jpg": "desk-bytes",
		"https://shop.example/img/lamp.jpg": "lamp-bytes",
	}
}

func runScrape(t *testing.T, fetcher scraper.Fetcher, seed string) []progress.Event {
	t.Helper()
	prof, err := profile.Lookup("woocommerce")
	require.NoError(t, err)

	p := New(fetcher, nil, staticIDs{id: "job-1"}, Config{PageCap: 10, ImageConcurrency: 2}, nil)
	stream := progress.NewStream(0)
	go func() {
		p.Run(context.Background(), seed, prof, stream)
		stream.Close()
	}()

	var events []progress.Event
	for evt := range stream.Events() {
		events = append(events, evt)
	}
	return events
}

func TestPipeline_EndToEnd(t *testing.T) {
	t.Parallel()

	fetcher := &siteFetcher{pages: storefront()}
	events := runScrape(t, fetcher, "https://shop.example/")
	require.NotEmpty(t, events)

	for _, evt := range events {
		require.NoError(t, evt.Validate())
		require.Equal(t, "job-1", evt.JobID)
		require.False(t, evt.TS.IsZero())
	}

	var products []*scraper.ProductRecord
	terminals := 0
	for i, evt := range events {
		if evt.Type == progress.TypeProduct {
			products = append(products, evt.Product)
		}
		if evt.Terminal() {
			terminals++
			require.Equal(t, len(events)-1, i, "terminal event must come last")
		}
	}
	require.Equal(t, 1, terminals)

	require.Len(t, products, 2)
	require.Equal(t, "Walnut Desk", products[0].Name)
	require.Equal(t, "Brass Lamp", products[1].Name)
	require.Equal(t, "images/desk.jpg", products[0].Images)
	require.Equal(t, "images/lamp.jpg", products[1].Images)

	final := events[len(events)-1]
	require.Equal(t, progress.TypeComplete, final.Type)

	rows, err := csv.NewReader(strings.NewReader(final.CSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per product")
	require.Equal(t, "Walnut Desk", rows[1][2])
	require.Equal(t, "Brass Lamp", rows[2][2])

	zipRaw, err := base64.StdEncoding.DecodeString(final.Archive)
	require.NoError(t, err)
	require.NotEmpty(t, zipRaw)

	first := events[0]
	require.Equal(t, progress.TypeProgress, first.Type)
	require.Contains(t, first.Message, "Starting crawl of https://shop.example/")
}

func TestPipeline_SkipsUnextractablePages(t *testing.T) {
	t.Parallel()

	pages := storefront()
	delete(pages, "https://shop.example/product/lamp")
	fetcher := &siteFetcher{pages: pages}

	events := runScrape(t, fetcher, "https://shop.example/")

	var products, warnings int
	for _, evt := range events {
		if evt.Type == progress.TypeProduct {
			products++
		}
		if evt.Type == progress.TypeProgress && strings.Contains(evt.Message, "could not extract a product") {
			warnings++
		}
	}
	require.Equal(t, 1, products)
	require.Equal(t, 1, warnings)
	require.Equal(t, progress.TypeComplete, events[len(events)-1].Type)
}

func TestPipeline_NoProductsEmitsErrorTerminal(t *testing.T) {
	t.Parallel()

	fetcher := &siteFetcher{pages: map[string]string{
		"https://shop.example/": `<html><body><p>nothing for sale</p></body></html>`,
	}}

	events := runScrape(t, fetcher, "https://shop.example/")
	require.NotEmpty(t, events)

	final := events[len(events)-1]
	require.Equal(t, progress.TypeError, final.Type)
	require.Contains(t, final.Message, "No products found on this site")

	for _, evt := range events[:len(events)-1] {
		require.False(t, evt.Terminal(), "only the last event may be terminal")
	}
}

func TestPipeline_SeedThatIsAProductPage(t *testing.T) {
	t.Parallel()

	fetcher := &siteFetcher{pages: map[string]string{
		"https://shop.example/product/desk": `<html><body>
			<h1 class="product_title">Walnut Desk</h1>
			<p class="price">$1,299.00</p>
		</body></html>`,
	}}

	events := runScrape(t, fetcher, "https://shop.example/product/desk")

	var sawFallback bool
	var products int
	for _, evt := range events {
		if evt.Type == progress.TypeProgress && strings.Contains(evt.Message, "Base URL detected as a product page") {
			sawFallback = true
		}
		if evt.Type == progress.TypeProduct {
			products++
		}
	}
	require.True(t, sawFallback)
	require.Equal(t, 1, products)
	require.Equal(t, progress.TypeComplete, events[len(events)-1].Type)
}

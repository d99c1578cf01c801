package scraper

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockFetcher is a testify mock for the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (Response, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(Response), args.Error(1)
}

// fakeFetcher serves canned HTML bodies keyed by URL and records every call.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, fail: make(map[string]bool)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.fail[url] {
		return Response{}, fmt.Errorf("boom: %s", url)
	}
	body, ok := f.pages[url]
	if !ok {
		return Response{}, fmt.Errorf("no page at %s", url)
	}
	return Response{URL: url, StatusCode: 200, Body: []byte(body)}, nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == url {
			n++
		}
	}
	return n
}

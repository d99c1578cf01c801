package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hamzashehzad1/nabih-scraper/internal/profile"
	"github.com/Hamzashehzad1/nabih-scraper/internal/progress"
)

// stubRunner replays canned events and records what it was invoked with.
type stubRunner struct {
	events     []progress.Event
	gotSeed    string
	gotProfile string
}

func (r *stubRunner) Run(_ context.Context, seed string, prof *profile.Profile, emitter progress.Emitter) {
	r.gotSeed = seed
	r.gotProfile = prof.Key
	for _, evt := range r.events {
		emitter.Emit(evt)
	}
}

func doRequest(t *testing.T, runner Runner, target string) *httptest.ResponseRecorder {
	t.Helper()
	srv := NewServer(runner, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	rec := doRequest(t, &stubRunner{}, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = doRequest(t, &stubRunner{}, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_ScrapeRejectsBadRequests(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		target  string
		wantMsg string
	}{
		{"missing url", "/scrape", "url query parameter is required"},
		{"relative url", "/scrape?url=/shop", "url must be an absolute http(s) URL"},
		{"ftp url", "/scrape?url=ftp://shop.example/", "url must be an absolute http(s) URL"},
		{"unknown platform", "/scrape?url=https://shop.example/&platform=magento", `unknown platform "magento"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, &stubRunner{}, tc.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tc.wantMsg, decodeError(t, rec))
		})
	}
}

func TestServer_ScrapeStreamsEvents(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{events: []progress.Event{
		{Type: progress.TypeProgress, Message: "Found 1 product pages"},
		{Type: progress.TypeComplete, CSV: "Type,SKU\n"},
	}}

	rec := doRequest(t, runner, "/scrape?url=https://shop.example/&platform=woocommerce")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.True(t, rec.Flushed)

	require.Equal(t, "https://shop.example/", runner.gotSeed)
	require.Equal(t, "woocommerce", runner.gotProfile)

	frames := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 2)

	var got []progress.Event
	for _, frame := range frames {
		require.True(t, strings.HasPrefix(frame, "data: "), "frame %q must be a data frame", frame)
		var evt progress.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(frame, "data: ")), &evt))
		got = append(got, evt)
	}
	require.Equal(t, progress.TypeProgress, got[0].Type)
	require.Equal(t, "Found 1 product pages", got[0].Message)
	require.Equal(t, progress.TypeComplete, got[1].Type)
	require.Equal(t, "Type,SKU\n", got[1].CSV)
}

func TestServer_ScrapeDefaultsPlatform(t *testing.T) {
	t.Parallel()

	runner := &stubRunner{events: []progress.Event{{Type: progress.TypeComplete}}}
	rec := doRequest(t, runner, "/scrape?url=https://shop.example/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, profile.DefaultKey, runner.gotProfile)
}

package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Hamzashehzad1/nabih-scraper/internal/scraper"
)

func TestEvent_Terminal(t *testing.T) {
	t.Parallel()

	require.False(t, Event{Type: TypeProgress}.Terminal())
	require.False(t, Event{Type: TypeProduct}.Terminal())
	require.True(t, Event{Type: TypeComplete}.Terminal())
	require.True(t, Event{Type: TypeError}.Terminal())
}

func TestEvent_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		evt     Event
		wantErr bool
	}{
		{"progress with message", Event{Type: TypeProgress, Message: "Crawling"}, false},
		{"progress without message", Event{Type: TypeProgress}, true},
		{"product with payload", Event{Type: TypeProduct, Product: &scraper.ProductRecord{Name: "Desk"}}, false},
		{"product without payload", Event{Type: TypeProduct}, true},
		{"complete", Event{Type: TypeComplete, CSV: "Type,SKU\n"}, false},
		{"error with message", Event{Type: TypeError, Message: "no products"}, false},
		{"error without message", Event{Type: TypeError}, true},
		{"unknown type", Event{Type: "heartbeat"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.evt.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEvent_JSONOmitsEmptyPayloadFields(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(Event{Type: TypeProgress, Message: "Found 3 product pages"})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, "progress", decoded["type"])
	require.Equal(t, "Found 3 product pages", decoded["message"])
	require.NotContains(t, decoded, "product")
	require.NotContains(t, decoded, "csv")
	require.NotContains(t, decoded, "archive")
	require.NotContains(t, decoded, "ts", "a zero timestamp must not marshal")
}

package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	t.Run("empty key defaults to woocommerce", func(t *testing.T) {
		p, err := Lookup("")
		require.NoError(t, err)
		require.Equal(t, DefaultKey, p.Key)
	})

	t.Run("known keys", func(t *testing.T) {
		for _, key := range []string{"woocommerce", "shopify", "generic"} {
			p, err := Lookup(key)
			require.NoError(t, err)
			require.Equal(t, key, p.Key)
			require.NotEmpty(t, p.ProductLink)
			require.NotEmpty(t, p.Title)
		}
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Lookup("magento")
		require.ErrorIs(t, err, ErrUnknownPlatform)
	})
}

func TestKeys(t *testing.T) {
	t.Parallel()
	require.Equal(t, []string{"generic", "shopify", "woocommerce"}, Keys())
}

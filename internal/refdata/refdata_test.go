package refdata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	store := Default()

	sec, ok := store.Security("AAPL")
	require.True(t, ok)
	assert.Equal(t, "NASDAQ", sec.Market)
	assert.Equal(t, "USD", sec.Currency)
	assert.InDelta(t, 178.50, sec.Price, 0.001)

	_, ok = store.Security("ZZZZ")
	assert.False(t, ok)

	assert.True(t, store.Market("NASDAQ").Open)
	six := store.Market("SIX")
	assert.False(t, six.Open)
	assert.False(t, six.NextOpen.IsZero())

	// Unknown markets never block an order.
	assert.True(t, store.Market("UNKNOWN").Open)

	secs := store.Securities()
	assert.Len(t, secs, 6)
	assert.Equal(t, "AAPL", secs[0].Symbol)
}

func TestLoadFromFile(t *testing.T) {
	content := `securities:
  - symbol: AAPL
    market: NASDAQ
    currency: USD
    name: Apple Inc.
    price: 178.5
  - symbol: NESN
    market: SIX
    currency: CHF
    name: Nestlé S.A.
    price: 87.45
markets:
  NASDAQ:
    open: true
  SIX:
    open: false
    next_open: 2026-08-31T07:00:00Z
`
	path := filepath.Join(t.TempDir(), "refdata.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := Load(path)
	require.NoError(t, err)

	sec, ok := store.Security("NESN")
	require.True(t, ok)
	assert.Equal(t, "SIX", sec.Market)

	six := store.Market("SIX")
	assert.False(t, six.Open)
	assert.Equal(t, time.Date(2026, 8, 31, 7, 0, 0, 0, time.UTC), six.NextOpen)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	store, err := Load("")
	require.NoError(t, err)
	_, ok := store.Security("MSFT")
	assert.True(t, ok)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("/nonexistent/refdata.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markets: {}\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

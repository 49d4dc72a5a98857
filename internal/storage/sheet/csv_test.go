package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColIndex(t *testing.T) {
	assert.Equal(t, 0, colIndex("A"))
	assert.Equal(t, 1, colIndex("B"))
	assert.Equal(t, 25, colIndex("Z"))
	assert.Equal(t, 26, colIndex("AA"))
	assert.Equal(t, 0, colIndex("a"))
}

func TestCSVStoreMissingFileStartsEmpty(t *testing.T) {
	store, err := OpenCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, store.MaxRow())
	assert.Empty(t, store.Cell("A", 1))
}

func TestCSVStoreCellRoundTrip(t *testing.T) {
	store, err := OpenCSV(filepath.Join(t.TempDir(), "signals.csv"))
	require.NoError(t, err)

	store.SetCell("B", 6, "в работе")
	store.SetCell("C", 6, "BTCUSDT")
	store.SetCell("V", 10, "1234.5")

	assert.Equal(t, "в работе", store.Cell("B", 6))
	assert.Equal(t, "BTCUSDT", store.Cell("C", 6))
	assert.Equal(t, "1234.5", store.Cell("V", 10))
	assert.Equal(t, 10, store.MaxRow())

	// untouched cells are empty, never an error
	assert.Empty(t, store.Cell("A", 6))
	assert.Empty(t, store.Cell("Z", 99))
}

func TestCSVStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.csv")
	store, err := OpenCSV(path)
	require.NoError(t, err)

	store.SetCell("B", 6, "active")
	store.SetCell("F", 6, "50000")
	require.NoError(t, store.Save())

	reloaded, err := OpenCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "active", reloaded.Cell("B", 6))
	assert.Equal(t, "50000", reloaded.Cell("F", 6))
	assert.Equal(t, 6, reloaded.MaxRow())
}

func TestCSVStoreSaveIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.csv")
	store, err := OpenCSV(path)
	require.NoError(t, err)

	store.SetCell("A", 1, "x")
	require.NoError(t, store.Save())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Save())
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

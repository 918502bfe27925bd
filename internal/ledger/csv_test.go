package ledger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

func newTestStore(t *testing.T) *CSVStore {
	t.Helper()
	store, err := NewCSVStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return store
}

func TestCSVStoreLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	book, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, book)
}

func TestCSVStoreSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	book := Book{
		{Ticker: "AAPL", Qty: 10, EntryPrice: 182.5, EntryDate: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)},
		{Ticker: "MSFT", Qty: 3, EntryPrice: 410.01, EntryDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, store.Save(ctx, book))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, book, loaded)
}

func TestCSVStoreSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Book{
		{Ticker: "AAPL", Qty: 10, EntryPrice: 180, EntryDate: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)},
	}))
	require.NoError(t, store.Save(ctx, Book{}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCSVStoreAppendClosed(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCSVStore(dir, logger.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	trade := contracts.ClosedTrade{
		Ticker:     "AAPL",
		Qty:        10,
		EntryDate:  time.Date(2025, 5, 28, 0, 0, 0, 0, time.UTC),
		EntryPrice: 180,
		ExitDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		ExitPrice:  171,
		PnL:        -0.05,
		Reasons:    []string{"stop -8%", "time>3d"},
	}
	require.NoError(t, store.AppendClosed(ctx, []contracts.ClosedTrade{trade}))
	require.NoError(t, store.AppendClosed(ctx, []contracts.ClosedTrade{trade}))

	data, err := os.ReadFile(filepath.Join(dir, "trades.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header plus two appended rows")
	assert.Equal(t, "ticker,qty,entry_date,entry_price,exit_date,exit_price,pnl,reasons", lines[0])
	assert.Contains(t, lines[1], "stop -8%; time>3d")
}

func TestCSVStoreAppendClosedNoTrades(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCSVStore(dir, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, store.AppendClosed(context.Background(), nil))

	_, statErr := os.Stat(filepath.Join(dir, "trades.csv"))
	assert.True(t, os.IsNotExist(statErr), "no trades means no file")
}

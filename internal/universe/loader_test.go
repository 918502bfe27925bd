package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/papertrade/pkg/logger"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tickers.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCleansAndSorts(t *testing.T) {
	path := writeFile(t, "ticker\n aapl \nMSFT\nmsft\n\ntsla\n")

	got, err := NewLoader(path, logger.Nop()).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, got)
}

func TestLoadHeaderless(t *testing.T) {
	path := writeFile(t, "nvda\namd\n")

	got, err := NewLoader(path, logger.Nop()).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"AMD", "NVDA"}, got)
}

func TestLoadExtraColumns(t *testing.T) {
	path := writeFile(t, "name,ticker,sector\nApple,AAPL,tech\nMicrosoft,MSFT,tech\n")

	got, err := NewLoader(path, logger.Nop()).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}

func TestLoadEmptyUniverseIsError(t *testing.T) {
	path := writeFile(t, "ticker\n\n")

	_, err := NewLoader(path, logger.Nop()).Load()
	assert.Error(t, err)
}

func TestLoadMissingFileIsError(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.csv"), logger.Nop()).Load()
	assert.Error(t, err)
}

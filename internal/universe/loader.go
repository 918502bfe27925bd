package universe

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Loader reads the ticker universe from a CSV file.
// Expected format: a header row containing a "ticker" column (other
// columns are ignored), one symbol per row.
type Loader struct {
	path   string
	logger *logger.Logger
}

// NewLoader creates a universe loader for the given file.
func NewLoader(path string, log *logger.Logger) *Loader {
	return &Loader{path: path, logger: log}
}

// Load returns the cleaned universe: trimmed, uppercased, deduplicated
// and sorted. An empty universe is a configuration error and fatal.
func (l *Loader) Load() ([]string, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open universe file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read universe file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("universe file %s is empty", l.path)
	}

	col := tickerColumn(records[0])

	seen := make(map[string]bool)
	tickers := make([]string, 0, len(records))
	for i, rec := range records {
		if i == 0 && col >= 0 {
			continue // header row
		}
		idx := col
		if idx < 0 {
			idx = 0
		}
		if idx >= len(rec) {
			continue
		}
		t := contracts.NormalizeTicker(rec[idx])
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("universe file %s contains no tickers", l.path)
	}

	sort.Strings(tickers)

	l.logger.WithFields(map[string]interface{}{
		"path":    l.path,
		"tickers": len(tickers),
	}).Info("Universe loaded")

	return tickers, nil
}

// tickerColumn finds the "ticker" header column, -1 when headerless.
func tickerColumn(header []string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), "ticker") {
			return i
		}
	}
	return -1
}

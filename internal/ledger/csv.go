package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

const (
	positionsFile = "positions.csv"
	tradesFile    = "trades.csv"
)

var positionsHeader = []string{"ticker", "qty", "entry_price", "entry_date"}

var tradesHeader = []string{
	"ticker", "qty", "entry_date", "entry_price",
	"exit_date", "exit_price", "pnl", "reasons",
}

// CSVStore keeps the position book in <dir>/positions.csv and appends
// closed trades to <dir>/trades.csv.
type CSVStore struct {
	dir    string
	logger *logger.Logger
}

// NewCSVStore creates a CSV-backed store rooted at dir, creating the
// directory if needed.
func NewCSVStore(dir string, log *logger.Logger) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create ledger directory: %w", err)
	}
	return &CSVStore{dir: dir, logger: log}, nil
}

// Load reads the position book. A missing positions file is an empty
// book, not an error.
func (s *CSVStore) Load(_ context.Context) (Book, error) {
	path := filepath.Join(s.dir, positionsFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open positions file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read positions file: %w", err)
	}
	if len(records) <= 1 {
		return Book{}, nil
	}

	book := make(Book, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 4 {
			return nil, fmt.Errorf("positions row %d: expected 4 columns, got %d", i+2, len(rec))
		}
		qty, err := strconv.Atoi(rec[1])
		if err != nil {
			return nil, fmt.Errorf("positions row %d: bad qty %q: %w", i+2, rec[1], err)
		}
		price, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("positions row %d: bad entry_price %q: %w", i+2, rec[2], err)
		}
		entryDate, err := time.Parse(contracts.DateLayout, rec[3])
		if err != nil {
			return nil, fmt.Errorf("positions row %d: bad entry_date %q: %w", i+2, rec[3], err)
		}
		book = append(book, contracts.Position{
			Ticker:     contracts.NormalizeTicker(rec[0]),
			Qty:        qty,
			EntryPrice: price,
			EntryDate:  entryDate,
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"path":      path,
		"positions": len(book),
	}).Debug("Loaded position book")
	return book, nil
}

// Save rewrites the positions file with the full book. The write goes
// through a temp file and rename so a crash never leaves a half-written
// ledger behind.
func (s *CSVStore) Save(_ context.Context, book Book) error {
	path := filepath.Join(s.dir, positionsFile)
	tmp, err := os.CreateTemp(s.dir, positionsFile+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp positions file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(positionsHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write positions header: %w", err)
	}
	for _, pos := range book {
		rec := []string{
			pos.Ticker,
			strconv.Itoa(pos.Qty),
			strconv.FormatFloat(pos.EntryPrice, 'f', -1, 64),
			pos.EntryDate.Format(contracts.DateLayout),
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write position row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush positions file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp positions file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace positions file: %w", err)
	}
	return nil
}

// AppendClosed appends trades to the trade log, writing the header when
// the file is new.
func (s *CSVStore) AppendClosed(_ context.Context, trades []contracts.ClosedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	path := filepath.Join(s.dir, tradesFile)
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open trades file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(tradesHeader); err != nil {
			return fmt.Errorf("failed to write trades header: %w", err)
		}
	}
	for _, tr := range trades {
		rec := []string{
			tr.Ticker,
			strconv.Itoa(tr.Qty),
			tr.EntryDate.Format(contracts.DateLayout),
			strconv.FormatFloat(tr.EntryPrice, 'f', -1, 64),
			tr.ExitDate.Format(contracts.DateLayout),
			strconv.FormatFloat(tr.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(tr.PnL, 'f', 4, 64),
			strings.Join(tr.Reasons, "; "),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write trade row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush trades file: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":   path,
		"trades": len(trades),
	}).Info("Appended closed trades")
	return nil
}

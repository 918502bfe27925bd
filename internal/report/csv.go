package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kmorrow/papertrade/internal/contracts"
)

// Header is the column order of the persisted signal table.
var Header = []string{
	"date", "ticker", "action", "qty", "entry_price",
	"stop", "take_profit", "confidence", "reasons", "features_json",
}

// WriteCSV writes the signal table, SELL rows already leading in the
// slice order the pipeline produced.
func WriteCSV(path string, rows []contracts.SignalRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create signals file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write signals header: %w", err)
	}
	for _, row := range rows {
		rec := []string{
			row.Date.Format(contracts.DateLayout),
			row.Ticker,
			string(row.Action),
			strconv.Itoa(row.Qty),
			strconv.FormatFloat(row.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(row.Stop, 'f', -1, 64),
			strconv.FormatFloat(row.TakeProfit, 'f', -1, 64),
			strconv.FormatFloat(row.Confidence, 'f', 2, 64),
			row.Reasons,
			row.Features.JSON(),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write signal row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV loads a previously written signal table.
func ReadCSV(path string) ([]contracts.SignalRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open signals file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read signals file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("signals file %s is empty", path)
	}

	rows := make([]contracts.SignalRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < len(Header) {
			return nil, fmt.Errorf("signals row %d: expected %d columns, got %d", i+2, len(Header), len(rec))
		}

		date, err := time.Parse(contracts.DateLayout, rec[0])
		if err != nil {
			return nil, fmt.Errorf("signals row %d: bad date %q: %w", i+2, rec[0], err)
		}
		qty, err := strconv.Atoi(rec[3])
		if err != nil {
			return nil, fmt.Errorf("signals row %d: bad qty %q: %w", i+2, rec[3], err)
		}

		row := contracts.SignalRow{
			Date:    date,
			Ticker:  rec[1],
			Action:  contracts.Action(rec[2]),
			Qty:     qty,
			Reasons: rec[8],
		}
		if row.EntryPrice, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return nil, fmt.Errorf("signals row %d: bad entry_price: %w", i+2, err)
		}
		if row.Stop, err = strconv.ParseFloat(rec[5], 64); err != nil {
			return nil, fmt.Errorf("signals row %d: bad stop: %w", i+2, err)
		}
		if row.TakeProfit, err = strconv.ParseFloat(rec[6], 64); err != nil {
			return nil, fmt.Errorf("signals row %d: bad take_profit: %w", i+2, err)
		}
		if row.Confidence, err = strconv.ParseFloat(rec[7], 64); err != nil {
			return nil, fmt.Errorf("signals row %d: bad confidence: %w", i+2, err)
		}
		if err := json.Unmarshal([]byte(rec[9]), &row.Features); err != nil {
			return nil, fmt.Errorf("signals row %d: bad features_json: %w", i+2, err)
		}

		rows = append(rows, row)
	}
	return rows, nil
}

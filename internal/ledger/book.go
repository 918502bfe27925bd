package ledger

import (
	"sort"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Book holds the open positions, ordered by ticker. All operations are
// value-based: they return a new Book and never mutate the input.
type Book []contracts.Position

// Open adds a position to the book. Duplicate tickers and non-positive
// quantities or prices are rejected with a warning, returning the book
// unchanged.
func Open(book Book, pos contracts.Position, log *logger.Logger) Book {
	if pos.Qty <= 0 || pos.EntryPrice <= 0 {
		log.WithFields(map[string]interface{}{
			"ticker":      pos.Ticker,
			"qty":         pos.Qty,
			"entry_price": pos.EntryPrice,
		}).Warn("Rejecting position with non-positive qty or price")
		return book
	}
	if Has(book, pos.Ticker) {
		log.WithFields(map[string]interface{}{
			"ticker": pos.Ticker,
		}).Warn("Position already open, ignoring duplicate")
		return book
	}

	next := make(Book, 0, len(book)+1)
	next = append(next, book...)
	next = append(next, pos)
	sort.Slice(next, func(i, j int) bool { return next[i].Ticker < next[j].Ticker })
	return next
}

// Close removes the position for ticker. The removed position is
// returned alongside the new book; ok is false when the ticker has no
// open position.
func Close(book Book, ticker string) (Book, contracts.Position, bool) {
	for i, pos := range book {
		if pos.Ticker == ticker {
			next := make(Book, 0, len(book)-1)
			next = append(next, book[:i]...)
			next = append(next, book[i+1:]...)
			return next, pos, true
		}
	}
	return book, contracts.Position{}, false
}

// Has reports whether the book holds an open position for ticker.
func Has(book Book, ticker string) bool {
	for _, pos := range book {
		if pos.Ticker == ticker {
			return true
		}
	}
	return false
}

// Find returns the open position for ticker, if any.
func Find(book Book, ticker string) (contracts.Position, bool) {
	for _, pos := range book {
		if pos.Ticker == ticker {
			return pos, true
		}
	}
	return contracts.Position{}, false
}

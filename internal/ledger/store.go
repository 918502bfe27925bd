package ledger

import (
	"context"

	"github.com/kmorrow/papertrade/internal/contracts"
)

// Store persists the position book between runs and appends closed
// trades to a permanent record.
//
// Runs are assumed single-writer: one generator process owns the ledger
// at a time, so implementations do no cross-run locking.
type Store interface {
	Load(ctx context.Context) (Book, error)
	Save(ctx context.Context, book Book) error
	AppendClosed(ctx context.Context, trades []contracts.ClosedTrade) error
}

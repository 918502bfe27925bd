package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// PostgresStore keeps the position book in ledger.positions and closed
// trades in ledger.closed_trades.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPostgresStore creates a Postgres-backed store and ensures the
// ledger schema exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool, logger: log}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS ledger`,
		`CREATE TABLE IF NOT EXISTS ledger.positions (
			ticker      TEXT PRIMARY KEY,
			qty         INTEGER NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			entry_date  DATE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ledger.closed_trades (
			id          BIGSERIAL PRIMARY KEY,
			ticker      TEXT NOT NULL,
			qty         INTEGER NOT NULL,
			entry_date  DATE NOT NULL,
			entry_price DOUBLE PRECISION NOT NULL,
			exit_date   DATE NOT NULL,
			exit_price  DOUBLE PRECISION NOT NULL,
			pnl         DOUBLE PRECISION NOT NULL,
			reasons     TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the position book ordered by ticker.
func (s *PostgresStore) Load(ctx context.Context) (Book, error) {
	query := `
		SELECT ticker, qty, entry_price, entry_date
		FROM ledger.positions
		ORDER BY ticker ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	book := Book{}
	for rows.Next() {
		var pos contracts.Position
		if err := rows.Scan(&pos.Ticker, &pos.Qty, &pos.EntryPrice, &pos.EntryDate); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		book = append(book, pos)
	}
	return book, rows.Err()
}

// Save replaces the stored book with the given one in a single
// transaction.
func (s *PostgresStore) Save(ctx context.Context, book Book) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM ledger.positions`); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}

	batch := &pgx.Batch{}
	for _, pos := range book {
		batch.Queue(`
			INSERT INTO ledger.positions (ticker, qty, entry_price, entry_date)
			VALUES ($1, $2, $3, $4)
		`, pos.Ticker, pos.Qty, pos.EntryPrice, pos.EntryDate)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert positions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit positions: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"positions": len(book),
	}).Debug("Saved position book")
	return nil
}

// AppendClosed inserts closed trades into the trade log.
func (s *PostgresStore) AppendClosed(ctx context.Context, trades []contracts.ClosedTrade) error {
	if len(trades) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, tr := range trades {
		batch.Queue(`
			INSERT INTO ledger.closed_trades
				(ticker, qty, entry_date, entry_price, exit_date, exit_price, pnl, reasons)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, tr.Ticker, tr.Qty, tr.EntryDate, tr.EntryPrice,
			tr.ExitDate, tr.ExitPrice, tr.PnL, strings.Join(tr.Reasons, "; "))
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert closed trades: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"trades": len(trades),
	}).Info("Appended closed trades")
	return nil
}

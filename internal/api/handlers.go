package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/internal/ledger"
	"github.com/kmorrow/papertrade/internal/report"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// SignalsFile is the name of the latest signal table inside the data
// directory.
const SignalsFile = "signals_latest.csv"

// SignalsHandler serves the latest signal table and the open position
// book.
type SignalsHandler struct {
	dataDir string
	store   ledger.Store
	logger  *logger.Logger
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(dataDir string, store ledger.Store, log *logger.Logger) *SignalsHandler {
	return &SignalsHandler{dataDir: dataDir, store: store, logger: log}
}

// GetLatest returns the most recent signal table.
// GET /api/v1/signals/latest
func (h *SignalsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.dataDir, SignalsFile)
	rows, err := report.ReadCSV(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no signals generated yet")
			return
		}
		h.logger.WithError(err).Error("Failed to read signal table")
		writeError(w, http.StatusInternalServerError, "failed to read signals")
		return
	}

	writeJSON(w, map[string]interface{}{
		"count":   len(rows),
		"signals": rows,
	})
}

// GetPositions returns the open position book.
// GET /api/v1/positions
func (h *SignalsHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	book, err := h.store.Load(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load position book")
		writeError(w, http.StatusInternalServerError, "failed to load positions")
		return
	}

	if book == nil {
		book = ledger.Book{}
	}
	writeJSON(w, map[string]interface{}{
		"count":     len(book),
		"positions": []contracts.Position(book),
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package contracts

import (
	"encoding/json"
	"time"
)

// Action is the decision emitted for one ticker in the signal table.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Features is the structured diagnostic blob attached to every signal
// row. It is serialized to JSON for the features column so the decision
// data never lives only inside the free-text reasons field.
type Features struct {
	Ret5D       float64  `json:"ret_5d"`
	NewsSent    float64  `json:"news_sent"`
	RedditSent  float64  `json:"reddit_sent"`
	Squeeze     float64  `json:"squeeze"`
	Score       float64  `json:"score"`
	NewsCount   int      `json:"n_news"`
	RedditCount int      `json:"n_reddit"`
	PnL         *float64 `json:"pnl,omitempty"` // realized, SELL rows only
}

// JSON renders the features blob for the persisted table.
func (f Features) JSON() string {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// SignalRow is one row of the daily signal table.
type SignalRow struct {
	Date       time.Time `json:"date"`
	Ticker     string    `json:"ticker"`
	Action     Action    `json:"action"`
	Qty        int       `json:"qty"`
	EntryPrice float64   `json:"entry_price"`
	Stop       float64   `json:"stop"`
	TakeProfit float64   `json:"take_profit"`
	Confidence float64   `json:"confidence"` // [0, 1]
	Reasons    string    `json:"reasons"`
	Features   Features  `json:"features"`
}

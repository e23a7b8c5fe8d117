package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeKind string

const (
	TradeKindBuy  TradeKind = "BUY"
	TradeKindSell TradeKind = "SELL"
)

// HistoryEntry is the append-only record of one executed trade. Shares is
// signed: positive for a buy, negative for a sell. Rows are never updated
// or deleted.
type HistoryEntry struct {
	ID         int             `db:"id"`
	UserID     int             `db:"user_id"`
	Symbol     string          `db:"symbol"`
	Shares     int             `db:"shares"`
	Kind       TradeKind       `db:"kind"`
	Price      decimal.Decimal `db:"price"`
	OrderRef   string          `db:"order_ref"`
	Transacted time.Time       `db:"transacted"`
}

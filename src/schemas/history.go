package schemas

import (
	"time"

	"github.com/shopspring/decimal"
)

type HistoryEntryResponse struct {
	Symbol     string          `json:"symbol"`
	Shares     int             `json:"shares"`
	Kind       string          `json:"kind"`
	Price      decimal.Decimal `json:"price"`
	OrderRef   string          `json:"order_ref"`
	Transacted time.Time       `json:"transacted"`
}

package schemas

import (
	"github.com/shopspring/decimal"
)

type TradeRequest struct {
	Symbol string `json:"symbol"`
	Shares int    `json:"shares"`
}

// TradeConfirmation is returned once a trade has committed. Total is the
// cost of a buy or the proceeds of a sell.
type TradeConfirmation struct {
	OrderRef string          `json:"order_ref"`
	Kind     string          `json:"kind"`
	Symbol   string          `json:"symbol"`
	Shares   int             `json:"shares"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

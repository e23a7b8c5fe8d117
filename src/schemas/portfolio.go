package schemas

import (
	"github.com/shopspring/decimal"
)

// PortfolioPosition is one holding valued at the current market price.
type PortfolioPosition struct {
	Symbol string          `json:"symbol"`
	Shares int             `json:"shares"`
	Price  decimal.Decimal `json:"price"`
	Value  decimal.Decimal `json:"value"`
}

type PortfolioResponse struct {
	Positions []PortfolioPosition `json:"positions"`
	Cash      decimal.Decimal     `json:"cash"`
	Total     decimal.Decimal     `json:"total"`
}

type CashBalanceResponse struct {
	Cash decimal.Decimal `json:"cash"`
}

type QuoteResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

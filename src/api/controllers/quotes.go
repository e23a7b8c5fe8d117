package controllers

import (
	"context"

	"finance/src/clients/quotes"
	"finance/src/schemas"
)

type QuoteControllerI interface {
	GetQuote(ctx context.Context, symbol string) (*schemas.QuoteResponse, error)
}

type QuoteController struct {
	quotes quotes.QuoteClientI
}

func NewQuoteController(quoteClient quotes.QuoteClientI) *QuoteController {
	return &QuoteController{quotes: quoteClient}
}

func (c *QuoteController) GetQuote(ctx context.Context, symbol string) (*schemas.QuoteResponse, error) {
	quote, err := c.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return &schemas.QuoteResponse{Symbol: quote.Symbol, Price: quote.Price}, nil
}

package controllers

import (
	"context"
	"errors"
	"strings"
	"time"

	"finance/src/clients/quotes"
	"finance/src/models"
	"finance/src/repositories"
	"finance/src/schemas"
	"finance/src/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type TradeControllerI interface {
	Buy(ctx context.Context, userID int, symbol string, shares int) (*schemas.TradeConfirmation, error)
	Sell(ctx context.Context, userID int, symbol string, shares int) (*schemas.TradeConfirmation, error)
	GetPortfolio(ctx context.Context, userID int) (*schemas.PortfolioResponse, error)
	GetHistory(ctx context.Context, userID int) ([]schemas.HistoryEntryResponse, error)
	GetCashBalance(ctx context.Context, userID int) (*schemas.CashBalanceResponse, error)
}

// TradeController executes buys and sells as single transactions against the
// ledger. Quote lookups happen before the transaction opens so provider
// latency never extends the time the user's rows stay locked.
type TradeController struct {
	db       TxStarter
	users    repositories.UserRepository
	holdings repositories.HoldingRepository
	history  repositories.HistoryRepository
	quotes   quotes.QuoteClientI
}

func NewTradeController(
	db TxStarter,
	users repositories.UserRepository,
	holdings repositories.HoldingRepository,
	history repositories.HistoryRepository,
	quoteClient quotes.QuoteClientI,
) *TradeController {
	return &TradeController{
		db:       db,
		users:    users,
		holdings: holdings,
		history:  history,
		quotes:   quoteClient,
	}
}

func (c *TradeController) Buy(ctx context.Context, userID int, symbol string, shares int) (*schemas.TradeConfirmation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || shares <= 0 {
		return nil, ErrInvalidInput
	}

	quote, err := c.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	cost := quote.Price.Mul(decimal.NewFromInt(int64(shares)))

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Debit before the holding update: a rejection here leaves everything
	// untouched, and its row lock serializes concurrent trades per user.
	if err := c.users.Debit(ctx, tx, userID, cost); err != nil {
		return nil, err
	}
	if err := c.holdings.Add(ctx, tx, userID, symbol, shares); err != nil {
		return nil, err
	}

	entry := &models.HistoryEntry{
		UserID:     userID,
		Symbol:     symbol,
		Shares:     shares,
		Kind:       models.TradeKindBuy,
		Price:      quote.Price,
		OrderRef:   uuid.NewString(),
		Transacted: time.Now().UTC(),
	}
	if err := c.history.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":   userID,
		"symbol":    symbol,
		"shares":    shares,
		"price":     quote.Price,
		"order_ref": entry.OrderRef,
	}).Info("buy executed")

	return &schemas.TradeConfirmation{
		OrderRef: entry.OrderRef,
		Kind:     string(models.TradeKindBuy),
		Symbol:   symbol,
		Shares:   shares,
		Price:    quote.Price,
		Total:    cost,
	}, nil
}

func (c *TradeController) Sell(ctx context.Context, userID int, symbol string, shares int) (*schemas.TradeConfirmation, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || shares <= 0 {
		return nil, ErrInvalidInput
	}

	held, err := c.holdings.GetShares(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}
	if held == 0 {
		return nil, ErrNotOwned
	}
	if shares > held {
		return nil, repositories.ErrExceedsHoldings
	}

	quote, err := c.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(int64(shares)))

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Remove re-checks the count under the row lock: a concurrent sell that
	// drained the position between the validation read and here still fails
	// cleanly and rolls everything back.
	if err := c.holdings.Remove(ctx, tx, userID, symbol, shares); err != nil {
		if errors.Is(err, repositories.ErrHoldingNotFound) {
			return nil, ErrNotOwned
		}
		return nil, err
	}
	if err := c.users.Credit(ctx, tx, userID, proceeds); err != nil {
		return nil, err
	}

	entry := &models.HistoryEntry{
		UserID:     userID,
		Symbol:     symbol,
		Shares:     -shares,
		Kind:       models.TradeKindSell,
		Price:      quote.Price,
		OrderRef:   uuid.NewString(),
		Transacted: time.Now().UTC(),
	}
	if err := c.history.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	utils.LoggerFromContext(ctx).WithFields(logrus.Fields{
		"user_id":   userID,
		"symbol":    symbol,
		"shares":    shares,
		"price":     quote.Price,
		"order_ref": entry.OrderRef,
	}).Info("sell executed")

	return &schemas.TradeConfirmation{
		OrderRef: entry.OrderRef,
		Kind:     string(models.TradeKindSell),
		Symbol:   symbol,
		Shares:   shares,
		Price:    quote.Price,
		Total:    proceeds,
	}, nil
}

// GetPortfolio values every holding at the current market price and totals
// them together with cash.
func (c *TradeController) GetPortfolio(ctx context.Context, userID int) (*schemas.PortfolioResponse, error) {
	holdings, err := c.holdings.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	cash, err := c.users.GetCash(ctx, userID)
	if err != nil {
		return nil, err
	}

	positions := make([]schemas.PortfolioPosition, 0, len(holdings))
	total := cash
	for _, h := range holdings {
		quote, err := c.quotes.GetQuote(ctx, h.Symbol)
		if err != nil {
			return nil, err
		}
		value := quote.Price.Mul(decimal.NewFromInt(int64(h.Shares)))
		positions = append(positions, schemas.PortfolioPosition{
			Symbol: h.Symbol,
			Shares: h.Shares,
			Price:  quote.Price,
			Value:  value,
		})
		total = total.Add(value)
	}

	return &schemas.PortfolioResponse{
		Positions: positions,
		Cash:      cash,
		Total:     total,
	}, nil
}

func (c *TradeController) GetHistory(ctx context.Context, userID int) ([]schemas.HistoryEntryResponse, error) {
	entries, err := c.history.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := make([]schemas.HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, schemas.HistoryEntryResponse{
			Symbol:     e.Symbol,
			Shares:     e.Shares,
			Kind:       string(e.Kind),
			Price:      e.Price,
			OrderRef:   e.OrderRef,
			Transacted: e.Transacted,
		})
	}
	return response, nil
}

func (c *TradeController) GetCashBalance(ctx context.Context, userID int) (*schemas.CashBalanceResponse, error) {
	cash, err := c.users.GetCash(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &schemas.CashBalanceResponse{Cash: cash}, nil
}

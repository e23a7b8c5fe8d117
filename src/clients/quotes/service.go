package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance/src/config"
	"finance/src/utils"
	"finance/src/utils/requests"

	"github.com/shopspring/decimal"
)

// ErrUnknownSymbol reports a ticker the provider cannot resolve. Anything
// else returned by GetQuote is an operational failure, never a rejection.
var ErrUnknownSymbol = errors.New("unknown ticker symbol")

type QuoteClientI interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

type QuoteClient struct {
	API     *requests.ExternalAPIService
	BaseURL string
	cache   *utils.KeyedCache[*Quote]
}

// NewClient creates a new instance of QuoteClient
func NewClient(cfg *config.Config) *QuoteClient {
	timeout := time.Duration(cfg.Quotes.RequestTimeoutMS) * time.Millisecond
	ttl := time.Duration(cfg.Quotes.CacheTTLSeconds) * time.Second
	return &QuoteClient{
		API:     requests.NewExternalAPIService(timeout),
		BaseURL: cfg.Quotes.BaseURL,
		cache:   utils.NewKeyedCache[*Quote](ttl),
	}
}

// GetQuote fetches the current market price for symbol. Symbols are
// case-normalized to uppercase before lookup. Quotes are cached briefly to
// keep repeated portfolio valuations from hammering the provider.
func (c *QuoteClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrUnknownSymbol
	}

	if quote, ok := c.cache.Get(symbol); ok {
		return quote, nil
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.BaseURL, url.PathEscape(symbol))

	params := url.Values{}
	params.Add("interval", "1m")
	params.Add("range", "1d")

	resp, err := c.API.Get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownSymbol
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote provider returned status %d for %s", resp.StatusCode, symbol)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var chart chartResponse
	err = json.Unmarshal(responseBody, &chart)
	if err != nil {
		return nil, err
	}

	if len(chart.Chart.Result) == 0 {
		return nil, ErrUnknownSymbol
	}

	result := chart.Chart.Result[0]
	price := result.Meta.RegularMarketPrice

	// Fall back to the last non-zero close when the meta price is missing.
	if price <= 0 && len(result.Timestamp) > 0 && len(result.Indicators.Quote) > 0 &&
		len(result.Indicators.Quote[0].Close) == len(result.Timestamp) {
		for i := len(result.Timestamp) - 1; i >= 0; i-- {
			if last := result.Indicators.Quote[0].Close[i]; last > 0 {
				price = last
				break
			}
		}
	}

	if price <= 0 {
		return nil, ErrUnknownSymbol
	}

	quote := &Quote{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(price),
	}
	c.cache.Set(symbol, quote)

	return quote, nil
}

// SweepCache drops expired quotes and reports how many were removed.
func (c *QuoteClient) SweepCache() int {
	return c.cache.Sweep()
}

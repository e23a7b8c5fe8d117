package quotes_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"finance/src/clients/quotes"
	"finance/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, cacheTTLSeconds int) *quotes.QuoteClient {
	cfg := &config.Config{}
	cfg.Quotes.BaseURL = baseURL
	cfg.Quotes.CacheTTLSeconds = cacheTTLSeconds
	cfg.Quotes.RequestTimeoutMS = 2000
	return quotes.NewClient(cfg)
}

func chartBody(symbol string, price float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":%q,"regularMarketPrice":%f,"regularMarketTime":1700000000}}],"error":null}}`, symbol, price)
}

func TestGetQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("returns price for known symbol", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
			fmt.Fprint(w, chartBody("AAPL", 150.25))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		quote, err := client.GetQuote(ctx, "aapl")
		require.NoError(t, err)
		assert.Equal(t, "AAPL", quote.Symbol)
		assert.Equal(t, "150.25", quote.Price.String())
	})

	t.Run("reports unknown symbol on empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":[],"error":{"code":"Not Found"}}}`)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		_, err := client.GetQuote(ctx, "NOPE")
		assert.ErrorIs(t, err, quotes.ErrUnknownSymbol)
	})

	t.Run("reports unknown symbol on 404", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		_, err := client.GetQuote(ctx, "NOPE")
		assert.ErrorIs(t, err, quotes.ErrUnknownSymbol)
	})

	t.Run("rejects empty symbol without calling provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("provider should not be called")
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		_, err := client.GetQuote(ctx, "   ")
		assert.ErrorIs(t, err, quotes.ErrUnknownSymbol)
	})

	t.Run("surfaces provider failures as operational errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		_, err := client.GetQuote(ctx, "AAPL")
		require.Error(t, err)
		assert.NotErrorIs(t, err, quotes.ErrUnknownSymbol)
	})

	t.Run("falls back to last close when meta price missing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"AAPL","regularMarketPrice":0},"timestamp":[1,2,3],"indicators":{"quote":[{"close":[10.5,11.5,0]}]}}],"error":null}}`)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		quote, err := client.GetQuote(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "11.5", quote.Price.String())
	})

	t.Run("caches quotes between calls", func(t *testing.T) {
		var calls int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&calls, 1)
			fmt.Fprint(w, chartBody("AAPL", 150))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 60)
		_, err := client.GetQuote(ctx, "AAPL")
		require.NoError(t, err)
		_, err = client.GetQuote(ctx, "AAPL")
		require.NoError(t, err)

		assert.EqualValues(t, 1, atomic.LoadInt64(&calls))
	})
}

package handlers_test

import (
	"context"
	"net/http/httptest"
	"strings"

	"finance/src/api/handlers"
	"finance/src/schemas"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
)

type mockAuthController struct {
	registerResponse *schemas.RegisterResponse
	registerErr      error
	loginResponse    *schemas.TokenResponse
	loginErr         error
}

func (m *mockAuthController) Register(_ context.Context, _ *schemas.RegisterRequest) (*schemas.RegisterResponse, error) {
	return m.registerResponse, m.registerErr
}

func (m *mockAuthController) Login(_ context.Context, _ *schemas.LoginRequest) (*schemas.TokenResponse, error) {
	return m.loginResponse, m.loginErr
}

type mockTradeController struct {
	confirmation *schemas.TradeConfirmation
	tradeErr     error

	lastUserID int
	lastSymbol string
	lastShares int

	portfolio    *schemas.PortfolioResponse
	portfolioErr error
	history      []schemas.HistoryEntryResponse
	historyErr   error
	cash         *schemas.CashBalanceResponse
	cashErr      error
}

func (m *mockTradeController) Buy(_ context.Context, userID int, symbol string, shares int) (*schemas.TradeConfirmation, error) {
	m.lastUserID, m.lastSymbol, m.lastShares = userID, symbol, shares
	return m.confirmation, m.tradeErr
}

func (m *mockTradeController) Sell(_ context.Context, userID int, symbol string, shares int) (*schemas.TradeConfirmation, error) {
	m.lastUserID, m.lastSymbol, m.lastShares = userID, symbol, shares
	return m.confirmation, m.tradeErr
}

func (m *mockTradeController) GetPortfolio(_ context.Context, userID int) (*schemas.PortfolioResponse, error) {
	m.lastUserID = userID
	return m.portfolio, m.portfolioErr
}

func (m *mockTradeController) GetHistory(_ context.Context, userID int) ([]schemas.HistoryEntryResponse, error) {
	m.lastUserID = userID
	return m.history, m.historyErr
}

func (m *mockTradeController) GetCashBalance(_ context.Context, userID int) (*schemas.CashBalanceResponse, error) {
	m.lastUserID = userID
	return m.cash, m.cashErr
}

type mockQuoteController struct {
	quote *schemas.QuoteResponse
	err   error

	lastSymbol string
}

func (m *mockQuoteController) GetQuote(_ context.Context, symbol string) (*schemas.QuoteResponse, error) {
	m.lastSymbol = symbol
	return m.quote, m.err
}

type handlerFixture struct {
	auth      *mockAuthController
	trades    *mockTradeController
	quotes    *mockQuoteController
	tokenAuth *jwtauth.JWTAuth
	router    *chi.Mux
}

// newHandlerFixture builds a router with the same wiring the server uses,
// backed by mock controllers.
func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		auth:      &mockAuthController{},
		trades:    &mockTradeController{},
		quotes:    &mockQuoteController{},
		tokenAuth: jwtauth.New("HS256", []byte("testing-secret"), nil),
	}

	h := handlers.NewHandler(f.auth, f.trades, f.quotes)

	router := chi.NewRouter()
	router.Get("/alive", handlers.Healthcheck)
	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(f.tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Get("/api/quotes/{symbol}", h.GetQuote)
		r.Post("/api/trades/buy", h.Buy)
		r.Post("/api/trades/sell", h.Sell)
		r.Get("/api/portfolio", h.GetPortfolio)
		r.Get("/api/portfolio/cash", h.GetCashBalance)
		r.Get("/api/history", h.GetHistory)
		r.Get("/api/history/export", h.ExportHistory)
	})
	f.router = router

	return f
}

func (f *handlerFixture) tokenFor(userID int) string {
	claims := map[string]interface{}{"user_id": userID}
	jwtauth.SetIssuedNow(claims)
	_, token, err := f.tokenAuth.Encode(claims)
	if err != nil {
		panic(err)
	}
	return token
}

func (f *handlerFixture) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

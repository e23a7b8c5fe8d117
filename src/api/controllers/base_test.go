package controllers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"finance/src/api/controllers"
	"finance/src/clients/quotes"
	"finance/src/models"
	"finance/src/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// stubTx satisfies pgx.Tx for controller tests; the fakes below keep their
// state in memory so nothing ever reaches the embedded interface.
type stubTx struct {
	pgx.Tx
}

func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return nil }

type stubDB struct{}

func (stubDB) Begin(context.Context) (pgx.Tx, error) { return stubTx{}, nil }

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]*models.User
	byName map[string]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[int]*models.User),
		byName: make(map[string]int),
	}
}

func (f *fakeUserRepo) addUser(t *testing.T, username, cash string) int {
	t.Helper()
	user := &models.User{
		Username: username,
		Cash:     decimal.RequireFromString(cash),
	}
	require.NoError(t, f.Create(context.Background(), user))
	return user.ID
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byName[username]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *f.users[id]
	return &copied, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[u.Username]; ok {
		return repositories.ErrUsernameTaken
	}
	f.nextID++
	u.ID = f.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	copied := *u
	f.users[u.ID] = &copied
	f.byName[u.Username] = u.ID
	return nil
}

func (f *fakeUserRepo) GetCash(_ context.Context, userID int) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return decimal.Zero, repositories.ErrUserNotFound
	}
	return u.Cash, nil
}

func (f *fakeUserRepo) Debit(_ context.Context, _ pgx.Tx, userID int, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.Cash.LessThan(amount) {
		return repositories.ErrInsufficientFunds
	}
	u.Cash = u.Cash.Sub(amount)
	return nil
}

func (f *fakeUserRepo) Credit(_ context.Context, _ pgx.Tx, userID int, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Cash = u.Cash.Add(amount)
	return nil
}

type fakeHoldingRepo struct {
	mu     sync.Mutex
	shares map[int]map[string]int
}

func newFakeHoldingRepo() *fakeHoldingRepo {
	return &fakeHoldingRepo{shares: make(map[int]map[string]int)}
}

func (f *fakeHoldingRepo) ListByUserID(_ context.Context, userID int) ([]models.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	symbols := make([]string, 0, len(f.shares[userID]))
	for symbol := range f.shares[userID] {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	holdings := make([]models.Holding, 0, len(symbols))
	for _, symbol := range symbols {
		holdings = append(holdings, models.Holding{
			UserID: userID,
			Symbol: symbol,
			Shares: f.shares[userID][symbol],
		})
	}
	return holdings, nil
}

func (f *fakeHoldingRepo) GetShares(_ context.Context, userID int, symbol string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shares[userID][symbol], nil
}

func (f *fakeHoldingRepo) Add(_ context.Context, _ pgx.Tx, userID int, symbol string, shares int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.shares[userID] == nil {
		f.shares[userID] = make(map[string]int)
	}
	f.shares[userID][symbol] += shares
	return nil
}

func (f *fakeHoldingRepo) Remove(_ context.Context, _ pgx.Tx, userID int, symbol string, shares int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	held, ok := f.shares[userID][symbol]
	if !ok {
		return repositories.ErrHoldingNotFound
	}
	if shares > held {
		return repositories.ErrExceedsHoldings
	}
	if held == shares {
		delete(f.shares[userID], symbol)
		return nil
	}
	f.shares[userID][symbol] = held - shares
	return nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	nextID  int
	entries []models.HistoryEntry
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (f *fakeHistoryRepo) Create(_ context.Context, _ pgx.Tx, e *models.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	e.ID = f.nextID
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeHistoryRepo) ListByUserID(_ context.Context, userID int) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []models.HistoryEntry
	for _, e := range f.entries {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Transacted.Equal(entries[j].Transacted) {
			return entries[i].Transacted.After(entries[j].Transacted)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

type fakeQuoteClient struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  int
}

func newFakeQuoteClient() *fakeQuoteClient {
	return &fakeQuoteClient{prices: make(map[string]decimal.Decimal)}
}

func (f *fakeQuoteClient) setPrice(symbol, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = decimal.RequireFromString(price)
}

func (f *fakeQuoteClient) GetQuote(_ context.Context, symbol string) (*quotes.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	price, ok := f.prices[symbol]
	if !ok {
		return nil, quotes.ErrUnknownSymbol
	}
	return &quotes.Quote{Symbol: symbol, Price: price}, nil
}

type tradeFixture struct {
	ctrl     *controllers.TradeController
	users    *fakeUserRepo
	holdings *fakeHoldingRepo
	history  *fakeHistoryRepo
	quotes   *fakeQuoteClient
}

func newTradeFixture() *tradeFixture {
	users := newFakeUserRepo()
	holdings := newFakeHoldingRepo()
	history := newFakeHistoryRepo()
	quoteClient := newFakeQuoteClient()
	return &tradeFixture{
		ctrl:     controllers.NewTradeController(stubDB{}, users, holdings, history, quoteClient),
		users:    users,
		holdings: holdings,
		history:  history,
		quotes:   quoteClient,
	}
}

func requireDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	require.Truef(t, actual.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, actual)
}

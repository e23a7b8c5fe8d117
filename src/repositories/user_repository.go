package repositories

import (
	"context"
	"errors"

	"finance/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// UserRepository owns the cash side of the ledger. Debit and Credit must run
// inside the trade transaction passed by the caller; the conditional update
// in Debit takes the user's row lock so concurrent trades for the same user
// serialize instead of reading a stale balance.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	GetCash(ctx context.Context, userID int) (decimal.Decimal, error)
	Debit(ctx context.Context, tx pgx.Tx, userID int, amount decimal.Decimal) error
	Credit(ctx context.Context, tx pgx.Tx, userID int, amount decimal.Decimal) error
}

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.get(ctx, `SELECT id, username, password_hash, cash, created_at, updated_at FROM users WHERE id = $1`, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.get(ctx, `SELECT id, username, password_hash, cash, created_at, updated_at FROM users WHERE username = $1`, username)
}

func (r *userRepo) get(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Cash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, cash) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		u.Username, u.PasswordHash, u.Cash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrUsernameTaken
	}
	return err
}

func (r *userRepo) GetCash(ctx context.Context, userID int) (decimal.Decimal, error) {
	var cash decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT cash FROM users WHERE id = $1`, userID).Scan(&cash)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrUserNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return cash, nil
}

func (r *userRepo) Debit(ctx context.Context, tx pgx.Tx, userID int, amount decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET cash = cash - $2, updated_at = now() WHERE id = $1 AND cash >= $2`,
		userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the user does not exist or the balance cannot cover the
		// amount; trades only ever debit authenticated users.
		return ErrInsufficientFunds
	}
	return nil
}

func (r *userRepo) Credit(ctx context.Context, tx pgx.Tx, userID int, amount decimal.Decimal) error {
	tag, err := tx.Exec(ctx,
		`UPDATE users SET cash = cash + $2, updated_at = now() WHERE id = $1`,
		userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"finance/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrHoldingNotFound = errors.New("no holding for symbol")
	ErrExceedsHoldings = errors.New("shares sold exceed shares owned")
)

// HoldingRepository owns the share side of the ledger. Add and Remove must
// run inside the trade transaction passed by the caller. Remove deletes the
// row once the position is empty, so a holding row always means shares > 0.
type HoldingRepository interface {
	ListByUserID(ctx context.Context, userID int) ([]models.Holding, error)
	GetShares(ctx context.Context, userID int, symbol string) (int, error)
	Add(ctx context.Context, tx pgx.Tx, userID int, symbol string, shares int) error
	Remove(ctx context.Context, tx pgx.Tx, userID int, symbol string, shares int) error
}

type holdingRepo struct {
	db *pgxpool.Pool
}

func NewHoldingRepository(db *pgxpool.Pool) HoldingRepository {
	return &holdingRepo{db: db}
}

func (r *holdingRepo) ListByUserID(ctx context.Context, userID int) ([]models.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, symbol, shares, created_at, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Shares, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

func (r *holdingRepo) GetShares(ctx context.Context, userID int, symbol string) (int, error) {
	var shares int
	err := r.db.QueryRow(ctx,
		`SELECT shares FROM holdings WHERE user_id = $1 AND symbol = $2`,
		userID, symbol).Scan(&shares)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return shares, nil
}

func (r *holdingRepo) Add(ctx context.Context, tx pgx.Tx, userID int, symbol string, shares int) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO holdings (user_id, symbol, shares)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			shares = holdings.shares + EXCLUDED.shares,
			updated_at = now()`,
		userID, symbol, shares)
	return err
}

func (r *holdingRepo) Remove(ctx context.Context, tx pgx.Tx, userID int, symbol string, shares int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE holdings SET shares = shares - $3, updated_at = now()
		WHERE user_id = $1 AND symbol = $2 AND shares >= $3`,
		userID, symbol, shares)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing position from an oversized sell.
		var existing int
		err := tx.QueryRow(ctx,
			`SELECT shares FROM holdings WHERE user_id = $1 AND symbol = $2`,
			userID, symbol).Scan(&existing)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrHoldingNotFound
		}
		if err != nil {
			return err
		}
		return ErrExceedsHoldings
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM holdings WHERE user_id = $1 AND symbol = $2 AND shares = 0`,
		userID, symbol)
	return err
}

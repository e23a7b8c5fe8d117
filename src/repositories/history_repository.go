package repositories

import (
	"context"

	"finance/src/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository is the append-only trade log. Create must run inside the
// trade transaction; entries are never updated or deleted afterwards.
type HistoryRepository interface {
	Create(ctx context.Context, tx pgx.Tx, e *models.HistoryEntry) error
	ListByUserID(ctx context.Context, userID int) ([]models.HistoryEntry, error)
}

type historyRepo struct {
	db *pgxpool.Pool
}

func NewHistoryRepository(db *pgxpool.Pool) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, tx pgx.Tx, e *models.HistoryEntry) error {
	return tx.QueryRow(ctx,
		`INSERT INTO history (user_id, symbol, shares, kind, price, order_ref, transacted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		e.UserID, e.Symbol, e.Shares, e.Kind, e.Price, e.OrderRef, e.Transacted,
	).Scan(&e.ID)
}

func (r *historyRepo) ListByUserID(ctx context.Context, userID int) ([]models.HistoryEntry, error) {
	// id breaks ties between entries sharing a timestamp so repeated reads
	// return an identical sequence.
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, symbol, shares, kind, price, order_ref, transacted
		FROM history
		WHERE user_id = $1
		ORDER BY transacted DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Symbol, &e.Shares, &e.Kind, &e.Price, &e.OrderRef, &e.Transacted); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

package models

import (
	"time"
)

// Holding is a user's current position in one symbol. At most one row exists
// per (user, symbol) pair, and shares is never negative.
type Holding struct {
	ID        int       `db:"id"`
	UserID    int       `db:"user_id"`
	Symbol    string    `db:"symbol"`
	Shares    int       `db:"shares"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

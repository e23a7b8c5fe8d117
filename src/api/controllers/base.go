package controllers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Domain rejections reported back to the caller. Anything outside this set
// is an operational failure and surfaces as a generic 500.
var (
	ErrInvalidInput       = errors.New("must provide a valid symbol and a positive number of shares")
	ErrNotOwned           = errors.New("no shares of this symbol owned")
	ErrInvalidCredentials = errors.New("invalid username and/or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// TxStarter opens the transaction wrapping each trade. *pgxpool.Pool
// satisfies it.
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

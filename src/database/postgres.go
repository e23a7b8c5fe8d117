package database

import (
	"context"
	"fmt"
	"time"

	"finance/src/config"
	aws_handler "finance/src/utils/aws"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

func SetupDB(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.Databases.SQL.ConnectionString
	if dsn == "" {
		password := cfg.Databases.SQL.Password
		if cfg.Databases.SQL.PasswordSecretID != "" {
			secrets, err := aws_handler.NewSecretManager(cfg.Databases.SQL.AWSRegion)
			if err != nil {
				return nil, fmt.Errorf("failed to create secrets manager client: %w", err)
			}
			password, err = secrets.GetSecretValue(cfg.Databases.SQL.PasswordSecretID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve database password secret: %w", err)
			}
		}
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.Databases.SQL.Host,
			cfg.Databases.SQL.Username,
			password,
			cfg.Databases.SQL.Database,
			cfg.Databases.SQL.Port)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1

	// Cash and prices are scanned as shopspring decimals.
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %v\nPlease ensure the database is running and accessible with the provided credentials", err)
	}

	// The database may still be coming up when the service starts; retry the
	// first ping with backoff before giving up.
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %v\nPlease check your database configuration and ensure it's running", err)
	}
	return pool, nil
}

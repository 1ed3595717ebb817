// Package postgres opens pooled PostgreSQL connections through the pgx stdlib
// driver and applies embedded migrations.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const driverName = "pgx"

type options struct {
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
	maxIdleConns    int
	maxOpenConns    int
	connectAttempts int
	connectBackoff  time.Duration
}

var defaultOptions = options{
	connMaxIdleTime: 5 * time.Minute,
	connMaxLifetime: 30 * time.Minute,
	maxIdleConns:    5,
	maxOpenConns:    25,
	connectAttempts: 1,
	connectBackoff:  time.Second,
}

// Option tunes the pool. Zero values keep the defaults, so options can be fed
// straight from a partially filled config.
type Option func(*options)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connMaxIdleTime = d
		}
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connMaxLifetime = d
		}
	}
}

func WithMaxIdleConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIdleConns = n
		}
	}
}

func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithConnectRetry makes New ping the database up to attempts times, sleeping
// backoff between tries. Useful when the database starts alongside the website.
func WithConnectRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.connectAttempts = attempts
		}
		if backoff > 0 {
			o.connectBackoff = backoff
		}
	}
}

// New opens a pool on dsn and waits until the database answers.
func New(ctx context.Context, dsn string, opts ...Option) (*sqlx.DB, error) {
	const op = "postgres.New"

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	if err := setup(ctx, db, opts...); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return db, nil
}

func setup(ctx context.Context, db *sqlx.DB, opts ...Option) error {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}

	db.SetConnMaxIdleTime(o.connMaxIdleTime)
	db.SetConnMaxLifetime(o.connMaxLifetime)
	db.SetMaxIdleConns(o.maxIdleConns)
	db.SetMaxOpenConns(o.maxOpenConns)

	return ping(ctx, db, o.connectAttempts, o.connectBackoff)
}

func ping(ctx context.Context, db *sqlx.DB, attempts int, backoff time.Duration) error {
	var err error

	for i := 1; ; i++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if i >= attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to connect to database: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}

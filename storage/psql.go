package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pavelpuchok/releasecourier/config"
)

// PostgreSQL stores the notification markers in a feeds table. One row per
// feed; last_entry_id is NULL until the first confirmed send.
type PostgreSQL struct {
	conn    *pgx.Conn
	timeout time.Duration
}

func NewPostgreSQL(ctx context.Context, cfg config.PSQLStorageConfig) (*PostgreSQL, error) {
	conn, err := pgx.Connect(ctx, cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL DB. %w", err)
	}

	return &PostgreSQL{
		conn:    conn,
		timeout: cfg.DefaultTimeout,
	}, nil
}

func (pq *PostgreSQL) Close(ctx context.Context) error {
	return pq.conn.Close(ctx)
}

func (pq *PostgreSQL) CreateFeed(ctx context.Context, feed string) error {
	cctx, cancel := context.WithTimeout(ctx, pq.timeout)
	defer cancel()

	_, err := pq.conn.Exec(cctx,
		`insert into feeds (name, created_at) values ($1, $2)`,
		feed, time.Now())

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				return ErrFeedAlreadyExists
			}
		}
		return fmt.Errorf("failed to create feed (%s). %w", feed, err)
	}

	return nil
}

func (pq *PostgreSQL) LastNotified(ctx context.Context, feed string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, pq.timeout)
	defer cancel()

	var id *string
	err := pq.conn.QueryRow(cctx,
		`select last_entry_id from feeds where name = $1`,
		feed).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrFeedNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get feeds (%s) last notified entry. %w", feed, err)
	}
	if id == nil {
		return "", ErrFeedNotFound
	}

	return *id, nil
}

func (pq *PostgreSQL) SetLastNotified(ctx context.Context, feed string, id string) error {
	cctx, cancel := context.WithTimeout(ctx, pq.timeout)
	defer cancel()

	tag, err := pq.conn.Exec(cctx,
		`update feeds set last_entry_id = $2, updated_at = $3 where name = $1`,
		feed, id, time.Now())

	if err != nil {
		return fmt.Errorf("failed to set feeds (%s) last notified entry. %w", feed, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFeedNotFound
	}

	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/9seconds/tracemap/tracelib"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	postgresConnectRetries         = 5
	postgresConnectInitialInterval = 500 * time.Millisecond
	postgresConnectMaxInterval     = 5 * time.Second

	postgresCreateTable = `
		CREATE TABLE IF NOT EXISTS hop_locations (
			address    TEXT PRIMARY KEY,
			lat        DOUBLE PRECISION NULL,
			lng        DOUBLE PRECISION NULL,
			is_private BOOLEAN NOT NULL DEFAULT FALSE
		)
	`
	postgresSelectRow = `
		SELECT lat, lng, is_private
		FROM hop_locations
		WHERE address = $1
	`
	postgresUpsertRow = `
		INSERT INTO hop_locations (address, lat, lng, is_private)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE
		SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			is_private = EXCLUDED.is_private
	`
)

type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresStore keeps rows in hop_locations table. The table is
// created on first use.
type PostgresStore struct {
	conn  pgxConn
	close func()

	mutex   sync.Mutex
	ensured bool
}

func (p *PostgresStore) Get(ctx context.Context, address string) (tracelib.CacheEntry, bool, error) {
	if err := p.ensureTable(ctx); err != nil {
		return tracelib.CacheEntry{}, false, err
	}

	var (
		lat, lng  *float64
		isPrivate bool
	)

	err := p.conn.QueryRow(ctx, postgresSelectRow, address).Scan(&lat, &lng, &isPrivate)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return tracelib.CacheEntry{}, false, nil
	case err != nil:
		return tracelib.CacheEntry{}, false, fmt.Errorf("cannot select row: %w", err)
	}

	return tracelib.CacheEntryFromRow(lat, lng, isPrivate), true, nil
}

func (p *PostgresStore) Put(ctx context.Context, address string, entry tracelib.CacheEntry) error {
	if err := p.ensureTable(ctx); err != nil {
		return err
	}

	lat, lng, isPrivate := entry.Row()

	if _, err := p.conn.Exec(ctx, postgresUpsertRow, address, lat, lng, isPrivate); err != nil {
		return fmt.Errorf("cannot upsert row: %w", err)
	}

	return nil
}

func (p *PostgresStore) Close() {
	if p.close != nil {
		p.close()
	}
}

func (p *PostgresStore) ensureTable(ctx context.Context) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ensured {
		return nil
	}

	if _, err := p.conn.Exec(ctx, postgresCreateTable); err != nil {
		return fmt.Errorf("cannot create table: %w", err)
	}

	p.ensured = true

	return nil
}

// NewPostgresStore connects to the database with a given connection
// string.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	var pool *pgxpool.Pool

	connect := func() error {
		conn, err := pgxpool.ConnectConfig(ctx, poolConfig)
		if err != nil {
			return err
		}

		pool = conn

		return nil
	}

	strategy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(postgresConnectInitialInterval),
				backoff.WithMaxInterval(postgresConnectMaxInterval)),
			postgresConnectRetries),
		ctx)

	if err := backoff.Retry(connect, strategy); err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	return &PostgresStore{
		conn:  pool,
		close: pool.Close,
	}, nil
}

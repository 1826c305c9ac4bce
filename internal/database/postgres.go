package database

import (
	"context"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PgConn is a pooled Postgres connection satisfying Queryable.
type PgConn struct {
	pool *pgxpool.Pool
}

// ConnectPostgres connects to Postgres with the given settings.
func ConnectPostgres(ctx context.Context, settings config.Postgres) (*PgConn, error) {
	pool, err := pgxpool.Connect(ctx, settings.URL())

	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, err
	}

	return &PgConn{pool: pool}, nil
}

// Close closes every connection in the pool.
func (conn *PgConn) Close() error {
	conn.pool.Close()

	return nil
}

// Exec executes a database query.
func (conn *PgConn) Exec(ctx context.Context, sql string, arguments ...any) error {
	_, err := conn.pool.Exec(ctx, sql, arguments...)

	return err
}

// Query executes a database query.
func (conn *PgConn) Query(ctx context.Context, sql string, arguments ...any) (Rows, error) {
	rows, err := conn.pool.Query(ctx, sql, arguments...)

	if err != nil {
		return nil, err
	}

	return pgRows{rows}, nil
}

// QueryRow executes a database query returning Row data.
func (conn *PgConn) QueryRow(ctx context.Context, sql string, arguments ...any) Row {
	return conn.pool.QueryRow(ctx, sql, arguments...)
}

// pgRows adapts pgx.Rows, whose Close returns nothing.
type pgRows struct {
	rows pgx.Rows
}

func (r pgRows) Next() bool             { return r.rows.Next() }
func (r pgRows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r pgRows) Err() error             { return r.rows.Err() }

func (r pgRows) Close() error {
	r.rows.Close()

	return nil
}

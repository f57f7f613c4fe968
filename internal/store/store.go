// Package store is the relational data access layer. It exposes a small
// parametrised facade (Query, Update, Insert) plus typed fetches for the
// joins the renderers need, all over one pooled connection.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"madaris/internal/config"
)

// DB wraps the pooled connection. All methods are safe for concurrent use.
type DB struct {
	conn *sqlx.DB
	log  *slog.Logger
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DBConfig) (*DB, error) {
	conn, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &DB{
		conn: conn,
		log:  slog.Default().With("component", "store"),
	}, nil
}

// NewFromConn wraps an existing connection; tests use this with a mock.
func NewFromConn(conn *sqlx.DB) *DB {
	return &DB{conn: conn, log: slog.Default().With("component", "store")}
}

func (d *DB) Close() error {
	return d.conn.Close()
}

// Query runs a parametrised SELECT and returns the rows as maps keyed by
// column name. Screens that build their own SQL go through here.
func (d *DB) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := d.conn.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Update runs a parametrised UPDATE or DELETE and returns the affected
// row count.
func (d *DB) Update(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := d.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// Insert runs a parametrised INSERT and returns the new row id. The
// statement must end with RETURNING id.
func (d *DB) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := d.conn.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	return id, nil
}

// WithTx runs fn inside one transaction. Any error rolls everything back;
// multi-statement writes never partially apply.
func (d *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.log.Error("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

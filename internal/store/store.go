// Package store persists flatten runs and their output rows in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tbraaten/orderflat/internal/flatten"
)

// ErrRunNotFound is returned when a run ID has no stored summary.
var ErrRunNotFound = errors.New("run not found")

// Run is the stored summary of one flatten invocation.
type Run struct {
	ID         uuid.UUID `json:"run_id"`
	OrdersFile string    `json:"orders_file"`
	RosterFile string    `json:"roster_file"`
	Rows       int       `json:"rows"`
	Skipped    int       `json:"skipped"`
	Failures   []string  `json:"failures"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Init creates the schema if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS flatten_runs (
	id          uuid PRIMARY KEY,
	orders_file text NOT NULL,
	roster_file text NOT NULL,
	row_count   integer NOT NULL,
	skipped     integer NOT NULL,
	failures    text[] NOT NULL DEFAULT '{}',
	created_at  timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS flat_rows (
	run_id                       uuid NOT NULL REFERENCES flatten_runs(id) ON DELETE CASCADE,
	position                     integer NOT NULL,
	customer_id                  bigint NOT NULL,
	customer_name                text NOT NULL,
	registration_date            date,
	is_vip                       boolean NOT NULL,
	order_id                     bigint NOT NULL,
	order_date                   date,
	product_id                   bigint NOT NULL,
	product_name                 text NOT NULL,
	category                     text NOT NULL,
	unit_price                   double precision NOT NULL,
	item_quantity                bigint NOT NULL,
	total_item_price             double precision NOT NULL,
	total_order_value_percentage double precision NOT NULL,
	PRIMARY KEY (run_id, position)
);`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// copyColumns lists flat_rows columns in the order copyRow produces values.
var copyColumns = []string{
	"run_id", "position",
	"customer_id", "customer_name", "registration_date", "is_vip",
	"order_id", "order_date",
	"product_id", "product_name", "category", "unit_price", "item_quantity",
	"total_item_price", "total_order_value_percentage",
}

func copyRow(runID uuid.UUID, position int, r flatten.FlatRow) []any {
	return []any{
		runID, position,
		r.CustomerID, r.CustomerName, r.RegistrationDate, r.IsVIP,
		r.OrderID, r.OrderDate,
		r.ProductID, r.ProductName, r.Category, r.UnitPrice, r.ItemQuantity,
		r.TotalItemPrice, r.TotalOrderValuePercentage,
	}
}

// SaveRun stores the run summary and bulk-inserts its rows via the COPY
// protocol inside one transaction. Either everything lands or nothing does.
func (s *Store) SaveRun(ctx context.Context, run Run, rows []flatten.FlatRow) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	_, err = tx.Exec(ctx,
		`INSERT INTO flatten_runs (id, orders_file, roster_file, row_count, skipped, failures, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, run.OrdersFile, run.RosterFile, run.Rows, run.Skipped, run.Failures, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting run summary: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"flat_rows"},
		copyColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return copyRow(run.ID, i, rows[i]), nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

// GetRun returns the stored summary for a run ID.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	var run Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, orders_file, roster_file, row_count, skipped, failures, created_at
		 FROM flatten_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.OrdersFile, &run.RosterFile, &run.Rows, &run.Skipped, &run.Failures, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, orders_file, roster_file, row_count, skipped, failures, created_at
		 FROM flatten_runs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.OrdersFile, &run.RosterFile, &run.Rows, &run.Skipped, &run.Failures, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunRows returns a run's flat rows in their original emission order.
func (s *Store) RunRows(ctx context.Context, id uuid.UUID) ([]flatten.FlatRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT customer_id, customer_name, registration_date, is_vip,
		        order_id, order_date,
		        product_id, product_name, category, unit_price, item_quantity,
		        total_item_price, total_order_value_percentage
		 FROM flat_rows WHERE run_id = $1 ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	var out []flatten.FlatRow
	for rows.Next() {
		var r flatten.FlatRow
		err := rows.Scan(
			&r.CustomerID, &r.CustomerName, &r.RegistrationDate, &r.IsVIP,
			&r.OrderID, &r.OrderDate,
			&r.ProductID, &r.ProductName, &r.Category, &r.UnitPrice, &r.ItemQuantity,
			&r.TotalItemPrice, &r.TotalOrderValuePercentage,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

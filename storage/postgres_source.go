package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"listings-aggregator/models"
	"listings-aggregator/utils"
)

const selectProperties = `
	SELECT location, type, price, size
	FROM properties
	ORDER BY id
`

// PostgresSource reads seed listings from an existing properties table.
// It never writes.
type PostgresSource struct {
	db *sql.DB
}

// NewPostgresSource opens a connection to PostgreSQL and waits for it to
// answer a ping, retrying with back-off.
func NewPostgresSource(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", func() error {
		return db.PingContext(ctx)
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &PostgresSource{db: db}, nil
}

// Load returns every stored property in insertion order.
func (ps *PostgresSource) Load(ctx context.Context) ([]models.Property, error) {
	rows, err := ps.db.QueryContext(ctx, selectProperties)
	if err != nil {
		return nil, fmt.Errorf("postgres: load: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

func (ps *PostgresSource) Close() error {
	return ps.db.Close()
}

// rowScanner is the part of *sql.Rows that scanProperties needs.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProperties(rows rowScanner) ([]models.Property, error) {
	listings := make([]models.Property, 0)
	for rows.Next() {
		var p models.Property
		if err := rows.Scan(&p.Location, &p.Type, &p.Price, &p.Size); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, p)
	}
	return listings, rows.Err()
}

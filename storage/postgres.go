package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// rawColumns are the text columns of the raw listings table, in insert order.
var rawColumns = []string{
	"listing_id", "name", "host_name", "neighbourhood_group", "neighbourhood",
	"latitude", "longitude", "room_type", "price", "number_of_reviews",
	"last_review", "availability_365",
}

const insertBatchSize = 50

// openPostgres opens a pool and waits for the server with exponential back-off.
func openPostgres(ctx context.Context, dsn string, retry *utils.RetryConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return db, nil
}

// PostgresWriter seeds the raw listings table that PostgresSource reads from.
type PostgresWriter struct {
	db    *sql.DB
	table string
}

// NewPostgresWriter connects to PostgreSQL, creates the raw table if needed and
// returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresWriter, error) {
	db, err := openPostgres(ctx, dsn, retry)
	if err != nil {
		return nil, err
	}
	pw := &PostgresWriter{db: db, table: table}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func createTableSQL(table string) string {
	t := pq.QuoteIdentifier(table)
	cols := make([]string, 0, len(rawColumns))
	for _, c := range rawColumns {
		cols = append(cols, "\t\t\t"+c+" TEXT NOT NULL DEFAULT ''")
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			row_id      SERIAL PRIMARY KEY,
%s,
			imported_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`, t, strings.Join(cols, ",\n"))
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, createTableSQL(pw.table))
	return err
}

// WriteRaw replaces the table contents with listings, in batches, inside one
// transaction.
func (pw *PostgresWriter) WriteRaw(ctx context.Context, listings []*models.RawListing) error {
	if len(listings) == 0 {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+pq.QuoteIdentifier(pw.table)); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(listings); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(listings) {
			end = len(listings)
		}
		batch := listings[i:end]
		if _, err := tx.ExecContext(ctx, insertSQL(pw.table, len(batch)), insertArgs(batch)...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// insertSQL builds a multi-row INSERT for n rows.
func insertSQL(table string, n int) string {
	width := len(rawColumns)
	valueStrings := make([]string, 0, n)
	for row := 0; row < n; row++ {
		ph := make([]string, width)
		for c := 0; c < width; c++ {
			ph[c] = "$" + strconv.Itoa(row*width+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		pq.QuoteIdentifier(table), strings.Join(rawColumns, ", "), strings.Join(valueStrings, ","))
}

func insertArgs(batch []*models.RawListing) []any {
	args := make([]any, 0, len(batch)*len(rawColumns))
	for _, l := range batch {
		args = append(args,
			l.ID, l.Name, l.HostName, l.NeighbourhoodGroup, l.Neighbourhood,
			l.Latitude, l.Longitude, l.RoomType, l.Price, l.NumberOfReviews,
			l.LastReview, l.Availability365)
	}
	return args
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// PostgresSource reads raw listings from a table seeded by PostgresWriter.
type PostgresSource struct {
	db    *sql.DB
	table string
}

// NewPostgresSource connects to PostgreSQL. The table is not checked until
// Identity or ReadAll is called.
func NewPostgresSource(ctx context.Context, dsn, table string, retry *utils.RetryConfig) (*PostgresSource, error) {
	db, err := openPostgres(ctx, dsn, retry)
	if err != nil {
		return nil, err
	}
	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) exists(ctx context.Context) error {
	var name sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT to_regclass($1)::text", s.table).Scan(&name); err != nil {
		return fmt.Errorf("postgres: lookup table %q: %w", s.table, err)
	}
	if !name.Valid {
		return fmt.Errorf("postgres: table %q: %w", s.table, ErrNotFound)
	}
	return nil
}

// Identity versions the table by row count, highest row id and last import time.
func (s *PostgresSource) Identity(ctx context.Context) (SourceIdentity, error) {
	if err := s.exists(ctx); err != nil {
		return SourceIdentity{}, err
	}
	var (
		count, maxID int64
		imported     sql.NullTime
	)
	q := fmt.Sprintf("SELECT COUNT(*), COALESCE(MAX(row_id), 0), MAX(imported_at) FROM %s", pq.QuoteIdentifier(s.table))
	if err := s.db.QueryRowContext(ctx, q).Scan(&count, &maxID, &imported); err != nil {
		return SourceIdentity{}, fmt.Errorf("postgres: identity: %w", err)
	}
	version := fmt.Sprintf("%d-%d", count, maxID)
	if imported.Valid {
		version += "-" + imported.Time.UTC().Format(time.RFC3339Nano)
	}
	return SourceIdentity{Kind: "postgres", Location: s.table, Version: version}, nil
}

func (s *PostgresSource) ReadAll(ctx context.Context) ([]*models.RawListing, error) {
	if err := s.exists(ctx); err != nil {
		return nil, err
	}
	q := fmt.Sprintf("SELECT %s FROM %s ORDER BY row_id", strings.Join(rawColumns, ", "), pq.QuoteIdentifier(s.table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.RawListing
	for rows.Next() {
		l := &models.RawListing{}
		if err := rows.Scan(
			&l.ID, &l.Name, &l.HostName, &l.NeighbourhoodGroup, &l.Neighbourhood,
			&l.Latitude, &l.Longitude, &l.RoomType, &l.Price, &l.NumberOfReviews,
			&l.LastReview, &l.Availability365,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresSource) Close() error {
	return s.db.Close()
}

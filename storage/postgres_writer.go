package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"review-harvester/models"
	"review-harvester/utils"
)

// PostgresWriter persists harvested reviews to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter. Connection retries stop as soon
// as ctx is cancelled.
func NewPostgresWriter(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id          SERIAL PRIMARY KEY,
			source      VARCHAR(50) NOT NULL,
			title       TEXT        NOT NULL DEFAULT '',
			body        TEXT        NOT NULL,
			review_date DATE        NOT NULL,
			rating      TEXT,
			dedup_key   CHAR(40)    UNIQUE NOT NULL,
			scraped_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_source ON reviews(source);
		CREATE INDEX IF NOT EXISTS idx_reviews_date   ON reviews(review_date);
	`)
	return err
}

// Write batch-inserts the reviews. Re-running a harvest is idempotent: rows
// whose dedup key already exists are skipped.
func (pw *PostgresWriter) Write(reviews []*models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(reviews); i += batchSize {
		end := i + batchSize
		if end > len(reviews) {
			end = len(reviews)
		}
		if err := pw.insertBatch(reviews[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Review) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*6)

	for idx, r := range batch {
		base := idx * 6
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))

		date := r.Date.Format("2006-01-02")
		key := utils.Key(string(r.Source), date, r.Body)
		valueArgs = append(valueArgs,
			string(r.Source), r.Title, r.Body, date, r.Rating, key)
	}

	query := fmt.Sprintf(`
		INSERT INTO reviews (source, title, body, review_date, rating, dedup_key)
		VALUES %s
		ON CONFLICT (dedup_key) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored reviews ordered by date, newest first.
func (pw *PostgresWriter) FetchAll() ([]*models.Review, error) {
	rows, err := pw.db.Query(`
		SELECT source, title, body, review_date, rating
		FROM reviews
		ORDER BY review_date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var reviews []*models.Review
	for rows.Next() {
		r := &models.Review{}
		var date time.Time
		if err := rows.Scan(&r.Source, &r.Title, &r.Body, &date, &r.Rating); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		r.Date = models.DateOf(date)
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

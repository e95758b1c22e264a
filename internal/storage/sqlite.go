package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Skufu/triage/internal/consult"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    fullname TEXT,
    datetime TEXT,
    age TEXT,
    symptoms TEXT,
    condition TEXT,
    urgency TEXT,
    advice TEXT
)`

type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between concurrent requests.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create logs table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, r consult.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logs (fullname, datetime, age, symptoms, condition, urgency, advice) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.FullName, r.Timestamp, r.Age, r.Symptoms, r.Condition, string(r.Urgency), r.Advice)
	if err != nil {
		return fmt.Errorf("insert log row: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]consult.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(fullname, ''), COALESCE(datetime, ''), COALESCE(age, ''), COALESCE(symptoms, ''),
		        COALESCE(condition, ''), COALESCE(urgency, ''), COALESCE(advice, '')
		   FROM logs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var out []consult.Record
	for rows.Next() {
		var (
			r       consult.Record
			urgency string
		)
		if err := rows.Scan(&r.ID, &r.FullName, &r.Timestamp, &r.Age, &r.Symptoms, &r.Condition, &urgency, &r.Advice); err != nil {
			return nil, fmt.Errorf("scan log row: %w", err)
		}
		r.Urgency = consult.Urgency(urgency)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	_ = s.db.Close()
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/triage/internal/consult"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS logs (
    id BIGSERIAL PRIMARY KEY,
    fullname TEXT,
    datetime TEXT,
    age TEXT,
    symptoms TEXT,
    condition TEXT,
    urgency TEXT,
    advice TEXT
)`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create logs table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, r consult.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO logs (fullname, datetime, age, symptoms, condition, urgency, advice) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.FullName, r.Timestamp, r.Age, r.Symptoms, r.Condition, string(r.Urgency), r.Advice)
	if err != nil {
		return fmt.Errorf("insert log row: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]consult.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, COALESCE(fullname, ''), COALESCE(datetime, ''), COALESCE(age, ''), COALESCE(symptoms, ''),
		        COALESCE(condition, ''), COALESCE(urgency, ''), COALESCE(advice, '')
		   FROM logs ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (consult.Record, error) {
		var (
			r       consult.Record
			urgency string
		)
		err := row.Scan(&r.ID, &r.FullName, &r.Timestamp, &r.Age, &r.Symptoms, &r.Condition, &urgency, &r.Advice)
		r.Urgency = consult.Urgency(urgency)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan log rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

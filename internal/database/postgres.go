package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"stegguard/internal/models"
)

// ErrRecordNotFound is returned when no embed record matches a lookup.
var ErrRecordNotFound = errors.New("record not found")

const schema = `
CREATE TABLE IF NOT EXISTS embed_history (
	id           UUID PRIMARY KEY,
	algorithm    TEXT        NOT NULL,
	filename     TEXT        NOT NULL,
	carrier_md5  TEXT        NOT NULL,
	stego_md5    TEXT        NOT NULL,
	payload_md5  TEXT        NOT NULL,
	payload_size BIGINT      NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS embed_history_stego_md5_idx ON embed_history (stego_md5);
`

// HistoryStore records embed operations in Postgres.
type HistoryStore struct {
	DB *pgxpool.Pool
}

// Connect opens a tuned connection pool, verifies it and makes sure the
// history table exists.
func Connect(ctx context.Context, databaseURL string) (*HistoryStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.ConnectConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Println("Database pool created successfully.")
	return &HistoryStore{DB: pool}, nil
}

// Close releases the pool.
func (s *HistoryStore) Close() {
	s.DB.Close()
}

// InsertEmbed stores a new embed record.
func (s *HistoryStore) InsertEmbed(ctx context.Context, rec *models.EmbedRecord) error {
	_, err := s.DB.Exec(
		ctx,
		`INSERT INTO embed_history (id, algorithm, filename, carrier_md5, stego_md5, payload_md5, payload_size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID,
		rec.Algorithm,
		rec.Filename,
		rec.CarrierMD5,
		rec.StegoMD5,
		rec.PayloadMD5,
		rec.PayloadSize,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("db error inserting embed record: %w", err)
	}
	return nil
}

// GetEmbed loads one record by id.
func (s *HistoryStore) GetEmbed(ctx context.Context, id uuid.UUID) (*models.EmbedRecord, error) {
	row := s.DB.QueryRow(
		ctx,
		`SELECT id, algorithm, filename, carrier_md5, stego_md5, payload_md5, payload_size, created_at
		 FROM embed_history WHERE id = $1`,
		id,
	)
	rec, err := scanRecord(row)
	if err == pgx.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error loading embed record: %w", err)
	}
	return rec, nil
}

// FindByStegoMD5 returns the records whose output image had the given MD5, newest first.
func (s *HistoryStore) FindByStegoMD5(ctx context.Context, md5 string) ([]models.EmbedRecord, error) {
	rows, err := s.DB.Query(
		ctx,
		`SELECT id, algorithm, filename, carrier_md5, stego_md5, payload_md5, payload_size, created_at
		 FROM embed_history WHERE stego_md5 = $1 ORDER BY created_at DESC`,
		md5,
	)
	if err != nil {
		return nil, fmt.Errorf("db error querying embed records: %w", err)
	}
	defer rows.Close()

	records := make([]models.EmbedRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("db error scanning embed record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*models.EmbedRecord, error) {
	var rec models.EmbedRecord
	var size int64
	err := row.Scan(
		&rec.ID,
		&rec.Algorithm,
		&rec.Filename,
		&rec.CarrierMD5,
		&rec.StegoMD5,
		&rec.PayloadMD5,
		&size,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.PayloadSize = int(size)
	return &rec, nil
}

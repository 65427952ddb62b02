package repository

import (
	"context"
	"database/sql"
	"fmt"

	"envdashboard/services/dashboard-cli/internal/models"
)

// RecordArchive keeps a local copy of fetched data records in Postgres.
type RecordArchive struct {
	db *sql.DB
}

// NewRecordArchive returns archive.
func NewRecordArchive(db *sql.DB) *RecordArchive {
	return &RecordArchive{db: db}
}

// EnsureSchema creates the archive table if missing.
func (r *RecordArchive) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS envmon_records (
			id          BIGINT PRIMARY KEY,
			sensor_id   BIGINT NOT NULL,
			value       DOUBLE PRECISION,
			recorded_at TIMESTAMPTZ,
			created_at  TIMESTAMPTZ,
			archived_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS envmon_records_sensor_idx ON envmon_records (sensor_id, recorded_at)`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("archive: schema: %w", err)
		}
	}
	return nil
}

// SaveRecords upserts records by id in one transaction and returns how many were written.
// Records without an id are skipped.
func (r *RecordArchive) SaveRecords(ctx context.Context, records []models.DataRecord) (int, error) {
	const query = `
		INSERT INTO envmon_records (id, sensor_id, value, recorded_at, created_at, archived_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			sensor_id = EXCLUDED.sensor_id,
			value = EXCLUDED.value,
			recorded_at = EXCLUDED.recorded_at,
			created_at = EXCLUDED.created_at,
			archived_at = NOW()
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("archive: prepare: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, rec := range records {
		if rec.ID == 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx, int64(rec.ID), int64(rec.SensorID), rec.Value, rec.Time, rec.CreatedAt); err != nil {
			return 0, fmt.Errorf("archive: record %d: %w", rec.ID, err)
		}
		written++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("archive: commit: %w", err)
	}
	return written, nil
}

// CountBySensor returns archived record counts keyed by sensor id.
func (r *RecordArchive) CountBySensor(ctx context.Context) (map[uint]int64, error) {
	const query = `
		SELECT sensor_id, COUNT(*)
		FROM envmon_records
		GROUP BY sensor_id
		ORDER BY sensor_id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uint]int64)
	for rows.Next() {
		var (
			sensorID int64
			n        int64
		)
		if err := rows.Scan(&sensorID, &n); err != nil {
			return nil, err
		}
		counts[uint(sensorID)] = n
	}
	return counts, rows.Err()
}

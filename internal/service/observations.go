package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joeblew999/plat-lakemap/internal/mapview"
)

// ObservationSource is the read side of the observation store used by the
// viewer feed and the API.
type ObservationSource interface {
	Find(ctx context.Context, f ObservationFilter) ([]mapview.Observation, error)
	Dates(ctx context.Context) ([]DateCount, error)
}

const observationsSchema = `
CREATE TABLE IF NOT EXISTS observations (
	id          BIGINT PRIMARY KEY,
	location    VARCHAR NOT NULL,
	latitude    DOUBLE NOT NULL,
	longitude   DOUBLE NOT NULL,
	day         VARCHAR NOT NULL,
	operator    VARCHAR,
	description VARCHAR,
	level       INTEGER,
	upkeep      VARCHAR,
	region_id   VARCHAR
)`

// ObservationStore keeps observations in DuckDB.
type ObservationStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewObservationStore creates the observations table if needed.
func NewObservationStore(ctx context.Context, db *sql.DB, logger *slog.Logger) (*ObservationStore, error) {
	if db == nil {
		return nil, errors.New("observation store: nil database")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.ExecContext(ctx, observationsSchema); err != nil {
		return nil, fmt.Errorf("creating observations table: %w", err)
	}
	return &ObservationStore{db: db, logger: logger}, nil
}

// Upsert writes observations, replacing rows with the same id.
func (s *ObservationStore) Upsert(ctx context.Context, obs []mapview.Observation) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO observations
		(id, location, latitude, longitude, day, operator, description, level, upkeep, region_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		var level sql.NullInt64
		if o.Level != nil {
			level = sql.NullInt64{Int64: int64(*o.Level), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			o.ID, o.Location, o.Latitude, o.Longitude, o.Date,
			nullString(o.Operator), nullString(o.Description), level, nullString(o.Upkeep), nullString(o.RegionID),
		); err != nil {
			return 0, fmt.Errorf("upsert observation %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit upsert: %w", err)
	}
	return len(obs), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Find returns observations matching f, ordered by id.
func (s *ObservationStore) Find(ctx context.Context, f ObservationFilter) ([]mapview.Observation, error) {
	var (
		where []string
		args  []any
	)
	if f.Date != "" {
		where = append(where, "day = ?")
		args = append(args, f.Date)
	}
	if f.RegionID != "" {
		where = append(where, "region_id = ?")
		args = append(args, f.RegionID)
	}

	query := `SELECT id, location, latitude, longitude, day, operator, description, level, upkeep, region_id
		FROM observations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	out := []mapview.Observation{}
	for rows.Next() {
		var (
			o                                      mapview.Observation
			operator, description, upkeep, region sql.NullString
			level                                  sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.Location, &o.Latitude, &o.Longitude, &o.Date,
			&operator, &description, &level, &upkeep, &region); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		o.Operator = operator.String
		o.Description = description.String
		o.Upkeep = upkeep.String
		o.RegionID = region.String
		if level.Valid {
			v := int(level.Int64)
			o.Level = &v
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Dates returns the observation date index, oldest first.
func (s *ObservationStore) Dates(ctx context.Context) ([]DateCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT day, count(*) FROM observations GROUP BY day ORDER BY day`)
	if err != nil {
		return nil, fmt.Errorf("querying observation dates: %w", err)
	}
	defer rows.Close()

	out := []DateCount{}
	for rows.Next() {
		var dc DateCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scanning observation date: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// Count returns the number of stored observations.
func (s *ObservationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM observations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting observations: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *ObservationStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

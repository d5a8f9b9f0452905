// Package storage is the Postgres collaborator for lodstream. It owns the
// metadata tables the streaming server reads, issues the post-load schema
// statements, and exposes per-dataset sessions used by the hierarchy
// builders.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/banshee-data/lodstream/internal/config"
)

// identPattern is the only shape accepted for schema, table and column
// names before they are interpolated into DDL. Values always travel as
// bound parameters; identifiers cannot, so they are validated instead.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidIdent reports whether s is a safe SQL identifier.
func ValidIdent(s string) bool {
	return identPattern.MatchString(s)
}

// QualifiedTable validates a schema-qualified table name of the form
// schema.table and returns its two parts.
func QualifiedTable(table string) (schema, tab string, err error) {
	i := strings.IndexByte(table, '.')
	if i < 0 {
		return "", "", fmt.Errorf("table %q is not schema-qualified", table)
	}
	schema, tab = table[:i], table[i+1:]
	if !ValidIdent(schema) || !ValidIdent(tab) {
		return "", "", fmt.Errorf("table %q contains invalid identifier characters", table)
	}
	return schema, tab, nil
}

// Store wraps the Postgres connection.
type Store struct {
	*sql.DB

	dsn string
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.DBName, err)
	}
	return &Store{DB: db, dsn: cfg.DSN()}, nil
}

// CreateMetadataTable creates the lodstream metadata tables if they do not
// exist yet. Safe to call on every run.
func (s *Store) CreateMetadataTable(ctx context.Context) error {
	_, err := s.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lodstream_pointclouds (
			tablename     TEXT,
			columnname    TEXT,
			srid          TEXT,
			scale_x       DOUBLE PRECISION,
			scale_y       DOUBLE PRECISION,
			scale_z       DOUBLE PRECISION,
			offset_x      DOUBLE PRECISION,
			offset_y      DOUBLE PRECISION,
			offset_z      DOUBLE PRECISION,
			updated_at    TIMESTAMPTZ DEFAULT now(),
			PRIMARY KEY (tablename, columnname)
		);
		CREATE TABLE IF NOT EXISTS lodstream_output_schemas (
			tablename     TEXT,
			columnname    TEXT,
			srid          TEXT,
			scale_x       DOUBLE PRECISION,
			scale_y       DOUBLE PRECISION,
			scale_z       DOUBLE PRECISION,
			offset_x      DOUBLE PRECISION,
			offset_y      DOUBLE PRECISION,
			offset_z      DOUBLE PRECISION,
			point_schema  TEXT,
			PRIMARY KEY (tablename, columnname)
		);
		CREATE TABLE IF NOT EXISTS lodstream_loads (
			load_id       TEXT PRIMARY KEY,
			tablename     TEXT,
			columnname    TEXT,
			source_file   TEXT,
			format        TEXT,
			num_points    BIGINT,
			srid          TEXT,
			duration_ms   BIGINT,
			loaded_at     TIMESTAMPTZ DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create metadata tables: %w", err)
	}
	return nil
}

// Execute runs a block of statements verbatim. Used for the post-load
// index and morton-column block, whose identifiers are validated by the
// caller before assembly.
func (s *Store) Execute(ctx context.Context, statements string) error {
	if _, err := s.ExecContext(ctx, statements); err != nil {
		return fmt.Errorf("statement block failed: %w", err)
	}
	return nil
}

// UpdateMetadata upserts the quantization parameters and SRID for a loaded
// dataset.
func (s *Store) UpdateMetadata(ctx context.Context, table, column, srid string,
	scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ float64) error {

	_, err := s.ExecContext(ctx, `
		INSERT INTO lodstream_pointclouds
			(tablename, columnname, srid, scale_x, scale_y, scale_z, offset_x, offset_y, offset_z, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (tablename, columnname) DO UPDATE SET
			srid = EXCLUDED.srid,
			scale_x = EXCLUDED.scale_x, scale_y = EXCLUDED.scale_y, scale_z = EXCLUDED.scale_z,
			offset_x = EXCLUDED.offset_x, offset_y = EXCLUDED.offset_y, offset_z = EXCLUDED.offset_z,
			updated_at = now()`,
		table, column, srid, scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ)
	if err != nil {
		return fmt.Errorf("failed to update metadata for %s.%s: %w", table, column, err)
	}
	return nil
}

// AddOutputSchema upserts the fixed output schema record a downstream
// streaming client consumes. Its scales are decoupled from the ingestion
// quantization on purpose.
func (s *Store) AddOutputSchema(ctx context.Context, table, column string,
	scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ float64,
	srid, pointSchema string) error {

	_, err := s.ExecContext(ctx, `
		INSERT INTO lodstream_output_schemas
			(tablename, columnname, srid, scale_x, scale_y, scale_z, offset_x, offset_y, offset_z, point_schema)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (tablename, columnname) DO UPDATE SET
			srid = EXCLUDED.srid,
			scale_x = EXCLUDED.scale_x, scale_y = EXCLUDED.scale_y, scale_z = EXCLUDED.scale_z,
			offset_x = EXCLUDED.offset_x, offset_y = EXCLUDED.offset_y, offset_z = EXCLUDED.offset_z,
			point_schema = EXCLUDED.point_schema`,
		table, column, srid, scaleX, scaleY, scaleZ, offsetX, offsetY, offsetZ, pointSchema)
	if err != nil {
		return fmt.Errorf("failed to add output schema for %s.%s: %w", table, column, err)
	}
	return nil
}

// LoadRecord is one row of the load journal.
type LoadRecord struct {
	ID         string        `json:"id"`
	Table      string        `json:"table"`
	Column     string        `json:"column"`
	SourceFile string        `json:"source_file"`
	Format     string        `json:"format"`
	NumPoints  int64         `json:"num_points"`
	SRID       string        `json:"srid"`
	Duration   time.Duration `json:"duration_ms"`
	LoadedAt   time.Time     `json:"loaded_at"`
}

// RecordLoad appends a row to the load journal.
func (s *Store) RecordLoad(ctx context.Context, r LoadRecord) error {
	_, err := s.ExecContext(ctx, `
		INSERT INTO lodstream_loads
			(load_id, tablename, columnname, source_file, format, num_points, srid, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Table, r.Column, r.SourceFile, r.Format, r.NumPoints, r.SRID, r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record load: %w", err)
	}
	return nil
}

// PointcloudMetadata is one row of lodstream_pointclouds.
type PointcloudMetadata struct {
	Table   string    `json:"table"`
	Column  string    `json:"column"`
	SRID    string    `json:"srid"`
	ScaleX  float64   `json:"scale_x"`
	ScaleY  float64   `json:"scale_y"`
	ScaleZ  float64   `json:"scale_z"`
	OffsetX float64   `json:"offset_x"`
	OffsetY float64   `json:"offset_y"`
	OffsetZ float64   `json:"offset_z"`
	Updated time.Time `json:"updated_at"`
}

// ListPointclouds returns the metadata for every loaded dataset.
func (s *Store) ListPointclouds(ctx context.Context) ([]PointcloudMetadata, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT tablename, columnname, srid,
		       scale_x, scale_y, scale_z, offset_x, offset_y, offset_z, updated_at
		FROM lodstream_pointclouds ORDER BY tablename, columnname`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pointclouds: %w", err)
	}
	defer rows.Close()

	var out []PointcloudMetadata
	for rows.Next() {
		var m PointcloudMetadata
		if err := rows.Scan(&m.Table, &m.Column, &m.SRID,
			&m.ScaleX, &m.ScaleY, &m.ScaleZ,
			&m.OffsetX, &m.OffsetY, &m.OffsetZ, &m.Updated); err != nil {
			return nil, fmt.Errorf("failed to scan pointcloud row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListLoads returns the load journal, newest first.
func (s *Store) ListLoads(ctx context.Context) ([]LoadRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT load_id, tablename, columnname, source_file, format, num_points, srid, duration_ms, loaded_at
		FROM lodstream_loads ORDER BY loaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list loads: %w", err)
	}
	defer rows.Close()

	var out []LoadRecord
	for rows.Next() {
		var r LoadRecord
		var ms int64
		if err := rows.Scan(&r.ID, &r.Table, &r.Column, &r.SourceFile,
			&r.Format, &r.NumPoints, &r.SRID, &ms, &r.LoadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan load row: %w", err)
		}
		r.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Package opsim reads visits from survey-simulator (opsim) output databases.
//
// An opsim database is a SQLite file with an "observations" table holding one
// row per visit. Only the columns needed to draw visit footprints are read.
package opsim

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/matzehuels/skyproj/pkg/errors"
)

// Visit is a single pointing of the telescope. Angles are in degrees.
type Visit struct {
	ObservationID int64
	FieldRA       float64
	FieldDec      float64
	RotSkyPos     float64
	MJD           float64
	Band          string
}

// Query selects visits. Where is an SQL boolean expression over the columns
// of the observations table, without the WHERE keyword. Limit <= 0 means no
// limit.
type Query struct {
	Where string
	Limit int
}

const schema = `
CREATE TABLE IF NOT EXISTS observations (
    observationId       INTEGER PRIMARY KEY,
    fieldRA             REAL NOT NULL,
    fieldDec            REAL NOT NULL,
    rotSkyPos           REAL NOT NULL DEFAULT 0,
    observationStartMJD REAL NOT NULL,
    band                TEXT NOT NULL DEFAULT '',
    night               INTEGER NOT NULL DEFAULT 0
);
`

// DB is an open opsim database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens an existing opsim database for reading.
func Open(ctx context.Context, path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "opsim database %s", path)
		}
		return nil, fmt.Errorf("opsim: stat %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opsim: open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opsim: open database: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Create creates (or opens) a database at path and ensures the observations
// table exists.
func Create(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opsim: open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("opsim: create schema: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Path returns the file the database was opened from.
func (d *DB) Path() string { return d.path }

// Visits returns the visits matching q, ordered by start time.
func (d *DB) Visits(ctx context.Context, q Query) ([]Visit, error) {
	if err := errors.ValidateWhereClause(q.Where); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(`SELECT observationId, fieldRA, fieldDec, rotSkyPos, observationStartMJD, band FROM observations`)
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	b.WriteString(" ORDER BY observationStartMJD")
	var args []any
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := d.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("opsim: query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		if err := rows.Scan(&v.ObservationID, &v.FieldRA, &v.FieldDec, &v.RotSkyPos, &v.MJD, &v.Band); err != nil {
			return nil, fmt.Errorf("opsim: scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("opsim: iterate visits: %w", err)
	}
	return visits, nil
}

// Insert writes visits in a single transaction, replacing rows with the same
// observation ID.
func (d *DB) Insert(ctx context.Context, visits []Visit) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("opsim: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO observations
		    (observationId, fieldRA, fieldDec, rotSkyPos, observationStartMJD, band)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("opsim: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range visits {
		if _, err := stmt.ExecContext(ctx, v.ObservationID, v.FieldRA, v.FieldDec, v.RotSkyPos, v.MJD, v.Band); err != nil {
			return fmt.Errorf("opsim: insert visit %d: %w", v.ObservationID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("opsim: commit: %w", err)
	}
	return nil
}

// Columns splits visits into the per-column slices expected by footprint
// functions.
func Columns(visits []Visit) (ra, decl, rotSkyPos []float64) {
	ra = make([]float64, len(visits))
	decl = make([]float64, len(visits))
	rotSkyPos = make([]float64, len(visits))
	for i, v := range visits {
		ra[i], decl[i], rotSkyPos[i] = v.FieldRA, v.FieldDec, v.RotSkyPos
	}
	return ra, decl, rotSkyPos
}

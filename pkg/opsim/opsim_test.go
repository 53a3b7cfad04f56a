package opsim

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matzehuels/skyproj/pkg/errors"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "baseline.db")

	db, err := Create(ctx, path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	visits := []Visit{
		{ObservationID: 3, FieldRA: 30, FieldDec: -20, RotSkyPos: 10, MJD: 60000.3, Band: "i"},
		{ObservationID: 1, FieldRA: 10, FieldDec: -10, RotSkyPos: 0, MJD: 60000.1, Band: "r"},
		{ObservationID: 2, FieldRA: 20, FieldDec: -15, RotSkyPos: 5, MJD: 60000.2, Band: "r"},
	}
	if err := db.Insert(ctx, visits); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return path
}

func TestVisits(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, newTestDB(t))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	tests := []struct {
		name    string
		query   Query
		wantIDs []int64
	}{
		{"all ordered by time", Query{}, []int64{1, 2, 3}},
		{"band filter", Query{Where: "band = 'r'"}, []int64{1, 2}},
		{"limit", Query{Limit: 2}, []int64{1, 2}},
		{"range", Query{Where: "fieldDec < -12 and observationStartMJD > 60000.15"}, []int64{2, 3}},
		{"no match", Query{Where: "band = 'u'"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			visits, err := db.Visits(ctx, tt.query)
			if err != nil {
				t.Fatalf("Visits() error = %v", err)
			}
			if len(visits) != len(tt.wantIDs) {
				t.Fatalf("Visits() returned %d visits, want %d", len(visits), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if visits[i].ObservationID != id {
					t.Errorf("visits[%d].ObservationID = %d, want %d", i, visits[i].ObservationID, id)
				}
			}
		})
	}
}

func TestVisitsFields(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, newTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	visits, err := db.Visits(ctx, Query{Where: "observationId = 3"})
	if err != nil {
		t.Fatal(err)
	}
	want := Visit{ObservationID: 3, FieldRA: 30, FieldDec: -20, RotSkyPos: 10, MJD: 60000.3, Band: "i"}
	if len(visits) != 1 || visits[0] != want {
		t.Errorf("Visits() = %+v, want [%+v]", visits, want)
	}
}

func TestVisitsRejectsUnsafeFilter(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, newTestDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Visits(ctx, Query{Where: "1=1; DROP TABLE observations"})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Visits() error = %v, want %s", err, errors.ErrCodeInvalidInput)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing.db"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Open() error = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestColumns(t *testing.T) {
	ra, decl, rot := Columns([]Visit{{FieldRA: 1, FieldDec: 2, RotSkyPos: 3}, {FieldRA: 4, FieldDec: 5, RotSkyPos: 6}})
	if len(ra) != 2 || ra[1] != 4 || decl[0] != 2 || rot[1] != 6 {
		t.Errorf("Columns() = %v %v %v", ra, decl, rot)
	}
}

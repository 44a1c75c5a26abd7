// Package repository persists snapshots of the merged dataset
package repository

import (
	"context"
	"countrystats/internal/engine"
	"countrystats/internal/models"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/labstack/gommon/log"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNoSnapshot is returned when the store has never been written.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepository stores the last successfully merged dataset
type SnapshotRepository interface {
	SaveDataset(ctx context.Context, ds *engine.Dataset) error
	LoadDataset(ctx context.Context) (*engine.Dataset, error)
	Close() error
}

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite
type SQLiteSnapshotRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteSnapshotRepository opens (and creates if needed) the database at dbPath
func NewSQLiteSnapshotRepository(dbPath string) (*SQLiteSnapshotRepository, error) {
	if dbPath == "" {
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "snapshot.db")
	}

	log.Infof("Opening snapshot database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS country (
		position INTEGER PRIMARY KEY,
		country TEXT NOT NULL UNIQUE,
		region TEXT NOT NULL,
		sub_region TEXT NOT NULL,
		area REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS series (
		country TEXT NOT NULL,
		year_index INTEGER NOT NULL,
		population REAL NOT NULL,
		species INTEGER NOT NULL,
		PRIMARY KEY(country, year_index)
	);
	CREATE INDEX IF NOT EXISTS idx_sub_region ON country(sub_region);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SQLiteSnapshotRepository{db: db, DBPath: dbPath}, nil
}

// Close closes the database connection
func (r *SQLiteSnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveDataset replaces the stored snapshot with ds
func (r *SQLiteSnapshotRepository) SaveDataset(ctx context.Context, ds *engine.Dataset) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM series; DELETE FROM country;`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	countryStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO country(position, country, region, sub_region, area)
		VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer countryStmt.Close()

	seriesStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series(country, year_index, population, species)
		VALUES(?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer seriesStmt.Close()

	for pos, rec := range ds.Records() {
		if _, err := countryStmt.ExecContext(ctx, pos, rec.Country, rec.Region, rec.SubRegion, rec.Area); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.Country, err)
		}
		for i := range rec.Population {
			if _, err := seriesStmt.ExecContext(ctx, rec.Country, i, rec.Population[i], rec.Species[i]); err != nil {
				return fmt.Errorf("failed to insert series for %s: %w", rec.Country, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Infof("Saved snapshot of %d countries", ds.Len())
	return nil
}

// LoadDataset rebuilds the dataset in its original country order
func (r *SQLiteSnapshotRepository) LoadDataset(ctx context.Context) (*engine.Dataset, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.country, c.region, c.sub_region, c.area, s.population, s.species
		FROM country c JOIN series s ON s.country = c.country
		ORDER BY c.position, s.year_index`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	ds := engine.NewDataset()
	var cur *models.CountryRecord
	flush := func() error {
		if cur == nil {
			return nil
		}
		return ds.Add(cur)
	}

	for rows.Next() {
		var (
			country, region, subRegion string
			area, population           float64
			species                    int
		)
		if err := rows.Scan(&country, &region, &subRegion, &area, &population, &species); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if cur == nil || cur.Country != country {
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &models.CountryRecord{Country: country, Region: region, SubRegion: subRegion, Area: area}
		}
		cur.Population = append(cur.Population, population)
		cur.Species = append(cur.Species, species)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if ds.Len() == 0 {
		return nil, ErrNoSnapshot
	}
	return ds, nil
}

package region

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/tilekeep/tilekeep/pkg/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteStore persists one row per region. Row-level upserts replace the
// whole-list read-modify-write of earlier designs, so concurrent mutations of
// different regions cannot lose updates.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(path string, l logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	err = db.Ping()
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{
		db:     db,
		logger: l,
	}

	err = s.runMigrations()
	if err != nil {
		return nil, err
	}

	l.Info("region store initialized", "path", path)

	return s, nil
}

func (s *SQLiteStore) runMigrations() error {
	goose.SetBaseFS(migrations)

	err := goose.SetDialect("sqlite3")
	if err != nil {
		return err
	}

	err = goose.Up(s.db, "migrations")
	if err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const regionColumns = `id, name, north, south, east, west, min_zoom, max_zoom,
	created_at, downloaded_at, status, total_tiles, downloaded_tiles, error`

func (s *SQLiteStore) List() ([]OfflineRegion, error) {
	query := `SELECT ` + regionColumns + `
	FROM regions
	ORDER BY created_at, id`

	rows, err := s.db.Query(query)
	if err != nil {
		s.logger.Error("region list failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var regions []OfflineRegion
	for rows.Next() {
		r, err := scanRegion(rows.Scan)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}

	return regions, rows.Err()
}

func (s *SQLiteStore) Get(id string) (*OfflineRegion, bool, error) {
	query := `SELECT ` + regionColumns + `
	FROM regions
	WHERE id = ?`

	r, err := scanRegion(s.db.QueryRow(query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		s.logger.Error("region get failed", "id", id, "error", err)
		return nil, false, err
	}

	return &r, true, nil
}

func (s *SQLiteStore) Upsert(r OfflineRegion) error {
	s.logger.Debug("region upsert", "id", r.ID, "status", r.Status)

	query := `INSERT INTO regions (` + regionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		name = excluded.name,
		north = excluded.north,
		south = excluded.south,
		east = excluded.east,
		west = excluded.west,
		min_zoom = excluded.min_zoom,
		max_zoom = excluded.max_zoom,
		downloaded_at = excluded.downloaded_at,
		status = excluded.status,
		total_tiles = excluded.total_tiles,
		downloaded_tiles = excluded.downloaded_tiles,
		error = excluded.error`

	var downloadedAt sql.NullString
	if r.DownloadedAt != nil {
		downloadedAt = sql.NullString{String: r.DownloadedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := s.db.Exec(query,
		r.ID, r.Name, r.North, r.South, r.East, r.West, r.MinZoom, r.MaxZoom,
		r.CreatedAt.UTC().Format(time.RFC3339Nano), downloadedAt,
		string(r.Status), r.TotalTiles, r.DownloadedTiles, r.Error,
	)
	if err != nil {
		s.logger.Error("region upsert failed", "id", r.ID, "error", err)
		return err
	}

	return nil
}

func (s *SQLiteStore) Remove(id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM regions WHERE id = ?`, id)
	if err != nil {
		s.logger.Error("region remove failed", "id", id, "error", err)
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func scanRegion(scan func(dest ...any) error) (OfflineRegion, error) {
	var (
		r            OfflineRegion
		createdAt    string
		downloadedAt sql.NullString
		status       string
	)

	err := scan(&r.ID, &r.Name, &r.North, &r.South, &r.East, &r.West,
		&r.MinZoom, &r.MaxZoom, &createdAt, &downloadedAt, &status,
		&r.TotalTiles, &r.DownloadedTiles, &r.Error)
	if err != nil {
		return r, err
	}

	r.Status = Status(status)

	r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return r, fmt.Errorf("invalid created_at for region %s: %w", r.ID, err)
	}

	if downloadedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, downloadedAt.String)
		if err != nil {
			return r, fmt.Errorf("invalid downloaded_at for region %s: %w", r.ID, err)
		}
		r.DownloadedAt = &t
	}

	return r, nil
}

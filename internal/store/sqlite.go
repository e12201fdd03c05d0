package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fuelboard/fuelboard/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS stations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	brand      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	latitude   REAL,
	longitude  REAL,
	is_home    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (name, address)
);

CREATE TABLE IF NOT EXISTS price_submissions (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	station_id      INTEGER REFERENCES stations(id),
	station_name    TEXT,
	station_address TEXT,
	grade           TEXT,
	price_cents     INTEGER,
	notes           TEXT,
	submitted_by    TEXT,
	submitted_from  TEXT,
	status          TEXT NOT NULL DEFAULT 'pending',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	reviewed_at     DATETIME
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON price_submissions(status);
CREATE INDEX IF NOT EXISTS idx_submissions_station_id ON price_submissions(station_id);
CREATE INDEX IF NOT EXISTS idx_submissions_status_station ON price_submissions(status, station_id);
CREATE INDEX IF NOT EXISTS idx_stations_is_home ON stations(is_home);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ListStations(ctx context.Context) ([]model.Station, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+stationColumns+` FROM stations ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stations")
	}
	defer rows.Close()

	var stations []model.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		stations = append(stations, *st)
	}
	return stations, eris.Wrap(rows.Err(), "sqlite: list stations iterate")
}

func (s *SQLiteStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+stationColumns+` FROM stations WHERE id = ?`,
		id,
	)
	st, err := scanStation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: station %d", id)
	}
	return st, err
}

func (s *SQLiteStore) CreateStation(ctx context.Context, st model.Station) (*model.Station, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO stations (name, brand, address, city, state, latitude, longitude, is_home, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Name, st.Brand, st.Address, st.City, st.State, st.Latitude, st.Longitude, st.IsHome, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert station")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	st.ID = id
	st.CreatedAt = now
	st.UpdatedAt = now
	return &st, nil
}

func (s *SQLiteStore) UpdateStationCoordinates(ctx context.Context, id int64, lat, lng float64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stations SET latitude = ?, longitude = ?, updated_at = ? WHERE id = ?`,
		lat, lng, time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update station coordinates %d", id)
	}
	return checkRowsAffected(res, "station", id)
}

// UpsertStations loads seed stations one row at a time, merging on
// (name, address). SQLite has no COPY protocol, so volume is not a concern.
func (s *SQLiteStore) UpsertStations(ctx context.Context, stations []model.Station) (int64, error) {
	var n int64
	now := time.Now().UTC()
	for _, st := range stations {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO stations (name, brand, address, city, state, latitude, longitude, is_home, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (name, address) DO UPDATE SET
			   brand = excluded.brand, city = excluded.city, state = excluded.state,
			   latitude = excluded.latitude, longitude = excluded.longitude,
			   is_home = excluded.is_home, updated_at = excluded.updated_at`,
			st.Name, st.Brand, st.Address, st.City, st.State, st.Latitude, st.Longitude, st.IsHome, now, now,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert station %q", st.Name)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return n, eris.Wrap(err, "sqlite: rows affected")
		}
		n += affected
	}
	return n, nil
}

func (s *SQLiteStore) InsertSubmission(ctx context.Context, sub model.Submission) (*model.Submission, error) {
	if sub.Status == "" {
		sub.Status = model.StatusPending
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO price_submissions (station_id, station_name, station_address, grade, price_cents, notes, submitted_by, submitted_from, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.StationID, sub.StationName, sub.StationAddress, sub.Grade, sub.PriceCents,
		sub.Notes, sub.SubmittedBy, sub.SubmittedFrom, string(sub.Status), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert submission")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: last insert id")
	}
	sub.ID = id
	sub.CreatedAt = now
	return &sub, nil
}

func (s *SQLiteStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM price_submissions WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.StationID != nil {
		query += ` AND station_id = ?`
		args = append(args, *filter.StationID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list submissions")
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: list submissions iterate")
}

func (s *SQLiteStore) ListApprovedPrices(ctx context.Context) ([]model.Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM price_submissions
		 WHERE status = 'approved' AND station_id IS NOT NULL AND grade IS NOT NULL AND price_cents IS NOT NULL`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list approved prices")
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: list approved prices iterate")
}

func (s *SQLiteStore) ReviewSubmission(ctx context.Context, id int64, status model.ReviewStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE price_submissions SET status = ?, reviewed_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: review submission %d", id)
	}
	return checkRowsAffected(res, "submission", id)
}

// helpers

func checkRowsAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: %s %d", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanStation(row scannable) (*model.Station, error) {
	var st model.Station
	err := row.Scan(&st.ID, &st.Name, &st.Brand, &st.Address, &st.City, &st.State,
		&st.Latitude, &st.Longitude, &st.IsHome, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan station")
	}
	return &st, nil
}

func scanSubmission(row scannable) (*model.Submission, error) {
	var sub model.Submission
	var status string
	err := row.Scan(&sub.ID, &sub.StationID, &sub.StationName, &sub.StationAddress,
		&sub.Grade, &sub.PriceCents, &sub.Notes, &sub.SubmittedBy, &sub.SubmittedFrom,
		&status, &sub.CreatedAt, &sub.ReviewedAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan submission")
	}
	sub.Status = model.ReviewStatus(status)
	return &sub, nil
}

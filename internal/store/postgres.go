package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fuelboard/fuelboard/internal/db"
	"github.com/fuelboard/fuelboard/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"list_stations":         `SELECT id, name, brand, address, city, state, latitude, longitude, is_home, created_at, updated_at FROM stations ORDER BY id`,
	"get_station":           `SELECT id, name, brand, address, city, state, latitude, longitude, is_home, created_at, updated_at FROM stations WHERE id = $1`,
	"update_station_coords": `UPDATE stations SET latitude = $1, longitude = $2, updated_at = now() WHERE id = $3`,
	"insert_submission":     `INSERT INTO price_submissions (station_id, station_name, station_address, grade, price_cents, notes, submitted_by, submitted_from, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id, created_at`,
	"list_approved_prices":  `SELECT id, station_id, station_name, station_address, grade, price_cents, notes, submitted_by, submitted_from, status, created_at, reviewed_at FROM price_submissions WHERE status = 'approved' AND station_id IS NOT NULL AND grade IS NOT NULL AND price_cents IS NOT NULL`,
	"review_submission":     `UPDATE price_submissions SET status = $1, reviewed_at = now() WHERE id = $2`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access (e.g., bulk seed imports).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS stations (
	id         BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name       TEXT NOT NULL,
	brand      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	city       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT '',
	latitude   DOUBLE PRECISION,
	longitude  DOUBLE PRECISION,
	is_home    BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, address)
);

CREATE TABLE IF NOT EXISTS price_submissions (
	id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	station_id      BIGINT REFERENCES stations(id),
	station_name    TEXT,
	station_address TEXT,
	grade           TEXT,
	price_cents     BIGINT,
	notes           TEXT,
	submitted_by    TEXT,
	submitted_from  TEXT,
	status          TEXT NOT NULL DEFAULT 'pending',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	reviewed_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_submissions_status ON price_submissions(status);
CREATE INDEX IF NOT EXISTS idx_submissions_station_id ON price_submissions(station_id);
CREATE INDEX IF NOT EXISTS idx_submissions_status_station ON price_submissions(status, station_id);
CREATE INDEX IF NOT EXISTS idx_stations_is_home ON stations(is_home);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const stationColumns = `id, name, brand, address, city, state, latitude, longitude, is_home, created_at, updated_at`

func (s *PostgresStore) ListStations(ctx context.Context) ([]model.Station, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+stationColumns+` FROM stations ORDER BY id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stations")
	}
	defer rows.Close()

	var stations []model.Station
	for rows.Next() {
		var st model.Station
		if err := rows.Scan(&st.ID, &st.Name, &st.Brand, &st.Address, &st.City, &st.State,
			&st.Latitude, &st.Longitude, &st.IsHome, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan station")
		}
		stations = append(stations, st)
	}
	return stations, eris.Wrap(rows.Err(), "postgres: list stations iterate")
}

func (s *PostgresStore) GetStation(ctx context.Context, id int64) (*model.Station, error) {
	var st model.Station
	err := s.pool.QueryRow(ctx,
		`SELECT `+stationColumns+` FROM stations WHERE id = $1`,
		id,
	).Scan(&st.ID, &st.Name, &st.Brand, &st.Address, &st.City, &st.State,
		&st.Latitude, &st.Longitude, &st.IsHome, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: station %d", id)
		}
		return nil, eris.Wrapf(err, "postgres: get station %d", id)
	}
	return &st, nil
}

func (s *PostgresStore) CreateStation(ctx context.Context, st model.Station) (*model.Station, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO stations (name, brand, address, city, state, latitude, longitude, is_home)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		st.Name, st.Brand, st.Address, st.City, st.State, st.Latitude, st.Longitude, st.IsHome,
	).Scan(&st.ID, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert station")
	}
	return &st, nil
}

func (s *PostgresStore) UpdateStationCoordinates(ctx context.Context, id int64, lat, lng float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE stations SET latitude = $1, longitude = $2, updated_at = now() WHERE id = $3`,
		lat, lng, id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update station coordinates %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: station %d", id)
	}
	return nil
}

// UpsertStations bulk-loads seed stations, merging on (name, address).
func (s *PostgresStore) UpsertStations(ctx context.Context, stations []model.Station) (int64, error) {
	rows := make([][]any, 0, len(stations))
	for _, st := range stations {
		rows = append(rows, []any{st.Name, st.Brand, st.Address, st.City, st.State, st.Latitude, st.Longitude, st.IsHome})
	}
	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "stations",
		Columns:      []string{"name", "brand", "address", "city", "state", "latitude", "longitude", "is_home"},
		ConflictKeys: []string{"name", "address"},
	}, rows)
	return n, eris.Wrap(err, "postgres: upsert stations")
}

const submissionColumns = `id, station_id, station_name, station_address, grade, price_cents, notes, submitted_by, submitted_from, status, created_at, reviewed_at`

func (s *PostgresStore) InsertSubmission(ctx context.Context, sub model.Submission) (*model.Submission, error) {
	if sub.Status == "" {
		sub.Status = model.StatusPending
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO price_submissions (station_id, station_name, station_address, grade, price_cents, notes, submitted_by, submitted_from, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		sub.StationID, sub.StationName, sub.StationAddress, sub.Grade, sub.PriceCents,
		sub.Notes, sub.SubmittedBy, sub.SubmittedFrom, string(sub.Status),
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert submission")
	}
	return &sub, nil
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM price_submissions WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.StationID != nil {
		query += fmt.Sprintf(` AND station_id = $%d`, argIdx)
		args = append(args, *filter.StationID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list submissions")
	}
	defer rows.Close()

	return scanSubmissionRows(rows)
}

func (s *PostgresStore) ListApprovedPrices(ctx context.Context) ([]model.Submission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM price_submissions
		 WHERE status = 'approved' AND station_id IS NOT NULL AND grade IS NOT NULL AND price_cents IS NOT NULL`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list approved prices")
	}
	defer rows.Close()

	return scanSubmissionRows(rows)
}

func (s *PostgresStore) ReviewSubmission(ctx context.Context, id int64, status model.ReviewStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE price_submissions SET status = $1, reviewed_at = now() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: review submission %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: submission %d", id)
	}
	return nil
}

func scanSubmissionRows(rows pgx.Rows) ([]model.Submission, error) {
	var subs []model.Submission
	for rows.Next() {
		var sub model.Submission
		var status string
		if err := rows.Scan(&sub.ID, &sub.StationID, &sub.StationName, &sub.StationAddress,
			&sub.Grade, &sub.PriceCents, &sub.Notes, &sub.SubmittedBy, &sub.SubmittedFrom,
			&status, &sub.CreatedAt, &sub.ReviewedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan submission")
		}
		sub.Status = model.ReviewStatus(status)
		subs = append(subs, sub)
	}
	return subs, eris.Wrap(rows.Err(), "postgres: iterate submissions")
}

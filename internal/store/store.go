// Package store persists stations and price submissions, with Postgres and
// SQLite implementations behind a common interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fuelboard/fuelboard/internal/model"
)

// ErrNotFound is returned when an operation targets a row that does not
// exist. Callers map it to a 404.
var ErrNotFound = eris.New("store: not found")

// SubmissionFilter specifies criteria for listing submissions.
type SubmissionFilter struct {
	Status    model.ReviewStatus `json:"status,omitempty"`
	StationID *int64             `json:"station_id,omitempty"`
	Limit     int                `json:"limit,omitempty"`
	Offset    int                `json:"offset,omitempty"`
}

// Store defines the persistence interface for the price directory.
type Store interface {
	// Stations
	ListStations(ctx context.Context) ([]model.Station, error)
	GetStation(ctx context.Context, id int64) (*model.Station, error)
	CreateStation(ctx context.Context, st model.Station) (*model.Station, error)
	UpdateStationCoordinates(ctx context.Context, id int64, lat, lng float64) error
	UpsertStations(ctx context.Context, stations []model.Station) (int64, error)

	// Submissions
	InsertSubmission(ctx context.Context, sub model.Submission) (*model.Submission, error)
	ListSubmissions(ctx context.Context, filter SubmissionFilter) ([]model.Submission, error)
	ListApprovedPrices(ctx context.Context) ([]model.Submission, error)
	ReviewSubmission(ctx context.Context, id int64, status model.ReviewStatus) error

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

// Package enrich lazily fills in missing station coordinates from the
// geocoding service, persisting results so each station is looked up at most
// once. Lookup failures degrade to the unenriched station rather than
// failing the caller.
package enrich

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fuelboard/fuelboard/internal/model"
	"github.com/fuelboard/fuelboard/pkg/geocode"
)

const (
	defaultLookupTimeout = 5 * time.Second
	defaultConcurrency   = 4
)

// CoordinateWriter persists resolved coordinates.
type CoordinateWriter interface {
	UpdateStationCoordinates(ctx context.Context, stationID int64, lat, lng float64) error
}

// Enricher resolves coordinates for stations that lack them.
type Enricher struct {
	geocoder    geocode.Client
	store       CoordinateWriter
	timeout     time.Duration
	concurrency int
}

// New creates an Enricher. A nil geocoder means geocoding is unconfigured
// and enrichment becomes a no-op; callers never need to special-case it.
func New(geocoder geocode.Client, store CoordinateWriter, timeout time.Duration, concurrency int) *Enricher {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Enricher{
		geocoder:    geocoder,
		store:       store,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Enrich returns the station with coordinates filled in when possible.
// Stations that already have coordinates, have no address to look up, or
// fail to resolve come back unchanged. A successful lookup is written back
// to the store; a write-back failure is logged and the enriched copy is
// still returned, so the next request retries the persist.
func (e *Enricher) Enrich(ctx context.Context, st model.Station) model.Station {
	if st.HasCoordinates() || e.geocoder == nil {
		return st
	}

	address := st.AddressLine()
	if address == "" {
		return st
	}

	lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.geocoder.Geocode(lookupCtx, address)
	if err != nil {
		zap.L().Warn("geocode lookup failed",
			zap.Int64("station_id", st.ID),
			zap.String("address", address),
			zap.Error(err))
		return st
	}
	if !result.Matched {
		zap.L().Debug("geocode no match",
			zap.Int64("station_id", st.ID),
			zap.String("address", address))
		return st
	}

	st.Latitude = &result.Latitude
	st.Longitude = &result.Longitude

	if e.store != nil {
		if err := e.store.UpdateStationCoordinates(ctx, st.ID, result.Latitude, result.Longitude); err != nil {
			zap.L().Warn("persist station coordinates failed",
				zap.Int64("station_id", st.ID),
				zap.Error(err))
		}
	}
	return st
}

// EnrichAll enriches a batch of stations with bounded concurrency,
// preserving order.
func (e *Enricher) EnrichAll(ctx context.Context, stations []model.Station) []model.Station {
	if e.geocoder == nil || len(stations) == 0 {
		return stations
	}

	results := make([]model.Station, len(stations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, st := range stations {
		g.Go(func() error {
			results[i] = e.Enrich(gctx, st)
			return nil
		})
	}
	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()
	return results
}

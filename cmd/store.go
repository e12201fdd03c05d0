package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/fuelboard/fuelboard/internal/enrich"
	"github.com/fuelboard/fuelboard/internal/store"
	"github.com/fuelboard/fuelboard/pkg/geocode"
)

func openStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "fuelboard.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newEnricher builds the coordinate enricher. Without a Google API key the
// geocoder stays nil and enrichment is a no-op.
func newEnricher(st store.Store) (*enrich.Enricher, error) {
	var geocoder geocode.Client
	if cfg.Geocode.GoogleAPIKey != "" {
		c, err := geocode.NewClient(cfg.Geocode.GoogleAPIKey,
			geocode.WithRateLimit(cfg.Geocode.RateLimit),
			geocode.WithMemoTTL(time.Duration(cfg.Geocode.CacheTTLMinutes)*time.Minute),
		)
		if err != nil {
			return nil, err
		}
		geocoder = c
	}
	return enrich.New(geocoder, st,
		time.Duration(cfg.Geocode.TimeoutSecs)*time.Second,
		cfg.Geocode.Concurrency,
	), nil
}

package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Backfill coordinates for stations missing them",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("geocode"); err != nil {
			return err
		}
		if cfg.Geocode.GoogleAPIKey == "" {
			return eris.New("geocode: google api key is required (FUELBOARD_GEOCODE_GOOGLE_API_KEY)")
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		enricher, err := newEnricher(st)
		if err != nil {
			return err
		}

		stations, err := st.ListStations(ctx)
		if err != nil {
			return err
		}

		var missing int
		for _, s := range stations {
			if !s.HasCoordinates() {
				missing++
			}
		}

		enriched := enricher.EnrichAll(ctx, stations)

		var resolved int
		for i := range stations {
			if !stations[i].HasCoordinates() && enriched[i].HasCoordinates() {
				resolved++
			}
		}

		zap.L().Info("geocode backfill complete",
			zap.Int("stations", len(stations)),
			zap.Int("missing", missing),
			zap.Int("resolved", resolved),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}

package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/fuelboard/fuelboard/internal/model"
)

var importFilePath string

type stationSeed struct {
	Name    string   `yaml:"name"`
	Brand   string   `yaml:"brand"`
	Address string   `yaml:"address"`
	City    string   `yaml:"city"`
	State   string   `yaml:"state"`
	Lat     *float64 `yaml:"lat"`
	Lng     *float64 `yaml:"lng"`
	Home    bool     `yaml:"home"`
}

type seedFile struct {
	Stations []stationSeed `yaml:"stations"`
}

func parseSeedFile(data []byte) ([]model.Station, error) {
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, eris.Wrap(err, "parse seed file")
	}
	if len(seed.Stations) == 0 {
		return nil, eris.New("seed file has no stations")
	}

	stations := make([]model.Station, 0, len(seed.Stations))
	for i, s := range seed.Stations {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, eris.Errorf("station %d: name is required", i+1)
		}
		stations = append(stations, model.Station{
			Name:      name,
			Brand:     strings.TrimSpace(s.Brand),
			Address:   strings.TrimSpace(s.Address),
			City:      strings.TrimSpace(s.City),
			State:     strings.TrimSpace(s.State),
			Latitude:  s.Lat,
			Longitude: s.Lng,
			IsHome:    s.Home,
		})
	}
	return stations, nil
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import stations from a YAML seed file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		data, err := os.ReadFile(importFilePath)
		if err != nil {
			return eris.Wrap(err, "read seed file")
		}
		stations, err := parseSeedFile(data)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		n, err := st.UpsertStations(ctx, stations)
		if err != nil {
			return eris.Wrap(err, "import stations")
		}

		zap.L().Info("import complete",
			zap.Int64("upserted", n),
			zap.Int("parsed", len(stations)),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to YAML seed file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

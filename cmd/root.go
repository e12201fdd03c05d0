package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuelboard/fuelboard/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "fuelboard",
	Short: "Crowdsourced local gas price directory",
	Long:  "Backend for a neighborhood gas price board: collects price submissions, reviews them, and serves a station listing with current prices and geocoded locations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

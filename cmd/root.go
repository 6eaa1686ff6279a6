package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inat-tools/rarities/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rarities",
	Short: "Rarity rankings for an iNaturalist account",
	Long:  "Lists every species a user has observed, fetches worldwide observation totals, scans for the most recent sighting by anyone else, and writes ranked reports.",
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

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cacheUser string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset a user's recency cache",
	Long:  "The cache remembers the outcome of every recency scan. Cached taxa are never re-scanned; clear the cache to force fresh results.",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache driver, location, and size",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, path, err := initStore(cacheUser)
		if err != nil {
			return eris.Wrap(err, "open cache")
		}
		defer st.Close() //nolint:errcheck

		n, err := st.Len(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "count cache entries")
		}

		fmt.Printf("driver: %s\npath:   %s\ntaxa:   %d\n", cfg.Store.Driver, path, n)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached recency record for the user",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, path, err := initStore(cacheUser)
		if err != nil {
			return eris.Wrap(err, "open cache")
		}
		defer st.Close() //nolint:errcheck

		n, err := st.Len(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "count cache entries")
		}
		if err := st.Clear(cmd.Context()); err != nil {
			return eris.Wrap(err, "clear cache")
		}

		zap.L().Info("cache cleared", zap.String("path", path), zap.Int("dropped", n))
		fmt.Printf("dropped %d cached taxa from %s\n", n, path)
		return nil
	},
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheUser, "user", "", "iNaturalist login whose cache to target (required)")
	_ = cacheCmd.MarkPersistentFlagRequired("user")
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

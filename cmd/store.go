package main

import (
	"net/http"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/inat-tools/rarities/internal/store"
	"github.com/inat-tools/rarities/pkg/inat"
)

// cachePath resolves where the recency cache for one login lives. An explicit
// store.path wins; otherwise each login gets its own file next to the reports.
func cachePath(login, ext string) string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	return filepath.Join(cfg.Report.Dir, login+".recency."+ext)
}

// initStore opens the recency cache for the given login and returns it with
// the resolved path.
func initStore(login string) (store.Store, string, error) {
	switch cfg.Store.Driver {
	case "json":
		path := cachePath(login, "json")
		st, err := store.NewJSONFile(path)
		return st, path, err
	case "sqlite":
		path := cachePath(login, "db")
		st, err := store.NewSQLite(path)
		return st, path, err
	default:
		return nil, "", eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newAPIClient builds the iNaturalist client from the config.
func newAPIClient() inat.Client {
	opts := []inat.Option{
		inat.WithBaseURL(cfg.API.BaseURL),
		inat.WithMinDelay(cfg.API.Delay),
		inat.WithRetry(cfg.API.Retry.Resilience()),
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, inat.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}))
	}
	if cfg.API.UserAgent != "" {
		opts = append(opts, inat.WithUserAgent(cfg.API.UserAgent))
	}
	return inat.NewClient(opts...)
}

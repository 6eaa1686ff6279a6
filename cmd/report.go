package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inat-tools/rarities/internal/rarity"
	"github.com/inat-tools/rarities/internal/report"
)

var (
	reportUser     string
	reportDir      string
	reportTop      int
	reportDelay    time.Duration
	reportMaxPages int
	reportBatch    int
	reportXLSX     bool
	reportSkipHTML bool
	reportNoPhotos bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build rarity rankings for a user",
	Long:  "Fetches the user's full species list, resolves global observation counts and per-taxon recency, and writes the two top-N tables as CSV (plus HTML and optionally XLSX).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		applyReportFlags(cmd)

		if err := cfg.Validate(); err != nil {
			return err
		}

		st, cacheLoc, err := initStore(reportUser)
		if err != nil {
			return eris.Wrap(err, "open cache")
		}
		defer st.Close() //nolint:errcheck

		client := newAPIClient()

		rep, err := rarity.New(client, st).Run(ctx, rarity.Params{
			Login:     reportUser,
			BatchSize: cfg.Scan.BatchSize,
			MaxPages:  cfg.Scan.MaxPages,
			TopN:      cfg.Report.Top,
		})
		if err != nil {
			return eris.Wrap(err, "report run")
		}

		outDir := cfg.Report.Dir
		if err := report.WriteCSV(rep, outDir); err != nil {
			return err
		}
		written := []string{report.LeastObservedCSV, report.OldestSeenCSV}

		if cfg.Report.HTML {
			var media report.MediaSource
			if cfg.Report.Photos {
				media = client
			}
			if err := report.NewHTMLRenderer(media).Write(ctx, rep, outDir); err != nil {
				return err
			}
			written = append(written, report.ReportHTML)
		}

		if cfg.Report.XLSX {
			if err := report.WriteXLSX(rep, outDir); err != nil {
				return err
			}
			written = append(written, report.XLSXName)
		}

		zap.L().Info("report written",
			zap.String("user", rep.UserLogin),
			zap.String("dir", outDir),
			zap.Strings("files", written),
			zap.String("cache", cacheLoc),
			zap.Int("species", rep.SpeciesTotal),
			zap.Int("scanned_new", rep.ScannedNew),
			zap.Int("cache_hits", rep.CacheHits),
		)
		fmt.Printf("wrote %d files to %s\n", len(written), outDir)
		return nil
	},
}

// applyReportFlags overlays flags the user actually set onto the loaded
// config, so rarities.yaml and RARITIES_* env values stay the fallback.
func applyReportFlags(cmd *cobra.Command) {
	flagged := map[string]func(){
		"out":        func() { cfg.Report.Dir = reportDir },
		"top":        func() { cfg.Report.Top = reportTop },
		"delay":      func() { cfg.API.Delay = reportDelay },
		"max-pages":  func() { cfg.Scan.MaxPages = reportMaxPages },
		"batch-size": func() { cfg.Scan.BatchSize = reportBatch },
		"xlsx":       func() { cfg.Report.XLSX = reportXLSX },
		"skip-html":  func() { cfg.Report.HTML = !reportSkipHTML },
		"no-photos":  func() { cfg.Report.Photos = !reportNoPhotos },
	}
	for name, apply := range flagged {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
}

func init() {
	reportCmd.Flags().StringVar(&reportUser, "user", "", "iNaturalist login to report on (required)")
	reportCmd.Flags().StringVar(&reportDir, "out", "rarity-report", "output directory")
	reportCmd.Flags().IntVar(&reportTop, "top", 20, "rows per ranking table")
	reportCmd.Flags().DurationVar(&reportDelay, "delay", time.Second, "minimum delay between API requests")
	reportCmd.Flags().IntVar(&reportMaxPages, "max-pages", 8, "pages to scan per taxon before giving up")
	reportCmd.Flags().IntVar(&reportBatch, "batch-size", 200, "taxa per global-count request")
	reportCmd.Flags().BoolVar(&reportXLSX, "xlsx", false, "also write an XLSX workbook")
	reportCmd.Flags().BoolVar(&reportSkipHTML, "skip-html", false, "skip the HTML page")
	reportCmd.Flags().BoolVar(&reportNoPhotos, "no-photos", false, "render HTML without photo lookups")
	_ = reportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(reportCmd)
}

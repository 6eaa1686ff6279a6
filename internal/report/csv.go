// Package report renders a finished rarity report to files: a CSV per
// ranking, a self-contained HTML page, and optionally an XLSX workbook.
package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/inat-tools/rarities/internal/model"
)

// Fixed output names, one file per ranking.
const (
	LeastObservedCSV = "least_observed.csv"
	OldestSeenCSV    = "oldest_seen.csv"
)

// csvColumns is the ordered header shared by both ranking files. The three
// last_other columns stay empty for taxa nobody else has been seen with.
var csvColumns = []string{
	"username",
	"taxon_id",
	"rank",
	"scientific_name",
	"common_name",
	"user_observations",
	"global_observations",
	"last_other_observed_at",
	"last_other_observation_id",
	"last_other_observer",
}

// WriteCSV writes both ranking files under dir, creating it if needed.
func WriteCSV(rep *model.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "report: creating output dir %s", dir)
	}
	if err := writeRankingCSV(filepath.Join(dir, LeastObservedCSV), rep.UserLogin, rep.LeastObserved); err != nil {
		return err
	}
	return writeRankingCSV(filepath.Join(dir, OldestSeenCSV), rep.UserLogin, rep.OldestSeen)
}

func writeRankingCSV(path, login string, rows []model.EnrichedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(csvColumns); err != nil {
		return eris.Wrapf(err, "report: write header %s", path)
	}
	for _, r := range rows {
		if err := w.Write(buildCSVRow(login, r)); err != nil {
			return eris.Wrapf(err, "report: write row %s", path)
		}
	}
	w.Flush()
	return eris.Wrapf(w.Error(), "report: flush %s", path)
}

func buildCSVRow(login string, r model.EnrichedRecord) []string {
	obsID := ""
	if r.Recency.ObservationID != 0 {
		obsID = strconv.FormatInt(r.Recency.ObservationID, 10)
	}
	return []string{
		login,
		strconv.FormatInt(r.Species.TaxonID, 10),
		r.Species.Rank,
		r.Species.Name,
		r.Species.CommonName,
		strconv.Itoa(r.Species.UserCount),
		strconv.Itoa(r.GlobalCount),
		r.Recency.ObservedAt,
		obsID,
		r.Recency.ObserverLogin,
	}
}

package report

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/inat-tools/rarities/internal/model"
)

// XLSXName is the workbook file name inside the output dir.
const XLSXName = "rarity_report.xlsx"

const (
	leastSheetName   = "Least Observed"
	oldestSheetName  = "Oldest Seen"
	summarySheetName = "Run"
)

// WriteXLSX writes both rankings and a run summary into a single workbook.
func WriteXLSX(rep *model.Report, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "report: creating output dir %s", dir)
	}

	wb := xlsx.NewFile()
	if err := addRankingSheet(wb, leastSheetName, rep.UserLogin, rep.LeastObserved); err != nil {
		return err
	}
	if err := addRankingSheet(wb, oldestSheetName, rep.UserLogin, rep.OldestSeen); err != nil {
		return err
	}
	if err := addSummarySheet(wb, rep); err != nil {
		return err
	}

	path := filepath.Join(dir, XLSXName)
	if err := wb.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addRankingSheet(wb *xlsx.File, name, login string, records []model.EnrichedRecord) error {
	sheet, err := wb.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: adding sheet %s", name)
	}

	header := sheet.AddRow()
	for _, col := range csvColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(login)
		row.AddCell().SetInt64(r.Species.TaxonID)
		row.AddCell().SetString(r.Species.Rank)
		row.AddCell().SetString(r.Species.Name)
		row.AddCell().SetString(r.Species.CommonName)
		row.AddCell().SetInt(r.Species.UserCount)
		row.AddCell().SetInt(r.GlobalCount)
		row.AddCell().SetString(r.Recency.ObservedAt)
		if r.Recency.ObservationID != 0 {
			row.AddCell().SetInt64(r.Recency.ObservationID)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetString(r.Recency.ObserverLogin)
	}
	return nil
}

func addSummarySheet(wb *xlsx.File, rep *model.Report) error {
	sheet, err := wb.AddSheet(summarySheetName)
	if err != nil {
		return eris.Wrapf(err, "report: adding sheet %s", summarySheetName)
	}

	addKV := func(key, value string) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetString(value)
	}
	addKVInt := func(key string, value int) {
		row := sheet.AddRow()
		row.AddCell().SetString(key)
		row.AddCell().SetInt(value)
	}

	addKV("user", rep.UserLogin)
	addKV("name", rep.UserName)
	addKV("run_id", rep.RunID)
	addKV("generated_at", rep.GeneratedAt.UTC().Format(time.RFC3339))
	addKVInt("species_total", rep.SpeciesTotal)
	addKVInt("scanned_new", rep.ScannedNew)
	addKVInt("cache_hits", rep.CacheHits)
	return nil
}

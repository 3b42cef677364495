// Package report exports saved zone analyses as XLSX workbooks.
package report

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/terrawatch/envzone/internal/model"
)

// WriteAnalysesWorkbook writes a workbook with a summary sheet covering all
// analyses and one sensor-detail sheet per zone. zoneNames maps zone IDs to
// display names; unknown IDs fall back to the raw ID.
func WriteAnalysesWorkbook(path string, analyses []model.ZonePollutionAnalysis, zoneNames map[string]string) error {
	if len(analyses) == 0 {
		return eris.New("report: no analyses to export")
	}

	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}
	writeHeader(summary, []string{
		"Zone", "Analyzed At", "Overall Level", "Risk Score", "Alert Level", "Factors", "Recommendations",
	})

	perZone := make(map[string][]model.ZonePollutionAnalysis)
	var zoneOrder []string
	for _, a := range analyses {
		name := zoneName(a.ZoneID, zoneNames)

		row := summary.AddRow()
		row.AddCell().SetString(name)
		row.AddCell().SetString(formatTime(a.AnalyzedAt))
		row.AddCell().SetString(string(a.OverallLevel))
		row.AddCell().SetInt(a.RiskScore)
		row.AddCell().SetString(string(a.AlertLevel))
		row.AddCell().SetString(strings.Join(a.Factors, "; "))
		row.AddCell().SetString(strings.Join(a.Recommendations, "; "))

		if _, seen := perZone[a.ZoneID]; !seen {
			zoneOrder = append(zoneOrder, a.ZoneID)
		}
		perZone[a.ZoneID] = append(perZone[a.ZoneID], a)
	}

	for _, zoneID := range zoneOrder {
		if err := addSensorSheet(f, zoneID, zoneName(zoneID, zoneNames), perZone[zoneID]); err != nil {
			return err
		}
	}

	return eris.Wrapf(f.Save(path), "report: save workbook %s", path)
}

// addSensorSheet writes the per-sensor classifications from the newest
// analysis of the zone.
func addSensorSheet(f *xlsx.File, zoneID, name string, analyses []model.ZonePollutionAnalysis) error {
	latest := analyses[0]
	for _, a := range analyses[1:] {
		if a.AnalyzedAt.After(latest.AnalyzedAt) {
			latest = a
		}
	}

	sheet, err := f.AddSheet(sheetName(name))
	if err != nil {
		return eris.Wrapf(err, "report: add sheet for zone %s", zoneID)
	}
	writeHeader(sheet, []string{"Sensor", "Type", "Level", "Value", "Active"})

	for _, sc := range latest.Sensors {
		row := sheet.AddRow()
		row.AddCell().SetString(sc.Name)
		row.AddCell().SetString(string(sc.Type))
		row.AddCell().SetString(string(sc.Level))
		if sc.Value != nil {
			row.AddCell().SetFloat(*sc.Value)
		} else {
			row.AddCell().SetString("")
		}
		row.AddCell().SetBool(sc.Active)
	}
	return nil
}

func writeHeader(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, col := range cols {
		row.AddCell().SetString(col)
	}
}

func zoneName(zoneID string, names map[string]string) string {
	if name, ok := names[zoneID]; ok && name != "" {
		return name
	}
	return zoneID
}

// sheetName trims to the 31-character Excel limit and strips characters
// Excel rejects in sheet names.
func sheetName(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", "-")
	name = replacer.Replace(name)
	if len(name) > 31 {
		name = name[:31]
	}
	if name == "" {
		name = "Zone"
	}
	return name
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

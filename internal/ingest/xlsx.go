package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/store"
)

// XLSXOptions configures reading import from a workbook.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ParseReadingsXLSX reads sensor readings from a workbook sheet laid out
// like the CSV format: sensor_id, value, unit, recorded_at.
func ParseReadingsXLSX(path string, opts XLSXOptions) ([]store.SensorReading, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open xlsx %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var readings []store.SensorReading
	var skipped int
	for i, row := range sheet.Rows {
		cells := rowToStrings(row)

		if i == 0 && isReadingHeader(cells) {
			continue
		}

		sr, ok := parseReadingRecord(cells)
		if !ok {
			if len(cells) > 0 {
				skipped++
			}
			continue
		}
		readings = append(readings, sr)
	}

	if skipped > 0 {
		zap.L().Debug("ingest: skipped xlsx rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return readings, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("ingest: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("ingest: sheet index %d out of range", opts.SheetIndex)
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		cells = append(cells, cell.String())
	}
	return cells
}

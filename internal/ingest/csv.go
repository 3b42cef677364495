package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/store"
)

// ParseReadingsCSV reads sensor readings from a CSV file with columns
// sensor_id, value, unit, recorded_at (RFC 3339). A header row is
// detected and skipped; malformed rows are skipped with a log line.
func ParseReadingsCSV(path string) ([]store.SensorReading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open csv %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var readings []store.SensorReading
	var skipped int
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read csv %s", path)
		}
		line++

		if line == 1 && isReadingHeader(record) {
			continue
		}

		sr, ok := parseReadingRecord(record)
		if !ok {
			skipped++
			continue
		}
		readings = append(readings, sr)
	}

	if skipped > 0 {
		zap.L().Debug("ingest: skipped csv rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return readings, nil
}

func isReadingHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), "sensor_id")
}

// parseReadingRecord converts one row into a reading. Layout is
// sensor_id, value, unit (optional), recorded_at (optional).
func parseReadingRecord(record []string) (store.SensorReading, bool) {
	if len(record) < 2 {
		return store.SensorReading{}, false
	}

	sensorID := strings.TrimSpace(record[0])
	if sensorID == "" {
		return store.SensorReading{}, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return store.SensorReading{}, false
	}

	sr := store.SensorReading{
		SensorID: sensorID,
		Reading:  model.Reading{Value: value},
	}
	if len(record) > 2 {
		sr.Reading.Unit = strings.TrimSpace(record[2])
	}
	if len(record) > 3 && strings.TrimSpace(record[3]) != "" {
		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[3]))
		if err != nil {
			return store.SensorReading{}, false
		}
		sr.Reading.RecordedAt = ts
	}
	return sr, true
}

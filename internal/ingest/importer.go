// Package ingest loads zones and sensor readings from external files:
// shapefiles and GeoJSON for zone boundaries, CSV and XLSX for reading
// backfills.
package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/store"
)

// Importer writes imported zones and readings to the store, taking the
// bulk fast path when the backend offers one.
type Importer struct {
	store store.Store
}

// NewImporter creates an Importer on the given store.
func NewImporter(st store.Store) *Importer {
	return &Importer{store: st}
}

// ImportZones persists the zones, returning the number written.
func (im *Importer) ImportZones(ctx context.Context, zones []model.Zone) (int, error) {
	if len(zones) == 0 {
		return 0, nil
	}

	if bulk, ok := im.store.(store.BulkZoneWriter); ok {
		n, err := bulk.BulkUpsertZones(ctx, zones)
		if err != nil {
			return 0, err
		}
		zap.L().Info("ingest: bulk upserted zones", zap.Int64("count", n))
		return int(n), nil
	}

	for _, z := range zones {
		if _, err := im.store.CreateZone(ctx, z); err != nil {
			return 0, err
		}
	}
	zap.L().Info("ingest: created zones", zap.Int("count", len(zones)))
	return len(zones), nil
}

// ImportReadings persists the readings, returning the number written.
func (im *Importer) ImportReadings(ctx context.Context, readings []store.SensorReading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	if bulk, ok := im.store.(store.BulkReadingWriter); ok {
		n, err := bulk.BulkAddReadings(ctx, readings)
		if err != nil {
			return 0, err
		}
		zap.L().Info("ingest: bulk inserted readings", zap.Int64("count", n))
		return int(n), nil
	}

	for _, sr := range readings {
		if err := im.store.AddReading(ctx, sr.SensorID, sr.Reading); err != nil {
			return 0, err
		}
	}
	zap.L().Info("ingest: inserted readings", zap.Int("count", len(readings)))
	return len(readings), nil
}

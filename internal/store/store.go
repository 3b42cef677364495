// Package store persists the zone registry, sensor registry, reading
// history, and saved analysis snapshots behind a driver-agnostic interface.
package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"

	"github.com/terrawatch/envzone/internal/config"
	"github.com/terrawatch/envzone/internal/model"
)

// Store defines the persistence interface for zones, sensors, readings,
// and analysis snapshots. Lookups for absent rows return (nil, nil); only
// real backend failures surface as errors.
type Store interface {
	// Zones
	CreateZone(ctx context.Context, zone model.Zone) (*model.Zone, error)
	GetZone(ctx context.Context, zoneID string) (*model.Zone, error)
	ListZones(ctx context.Context) ([]model.Zone, error)
	UpdateZone(ctx context.Context, zone model.Zone) error
	DeleteZone(ctx context.Context, zoneID string) error

	// Sensors
	CreateSensor(ctx context.Context, sensor model.Sensor) (*model.Sensor, error)
	ListSensors(ctx context.Context, zoneID string) ([]model.Sensor, error)
	SetSensorActive(ctx context.Context, sensorID string, active bool) error

	// Readings
	AddReading(ctx context.Context, sensorID string, reading model.Reading) error
	LatestReading(ctx context.Context, sensorID string) (*model.Reading, error)

	// Analysis snapshots
	SaveAnalysis(ctx context.Context, analysis model.ZonePollutionAnalysis) error
	ListAnalyses(ctx context.Context, zoneID string, limit int) ([]model.ZonePollutionAnalysis, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// SensorReading pairs a reading with its sensor for bulk ingestion.
type SensorReading struct {
	SensorID string
	Reading  model.Reading
}

// BulkReadingWriter is implemented by backends with a fast path for
// inserting reading batches. Importers fall back to AddReading otherwise.
type BulkReadingWriter interface {
	BulkAddReadings(ctx context.Context, readings []SensorReading) (int64, error)
}

// BulkZoneWriter is implemented by backends with a fast path for
// upserting zone batches.
type BulkZoneWriter interface {
	BulkUpsertZones(ctx context.Context, zones []model.Zone) (int64, error)
}

// Open constructs the Store selected by configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL, nil)
	}
	return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
}

// checkRowsAffected converts a zero-row update into a descriptive error.
func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrapf(err, "store: rows affected for %s %s", entity, id)
	}
	if n == 0 {
		return eris.Errorf("store: %s %s not found", entity, id)
	}
	return nil
}

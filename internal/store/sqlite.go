package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/terrawatch/envzone/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS zones (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	geometry   TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sensors (
	id         TEXT PRIMARY KEY,
	zone_id    TEXT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	active     INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS readings (
	id          TEXT PRIMARY KEY,
	sensor_id   TEXT NOT NULL REFERENCES sensors(id) ON DELETE CASCADE,
	value       REAL NOT NULL,
	unit        TEXT NOT NULL DEFAULT '',
	recorded_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	zone_id     TEXT NOT NULL,
	result      TEXT NOT NULL,
	analyzed_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sensors_zone_id ON sensors(zone_id);
CREATE INDEX IF NOT EXISTS idx_readings_sensor_recorded ON readings(sensor_id, recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_zone_analyzed ON analyses(zone_id, analyzed_at DESC);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateZone(ctx context.Context, zone model.Zone) (*model.Zone, error) {
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	geomJSON, err := json.Marshal(zone.Geometry)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal geometry")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO zones (id, name, geometry, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		zone.ID, zone.Name, string(geomJSON), zone.Color, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert zone")
	}
	return &zone, nil
}

func (s *SQLiteStore) GetZone(ctx context.Context, zoneID string) (*model.Zone, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, geometry, color, created_at, updated_at FROM zones WHERE id = ?`,
		zoneID,
	)

	var z model.Zone
	var geomJSON string
	err := row.Scan(&z.ID, &z.Name, &geomJSON, &z.Color, &z.CreatedAt, &z.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get zone %s", zoneID)
	}
	if err := json.Unmarshal([]byte(geomJSON), &z.Geometry); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal geometry for zone %s", zoneID)
	}
	return &z, nil
}

func (s *SQLiteStore) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, geometry, color, created_at, updated_at FROM zones ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list zones")
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		var z model.Zone
		var geomJSON string
		if err := rows.Scan(&z.ID, &z.Name, &geomJSON, &z.Color, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan zone")
		}
		if err := json.Unmarshal([]byte(geomJSON), &z.Geometry); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal geometry for zone %s", z.ID)
		}
		zones = append(zones, z)
	}
	return zones, eris.Wrap(rows.Err(), "sqlite: list zones iterate")
}

func (s *SQLiteStore) UpdateZone(ctx context.Context, zone model.Zone) error {
	geomJSON, err := json.Marshal(zone.Geometry)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal geometry")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE zones SET name = ?, geometry = ?, color = ?, updated_at = ? WHERE id = ?`,
		zone.Name, string(geomJSON), zone.Color, time.Now().UTC(), zone.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update zone %s", zone.ID)
	}
	return checkRowsAffected(res, "zone", zone.ID)
}

func (s *SQLiteStore) DeleteZone(ctx context.Context, zoneID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM zones WHERE id = ?`, zoneID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete zone %s", zoneID)
	}
	return checkRowsAffected(res, "zone", zoneID)
}

func (s *SQLiteStore) CreateSensor(ctx context.Context, sensor model.Sensor) (*model.Sensor, error) {
	if sensor.ID == "" {
		sensor.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	sensor.CreatedAt = now
	sensor.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sensors (id, zone_id, name, type, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sensor.ID, sensor.ZoneID, sensor.Name, string(sensor.Type), sensor.Active, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert sensor")
	}
	return &sensor, nil
}

func (s *SQLiteStore) ListSensors(ctx context.Context, zoneID string) ([]model.Sensor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, zone_id, name, type, active, created_at, updated_at FROM sensors WHERE zone_id = ? ORDER BY created_at`,
		zoneID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list sensors for zone %s", zoneID)
	}
	defer rows.Close()

	var sensors []model.Sensor
	for rows.Next() {
		var sn model.Sensor
		var typ string
		if err := rows.Scan(&sn.ID, &sn.ZoneID, &sn.Name, &typ, &sn.Active, &sn.CreatedAt, &sn.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sensor")
		}
		sn.Type = model.SensorType(typ)
		sensors = append(sensors, sn)
	}
	return sensors, eris.Wrap(rows.Err(), "sqlite: list sensors iterate")
}

func (s *SQLiteStore) SetSensorActive(ctx context.Context, sensorID string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sensors SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), sensorID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set sensor active %s", sensorID)
	}
	return checkRowsAffected(res, "sensor", sensorID)
}

func (s *SQLiteStore) AddReading(ctx context.Context, sensorID string, reading model.Reading) error {
	recordedAt := reading.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (id, sensor_id, value, unit, recorded_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sensorID, reading.Value, reading.Unit, recordedAt,
	)
	return eris.Wrapf(err, "sqlite: insert reading for sensor %s", sensorID)
}

func (s *SQLiteStore) LatestReading(ctx context.Context, sensorID string) (*model.Reading, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value, unit, recorded_at FROM readings WHERE sensor_id = ? ORDER BY recorded_at DESC LIMIT 1`,
		sensorID,
	)

	var r model.Reading
	err := row.Scan(&r.Value, &r.Unit, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest reading for sensor %s", sensorID)
	}
	return &r, nil
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, analysis model.ZonePollutionAnalysis) error {
	resultJSON, err := json.Marshal(analysis)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal analysis")
	}

	analyzedAt := analysis.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, zone_id, result, analyzed_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), analysis.ZoneID, string(resultJSON), analyzedAt,
	)
	return eris.Wrapf(err, "sqlite: insert analysis for zone %s", analysis.ZoneID)
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, zoneID string, limit int) ([]model.ZonePollutionAnalysis, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT result FROM analyses`
	var args []any
	if zoneID != "" {
		query += ` WHERE zone_id = ?`
		args = append(args, zoneID)
	}
	query += ` ORDER BY analyzed_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list analyses")
	}
	defer rows.Close()

	var analyses []model.ZonePollutionAnalysis
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		var a model.ZonePollutionAnalysis
		if err := json.Unmarshal([]byte(resultJSON), &a); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

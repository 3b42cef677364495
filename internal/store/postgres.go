package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/terrawatch/envzone/internal/db"
	"github.com/terrawatch/envzone/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	sqlGetZone        = `SELECT id, name, geometry, color, created_at, updated_at FROM zones WHERE id = $1`
	sqlListSensors    = `SELECT id, zone_id, name, type, active, created_at, updated_at FROM sensors WHERE zone_id = $1 ORDER BY created_at`
	sqlInsertReading  = `INSERT INTO readings (id, sensor_id, value, unit, recorded_at) VALUES ($1, $2, $3, $4, $5)`
	sqlLatestReading  = `SELECT value, unit, recorded_at FROM readings WHERE sensor_id = $1 ORDER BY recorded_at DESC LIMIT 1`
	sqlInsertAnalysis = `INSERT INTO analyses (id, zone_id, result, analyzed_at) VALUES ($1, $2, $3, $4)`
)

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_zone":        sqlGetZone,
	"list_sensors":    sqlListSensors,
	"insert_reading":  sqlInsertReading,
	"latest_reading":  sqlLatestReading,
	"insert_analysis": sqlInsertAnalysis,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for use by subsystems
// that need direct query access (e.g., bulk ingestion).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS zones (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	geometry   JSONB NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sensors (
	id         TEXT PRIMARY KEY,
	zone_id    TEXT NOT NULL REFERENCES zones(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL,
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS readings (
	id          TEXT PRIMARY KEY,
	sensor_id   TEXT NOT NULL REFERENCES sensors(id) ON DELETE CASCADE,
	value       DOUBLE PRECISION NOT NULL,
	unit        TEXT NOT NULL DEFAULT '',
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	id          TEXT PRIMARY KEY,
	zone_id     TEXT NOT NULL,
	result      JSONB NOT NULL,
	analyzed_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sensors_zone_id ON sensors(zone_id);
CREATE INDEX IF NOT EXISTS idx_readings_sensor_recorded ON readings(sensor_id, recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_zone_analyzed ON analyses(zone_id, analyzed_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateZone(ctx context.Context, zone model.Zone) (*model.Zone, error) {
	if zone.ID == "" {
		zone.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	zone.CreatedAt = now
	zone.UpdatedAt = now

	geomJSON, err := json.Marshal(zone.Geometry)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal geometry")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO zones (id, name, geometry, color, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		zone.ID, zone.Name, string(geomJSON), zone.Color, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert zone")
	}
	return &zone, nil
}

func (s *PostgresStore) GetZone(ctx context.Context, zoneID string) (*model.Zone, error) {
	row := s.pool.QueryRow(ctx, sqlGetZone, zoneID)

	var z model.Zone
	var geomJSON []byte
	err := row.Scan(&z.ID, &z.Name, &geomJSON, &z.Color, &z.CreatedAt, &z.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get zone %s", zoneID)
	}
	if err := json.Unmarshal(geomJSON, &z.Geometry); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal geometry for zone %s", zoneID)
	}
	return &z, nil
}

func (s *PostgresStore) ListZones(ctx context.Context) ([]model.Zone, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, geometry, color, created_at, updated_at FROM zones ORDER BY created_at`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list zones")
	}
	defer rows.Close()

	var zones []model.Zone
	for rows.Next() {
		var z model.Zone
		var geomJSON []byte
		if err := rows.Scan(&z.ID, &z.Name, &geomJSON, &z.Color, &z.CreatedAt, &z.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan zone")
		}
		if err := json.Unmarshal(geomJSON, &z.Geometry); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal geometry for zone %s", z.ID)
		}
		zones = append(zones, z)
	}
	return zones, eris.Wrap(rows.Err(), "postgres: list zones iterate")
}

func (s *PostgresStore) UpdateZone(ctx context.Context, zone model.Zone) error {
	geomJSON, err := json.Marshal(zone.Geometry)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal geometry")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE zones SET name = $1, geometry = $2, color = $3, updated_at = $4 WHERE id = $5`,
		zone.Name, string(geomJSON), zone.Color, time.Now().UTC(), zone.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update zone %s", zone.ID)
	}
	return checkTagAffected(tag, "zone", zone.ID)
}

func (s *PostgresStore) DeleteZone(ctx context.Context, zoneID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM zones WHERE id = $1`, zoneID)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete zone %s", zoneID)
	}
	return checkTagAffected(tag, "zone", zoneID)
}

func (s *PostgresStore) CreateSensor(ctx context.Context, sensor model.Sensor) (*model.Sensor, error) {
	if sensor.ID == "" {
		sensor.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	sensor.CreatedAt = now
	sensor.UpdatedAt = now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO sensors (id, zone_id, name, type, active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sensor.ID, sensor.ZoneID, sensor.Name, string(sensor.Type), sensor.Active, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert sensor")
	}
	return &sensor, nil
}

func (s *PostgresStore) ListSensors(ctx context.Context, zoneID string) ([]model.Sensor, error) {
	rows, err := s.pool.Query(ctx, sqlListSensors, zoneID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list sensors for zone %s", zoneID)
	}
	defer rows.Close()

	var sensors []model.Sensor
	for rows.Next() {
		var sn model.Sensor
		var typ string
		if err := rows.Scan(&sn.ID, &sn.ZoneID, &sn.Name, &typ, &sn.Active, &sn.CreatedAt, &sn.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sensor")
		}
		sn.Type = model.SensorType(typ)
		sensors = append(sensors, sn)
	}
	return sensors, eris.Wrap(rows.Err(), "postgres: list sensors iterate")
}

func (s *PostgresStore) SetSensorActive(ctx context.Context, sensorID string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sensors SET active = $1, updated_at = $2 WHERE id = $3`,
		active, time.Now().UTC(), sensorID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set sensor active %s", sensorID)
	}
	return checkTagAffected(tag, "sensor", sensorID)
}

func (s *PostgresStore) AddReading(ctx context.Context, sensorID string, reading model.Reading) error {
	recordedAt := reading.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, sqlInsertReading,
		uuid.New().String(), sensorID, reading.Value, reading.Unit, recordedAt,
	)
	return eris.Wrapf(err, "postgres: insert reading for sensor %s", sensorID)
}

func (s *PostgresStore) LatestReading(ctx context.Context, sensorID string) (*model.Reading, error) {
	row := s.pool.QueryRow(ctx, sqlLatestReading, sensorID)

	var r model.Reading
	err := row.Scan(&r.Value, &r.Unit, &r.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest reading for sensor %s", sensorID)
	}
	return &r, nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, analysis model.ZonePollutionAnalysis) error {
	resultJSON, err := json.Marshal(analysis)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal analysis")
	}

	analyzedAt := analysis.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}

	_, err = s.pool.Exec(ctx, sqlInsertAnalysis,
		uuid.New().String(), analysis.ZoneID, string(resultJSON), analyzedAt,
	)
	return eris.Wrapf(err, "postgres: insert analysis for zone %s", analysis.ZoneID)
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, zoneID string, limit int) ([]model.ZonePollutionAnalysis, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT result FROM analyses`
	var args []any
	if zoneID != "" {
		query += ` WHERE zone_id = $1 ORDER BY analyzed_at DESC LIMIT $2`
		args = append(args, zoneID, limit)
	} else {
		query += ` ORDER BY analyzed_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list analyses")
	}
	defer rows.Close()

	var analyses []model.ZonePollutionAnalysis
	for rows.Next() {
		var resultJSON []byte
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		var a model.ZonePollutionAnalysis
		if err := json.Unmarshal(resultJSON, &a); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal analysis")
		}
		analyses = append(analyses, a)
	}
	return analyses, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

// BulkAddReadings inserts a batch of readings with the COPY protocol.
func (s *PostgresStore) BulkAddReadings(ctx context.Context, readings []SensorReading) (int64, error) {
	rows := make([][]any, 0, len(readings))
	for _, sr := range readings {
		recordedAt := sr.Reading.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		rows = append(rows, []any{uuid.New().String(), sr.SensorID, sr.Reading.Value, sr.Reading.Unit, recordedAt})
	}
	return db.CopyFrom(ctx, s.pool, "readings", []string{"id", "sensor_id", "value", "unit", "recorded_at"}, rows)
}

// BulkUpsertZones inserts or refreshes a batch of zones keyed by id.
func (s *PostgresStore) BulkUpsertZones(ctx context.Context, zones []model.Zone) (int64, error) {
	now := time.Now().UTC()
	rows := make([][]any, 0, len(zones))
	for _, z := range zones {
		if z.ID == "" {
			z.ID = uuid.New().String()
		}
		geomJSON, err := json.Marshal(z.Geometry)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal geometry for zone %s", z.ID)
		}
		rows = append(rows, []any{z.ID, z.Name, string(geomJSON), z.Color, now, now})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "zones",
		Columns:      []string{"id", "name", "geometry", "color", "created_at", "updated_at"},
		ConflictKeys: []string{"id"},
		UpdateCols:   []string{"name", "geometry", "color", "updated_at"},
	}, rows)
}

// checkTagAffected converts a zero-row update into a descriptive error.
func checkTagAffected(tag pgconn.CommandTag, entity, id string) error {
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: %s %s not found", entity, id)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrawatch/envzone/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func testGeometry() model.Geometry {
	return model.Geometry{
		Kind: model.GeometryPolygon,
		Polygon: []model.Ring{{
			{10, 50}, {10.01, 50}, {10.01, 50.01}, {10, 50.01}, {10, 50},
		}},
	}
}

func TestPostgresStore_GetZone_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, name, geometry, color, created_at, updated_at FROM zones WHERE id = \$1`).
		WithArgs("missing-zone").
		WillReturnError(pgx.ErrNoRows)

	zone, err := s.GetZone(context.Background(), "missing-zone")
	require.NoError(t, err)
	assert.Nil(t, zone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetZone_Found(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	geomJSON, err := json.Marshal(testGeometry())
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, name, geometry, color, created_at, updated_at FROM zones WHERE id = \$1`).
		WithArgs("z1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "geometry", "color", "created_at", "updated_at"}).
			AddRow("z1", "Harbor", geomJSON, "#3b82f6", now, now))

	zone, err := s.GetZone(context.Background(), "z1")
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, "Harbor", zone.Name)
	assert.Equal(t, model.GeometryPolygon, zone.Geometry.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateZone_AssignsID(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO zones`).
		WithArgs(pgxmock.AnyArg(), "Harbor", pgxmock.AnyArg(), "#3b82f6", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	zone, err := s.CreateZone(context.Background(), model.Zone{
		Name:     "Harbor",
		Geometry: testGeometry(),
		Color:    "#3b82f6",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, zone.ID)
	assert.False(t, zone.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateZone_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE zones SET`).
		WithArgs("Harbor", pgxmock.AnyArg(), "", pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateZone(context.Background(), model.Zone{ID: "missing", Name: "Harbor", Geometry: testGeometry()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteZone(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM zones WHERE id = \$1`).
		WithArgs("z1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, s.DeleteZone(context.Background(), "z1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListSensors(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, zone_id, name, type, active, created_at, updated_at FROM sensors`).
		WithArgs("z1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "zone_id", "name", "type", "active", "created_at", "updated_at"}).
			AddRow("s1", "z1", "CO2 North", "co2", true, now, now).
			AddRow("s2", "z1", "Noise Gate", "noise", false, now, now))

	sensors, err := s.ListSensors(context.Background(), "z1")
	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, model.SensorCO2, sensors[0].Type)
	assert.False(t, sensors[1].Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LatestReading_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT value, unit, recorded_at FROM readings`).
		WithArgs("s1").
		WillReturnError(pgx.ErrNoRows)

	reading, err := s.LatestReading(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, reading)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveAnalysis(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO analyses`).
		WithArgs(pgxmock.AnyArg(), "z1", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveAnalysis(context.Background(), model.ZonePollutionAnalysis{
		ZoneID:       "z1",
		OverallLevel: model.LevelModerate,
		RiskScore:    42,
		AlertLevel:   model.AlertLow,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAnalyses_ZoneFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	payload, err := json.Marshal(model.ZonePollutionAnalysis{ZoneID: "z1", RiskScore: 70})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT result FROM analyses WHERE zone_id = \$1`).
		WithArgs("z1", 10).
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(payload))

	analyses, err := s.ListAnalyses(context.Background(), "z1", 10)
	require.NoError(t, err)
	require.Len(t, analyses, 1)
	assert.Equal(t, 70, analyses[0].RiskScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_BulkAddReadings(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"readings"}, []string{"id", "sensor_id", "value", "unit", "recorded_at"}).
		WillReturnResult(2)

	n, err := s.BulkAddReadings(context.Background(), []SensorReading{
		{SensorID: "s1", Reading: model.Reading{Value: 640, Unit: "ppm", RecordedAt: time.Now()}},
		{SensorID: "s2", Reading: model.Reading{Value: 58, Unit: "dB"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

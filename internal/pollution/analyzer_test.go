package pollution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrawatch/envzone/internal/model"
)

// stubSource serves canned readings keyed by sensor ID; absent IDs report
// no reading, mirroring a provider that swallowed a fetch failure.
type stubSource struct {
	readings map[string]model.Reading
}

func (s *stubSource) Latest(_ context.Context, sensorID string) (model.Reading, bool) {
	r, ok := s.readings[sensorID]
	return r, ok
}

func TestAnalyzeZone_EmptyZone(t *testing.T) {
	a := NewAnalyzer(DefaultPolicy(), &stubSource{})

	analysis := a.AnalyzeZone(context.Background(), "zone-1", nil)
	assert.Equal(t, model.LevelNoData, analysis.OverallLevel)
	assert.Equal(t, 0, analysis.RiskScore)
	assert.Equal(t, model.AlertNone, analysis.AlertLevel)
	assert.Empty(t, analysis.Factors)
	assert.Equal(t, []string{"Install more sensors to improve zone coverage"}, analysis.Recommendations)
}

func TestAnalyzeZone_InactiveAndMissingReadingsAreNoData(t *testing.T) {
	src := &stubSource{readings: map[string]model.Reading{
		"s1": {Value: 420, Unit: "ppm"},
	}}
	a := NewAnalyzer(DefaultPolicy(), src)

	sensors := []model.Sensor{
		{ID: "s1", Type: model.SensorCO2, Active: true},
		{ID: "s2", Type: model.SensorNoise, Active: true},  // no reading
		{ID: "s3", Type: model.SensorLight, Active: false}, // inactive
	}
	analysis := a.AnalyzeZone(context.Background(), "zone-1", sensors)

	require.Len(t, analysis.Sensors, 3)
	assert.Equal(t, model.LevelGood, analysis.Sensors[0].Level)
	assert.Equal(t, model.LevelNoData, analysis.Sensors[1].Level)
	assert.Equal(t, model.LevelNoData, analysis.Sensors[2].Level)
	assert.False(t, analysis.Sensors[2].Active)
	assert.Nil(t, analysis.Sensors[1].Value)

	// One good active sensor carries the zone.
	assert.Equal(t, model.LevelGood, analysis.OverallLevel)
	assert.Equal(t, model.AlertNone, analysis.AlertLevel)
}

func TestAnalyzeZone_ClassificationOrderFollowsSensorOrder(t *testing.T) {
	src := &stubSource{readings: map[string]model.Reading{
		"a": {Value: 34}, "b": {Value: 5200}, "c": {Value: 45},
	}}
	a := NewAnalyzer(DefaultPolicy(), src).WithConcurrency(3)

	sensors := []model.Sensor{
		{ID: "a", Type: model.SensorTemperature, Active: true},
		{ID: "b", Type: model.SensorCO2, Active: true},
		{ID: "c", Type: model.SensorHumidity, Active: true},
	}
	analysis := a.AnalyzeZone(context.Background(), "zone-1", sensors)

	require.Len(t, analysis.Sensors, 3)
	assert.Equal(t, "a", analysis.Sensors[0].SensorID)
	assert.Equal(t, "b", analysis.Sensors[1].SensorID)
	assert.Equal(t, "c", analysis.Sensors[2].SensorID)

	// Factor order follows sensor order despite concurrent fetches.
	require.Len(t, analysis.Factors, 2)
	assert.Equal(t, "High temperature (34.0°C)", analysis.Factors[0])
	assert.Equal(t, "High CO2 levels (5200 PPM)", analysis.Factors[1])
}

func TestAnalyzeZone_Invariant(t *testing.T) {
	a := NewAnalyzer(DefaultPolicy(), &stubSource{})

	sensors := []model.Sensor{
		{ID: "s1", Type: model.SensorCO2, Active: true},
		{ID: "s2", Type: model.SensorNoise, Active: false},
	}
	analysis := a.AnalyzeZone(context.Background(), "zone-1", sensors)

	// No active classified sensor: the full no-data invariant holds.
	assert.Equal(t, model.LevelNoData, analysis.OverallLevel)
	assert.Equal(t, 0, analysis.RiskScore)
	assert.Equal(t, model.AlertNone, analysis.AlertLevel)
}

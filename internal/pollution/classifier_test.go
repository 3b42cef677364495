package pollution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrawatch/envzone/internal/model"
)

func TestClassify_CO2Bands(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	tests := []struct {
		value float64
		want  model.PollutionLevel
	}{
		{400, model.LevelGood},
		{1500, model.LevelModerate},
		{3000, model.LevelUnhealthy},
		{6000, model.LevelDangerous},
		// Boundary continuity at the band edges.
		{1000, model.LevelGood},
		{1001, model.LevelModerate},
		{2000, model.LevelModerate},
		{2001, model.LevelUnhealthy},
		{5000, model.LevelUnhealthy},
		{5001, model.LevelDangerous},
		// Below the good band floor.
		{100, model.LevelDangerous},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(model.SensorCO2, tt.value), "co2 %v", tt.value)
	}
}

func TestClassify_AllTypes(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	tests := []struct {
		name  string
		typ   model.SensorType
		value float64
		want  model.PollutionLevel
	}{
		{"comfortable temperature", model.SensorTemperature, 22, model.LevelGood},
		{"warm temperature", model.SensorTemperature, 28, model.LevelModerate},
		{"hot temperature", model.SensorTemperature, 33, model.LevelUnhealthy},
		{"freezing temperature", model.SensorTemperature, 2, model.LevelDangerous},
		{"balanced humidity", model.SensorHumidity, 50, model.LevelGood},
		{"dry air", model.SensorHumidity, 25, model.LevelUnhealthy},
		{"saturated air", model.SensorHumidity, 95, model.LevelDangerous},
		{"clean air", model.SensorAirQuality, 30, model.LevelGood},
		{"smoggy air", model.SensorAirQuality, 150, model.LevelUnhealthy},
		{"hazardous air", model.SensorAirQuality, 250, model.LevelDangerous},
		{"quiet street", model.SensorNoise, 40, model.LevelGood},
		{"busy street", model.SensorNoise, 65, model.LevelModerate},
		{"construction site", model.SensorNoise, 80, model.LevelUnhealthy},
		{"jet engine", model.SensorNoise, 120, model.LevelDangerous},
		{"office lighting", model.SensorLight, 500, model.LevelGood},
		{"dim corridor", model.SensorLight, 75, model.LevelUnhealthy},
		{"near darkness", model.SensorLight, 10, model.LevelDangerous},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.typ, tt.value))
		})
	}
}

// Classify is total over finite values: every known type and value lands in
// one of the four real bands, never no-data.
func TestClassify_NeverNoData(t *testing.T) {
	c := NewClassifier(DefaultPolicy())

	values := []float64{-1e9, -273, -50, -1, 0, 0.5, 1, 9, 49, 55, 99, 101, 350, 999, 1000.5, 2500, 4999, 10000, 1e9}
	for _, typ := range model.SensorTypes {
		for _, v := range values {
			level := c.Classify(typ, v)
			require.NotEqual(t, model.LevelNoData, level, "type %s value %v", typ, v)
		}
	}
}

func TestClassify_UnknownType(t *testing.T) {
	c := NewClassifier(DefaultPolicy())
	assert.Equal(t, model.LevelNoData, c.Classify(model.SensorType("radiation"), 10))
}

func TestLoadPolicy_MissingFileKeepsDefaults(t *testing.T) {
	p, err := LoadPolicy("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Equal(t, DefaultPolicy(), p)
}

package model

import "time"

// SensorType identifies what a sensor measures. The set is closed: every
// switch over SensorType in this module enumerates all six values so that
// adding a type is a compile-visible change.
type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorHumidity    SensorType = "humidity"
	SensorAirQuality  SensorType = "air_quality"
	SensorCO2         SensorType = "co2"
	SensorNoise       SensorType = "noise"
	SensorLight       SensorType = "light"
)

// SensorTypes lists all supported sensor types in canonical order.
var SensorTypes = []SensorType{
	SensorTemperature,
	SensorHumidity,
	SensorAirQuality,
	SensorCO2,
	SensorNoise,
	SensorLight,
}

// Valid reports whether t is one of the supported sensor types.
func (t SensorType) Valid() bool {
	switch t {
	case SensorTemperature, SensorHumidity, SensorAirQuality, SensorCO2, SensorNoise, SensorLight:
		return true
	}
	return false
}

// Unit returns the measurement unit readings of this type are expressed in.
func (t SensorType) Unit() string {
	switch t {
	case SensorTemperature:
		return "°C"
	case SensorHumidity:
		return "%"
	case SensorAirQuality:
		return "AQI"
	case SensorCO2:
		return "ppm"
	case SensorNoise:
		return "dB"
	case SensorLight:
		return "lux"
	}
	return ""
}

// PollutionLevel is the classification band for a reading or a zone
// aggregate. Levels are ordered good < moderate < unhealthy < dangerous;
// LevelNoData is an unordered sentinel meaning "excluded from aggregation".
type PollutionLevel string

const (
	LevelGood      PollutionLevel = "good"
	LevelModerate  PollutionLevel = "moderate"
	LevelUnhealthy PollutionLevel = "unhealthy"
	LevelDangerous PollutionLevel = "dangerous"
	LevelNoData    PollutionLevel = "no-data"
)

// Color returns the fixed presentation color for a level. Presentation
// hint only, never consulted by scoring.
func (l PollutionLevel) Color() string {
	switch l {
	case LevelGood:
		return "#22c55e"
	case LevelModerate:
		return "#eab308"
	case LevelUnhealthy:
		return "#f97316"
	case LevelDangerous:
		return "#ef4444"
	}
	return "#9ca3af"
}

// Icon returns the fixed icon name for a level.
func (l PollutionLevel) Icon() string {
	switch l {
	case LevelGood:
		return "check-circle"
	case LevelModerate:
		return "alert-circle"
	case LevelUnhealthy:
		return "alert-triangle"
	case LevelDangerous:
		return "alert-octagon"
	}
	return "help-circle"
}

// AlertLevel is the zone alert severity derived from the risk score and
// overall pollution level.
type AlertLevel string

const (
	AlertNone     AlertLevel = "none"
	AlertLow      AlertLevel = "low"
	AlertMedium   AlertLevel = "medium"
	AlertHigh     AlertLevel = "high"
	AlertCritical AlertLevel = "critical"
)

// Severity returns a comparable rank for an alert level, none=0 through
// critical=4.
func (a AlertLevel) Severity() int {
	switch a {
	case AlertLow:
		return 1
	case AlertMedium:
		return 2
	case AlertHigh:
		return 3
	case AlertCritical:
		return 4
	}
	return 0
}

// Reading is a single measurement taken by a sensor. Only the latest
// reading per sensor is consulted during analysis.
type Reading struct {
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Sensor is a registered measurement device attached to a zone.
type Sensor struct {
	ID        string     `json:"id"`
	ZoneID    string     `json:"zone_id"`
	Name      string     `json:"name"`
	Type      SensorType `json:"type"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// SensorClassification is the per-sensor outcome of one analysis pass.
// Value is nil when the sensor had no usable reading.
type SensorClassification struct {
	SensorID string         `json:"sensorId"`
	Name     string         `json:"name,omitempty"`
	Type     SensorType     `json:"type"`
	Level    PollutionLevel `json:"level"`
	Value    *float64       `json:"value,omitempty"`
	Active   bool           `json:"active"`
}

// ZonePollutionAnalysis is the full sensor-based assessment of a zone.
//
/// RiskScore is clamped to [0,100]. A zone with no active classified
// sensors reports the no-data level, a zero risk score, and no alert.
type ZonePollutionAnalysis struct {
	ZoneID          string                 `json:"zoneId,omitempty"`
	OverallLevel    PollutionLevel         `json:"overallLevel"`
	RiskScore       int                    `json:"riskScore"`
	AlertLevel      AlertLevel             `json:"alertLevel"`
	Factors         []string               `json:"factors"`
	Recommendations []string               `json:"recommendations"`
	Sensors         []SensorClassification `json:"sensors"`
	AnalyzedAt      time.Time              `json:"analyzedAt,omitempty"`
}

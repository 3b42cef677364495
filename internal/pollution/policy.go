// Package pollution implements the sensor classification, zone aggregation,
// alerting, and diagnostic text generation that make up the pollution risk
// engine. All entry points are pure functions over in-memory values; expected
// data gaps (inactive sensors, missing readings, empty zones) surface as the
// no-data sentinel, never as errors.
package pollution

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/terrawatch/envzone/internal/model"
)

// Band is an inclusive [Min, Max] value range.
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v falls inside the band, bounds inclusive.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Thresholds holds the classification bands and aggregation weight for one
// sensor type. Bands are nested, not disjoint: Good sits inside Moderate,
// Moderate inside Unhealthy, and classification checks them in that order.
// Values outside Unhealthy classify as dangerous.
type Thresholds struct {
	Good      Band    `yaml:"good"`
	Moderate  Band    `yaml:"moderate"`
	Unhealthy Band    `yaml:"unhealthy"`
	Weight    float64 `yaml:"weight"`
}

// Policy is the immutable threshold and weight configuration injected into
// the classifier and aggregator. Alternate policies can be loaded from YAML
// for testing or regional regulation differences.
type Policy struct {
	Temperature Thresholds `yaml:"temperature"`
	Humidity    Thresholds `yaml:"humidity"`
	AirQuality  Thresholds `yaml:"air_quality"`
	CO2         Thresholds `yaml:"co2"`
	Noise       Thresholds `yaml:"noise"`
	Light       Thresholds `yaml:"light"`
}

// DefaultPolicy returns the built-in threshold and weight tables.
func DefaultPolicy() Policy {
	return Policy{
		Temperature: Thresholds{
			Good:      Band{18, 26},
			Moderate:  Band{15, 30},
			Unhealthy: Band{10, 35},
			Weight:    1.2,
		},
		Humidity: Thresholds{
			Good:      Band{40, 60},
			Moderate:  Band{30, 70},
			Unhealthy: Band{20, 80},
			Weight:    1.0,
		},
		AirQuality: Thresholds{
			Good:      Band{0, 50},
			Moderate:  Band{51, 100},
			Unhealthy: Band{101, 200},
			Weight:    1.5,
		},
		CO2: Thresholds{
			Good:      Band{350, 1000},
			Moderate:  Band{1001, 2000},
			Unhealthy: Band{2001, 5000},
			Weight:    1.5,
		},
		Noise: Thresholds{
			Good:      Band{0, 55},
			Moderate:  Band{56, 70},
			Unhealthy: Band{71, 85},
			Weight:    1.2,
		},
		Light: Thresholds{
			Good:      Band{200, 1000},
			Moderate:  Band{100, 2000},
			Unhealthy: Band{50, 5000},
			Weight:    1.0,
		},
	}
}

// LoadPolicy reads a threshold policy from a YAML file. Types omitted from
// the file keep their built-in defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, eris.Wrapf(err, "pollution: read policy %s", path)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, eris.Wrapf(err, "pollution: parse policy %s", path)
	}
	return p, nil
}

// thresholdsFor resolves the threshold entry for a sensor type. The switch
// is exhaustive over model.SensorTypes; ok is false only for a type the
// build does not know about.
func (p Policy) thresholdsFor(t model.SensorType) (Thresholds, bool) {
	switch t {
	case model.SensorTemperature:
		return p.Temperature, true
	case model.SensorHumidity:
		return p.Humidity, true
	case model.SensorAirQuality:
		return p.AirQuality, true
	case model.SensorCO2:
		return p.CO2, true
	case model.SensorNoise:
		return p.Noise, true
	case model.SensorLight:
		return p.Light, true
	}
	return Thresholds{}, false
}

// WeightFor returns the aggregation base weight for a sensor type, 1.0 for
// unknown types.
func (p Policy) WeightFor(t model.SensorType) float64 {
	th, ok := p.thresholdsFor(t)
	if !ok || th.Weight <= 0 {
		return 1.0
	}
	return th.Weight
}

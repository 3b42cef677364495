package pollution

import (
	"fmt"

	"github.com/terrawatch/envzone/internal/model"
)

// Fixed comparison thresholds deciding whether a problem reading is a
// "too high" or a "too low" one.
const (
	highTemperatureCutoff = 30.0  // °C
	highHumidityCutoff    = 70.0  // %
	highLightCutoff       = 100.0 // lux
)

// Factors renders one human-readable diagnostic per unhealthy or dangerous
// sensor, preserving the input order. Duplicate strings are kept: two bad
// temperature sensors are two factors.
func Factors(classifications []model.SensorClassification) []string {
	factors := []string{}
	for _, c := range classifications {
		if c.Level != model.LevelUnhealthy && c.Level != model.LevelDangerous {
			continue
		}
		if c.Value == nil {
			continue
		}
		factors = append(factors, factorFor(c.Type, *c.Value))
	}
	return factors
}

func factorFor(t model.SensorType, v float64) string {
	switch t {
	case model.SensorTemperature:
		if v > highTemperatureCutoff {
			return fmt.Sprintf("High temperature (%.1f°C)", v)
		}
		return fmt.Sprintf("Low temperature (%.1f°C)", v)
	case model.SensorHumidity:
		if v > highHumidityCutoff {
			return fmt.Sprintf("High humidity (%.0f%%)", v)
		}
		return fmt.Sprintf("Low humidity (%.0f%%)", v)
	case model.SensorAirQuality:
		return fmt.Sprintf("Poor air quality (AQI %.0f)", v)
	case model.SensorCO2:
		return fmt.Sprintf("High CO2 levels (%.0f PPM)", v)
	case model.SensorNoise:
		return fmt.Sprintf("Excessive noise (%.0f dB)", v)
	case model.SensorLight:
		if v > highLightCutoff {
			return fmt.Sprintf("Excessive lighting (%.0f lux)", v)
		}
		return fmt.Sprintf("Insufficient lighting (%.0f lux)", v)
	}
	return fmt.Sprintf("Abnormal %s reading (%.1f)", t, v)
}

// Recommendations renders remediation advice for every problem sensor plus
// one banner for the zone's overall level. The list is de-duplicated with
// first-seen order.
func Recommendations(classifications []model.SensorClassification, overall model.PollutionLevel) []string {
	recs := []string{}
	seen := make(map[string]struct{})
	add := func(r string) {
		if _, dup := seen[r]; dup {
			return
		}
		seen[r] = struct{}{}
		recs = append(recs, r)
	}

	for _, c := range classifications {
		if c.Level != model.LevelUnhealthy && c.Level != model.LevelDangerous {
			continue
		}
		if c.Value == nil {
			continue
		}
		add(recommendationFor(c.Type, *c.Value))
	}

	add(bannerFor(overall))
	return recs
}

func recommendationFor(t model.SensorType, v float64) string {
	switch t {
	case model.SensorTemperature:
		if v > highTemperatureCutoff {
			return "Improve cooling in affected areas"
		}
		return "Improve heating in affected areas"
	case model.SensorHumidity:
		if v > highHumidityCutoff {
			return "Deploy dehumidifiers and check for water intrusion"
		}
		return "Deploy humidifiers to raise moisture levels"
	case model.SensorAirQuality:
		return "Run air filtration and investigate pollutant sources"
	case model.SensorCO2:
		return "Increase ventilation to reduce CO2 buildup"
	case model.SensorNoise:
		return "Install noise barriers or restrict noisy activity"
	case model.SensorLight:
		if v > highLightCutoff {
			return "Reduce lighting intensity in over-lit areas"
		}
		return "Improve lighting coverage in under-lit areas"
	}
	return "Inspect sensor installation"
}

func bannerFor(overall model.PollutionLevel) string {
	switch overall {
	case model.LevelDangerous:
		return "Dangerous pollution levels detected, consider evacuation of the zone"
	case model.LevelUnhealthy:
		return "Limit exposure time within the zone"
	case model.LevelModerate:
		return "Monitor zone conditions closely"
	case model.LevelGood:
		return "All readings within acceptable ranges"
	default:
		return "Install more sensors to improve zone coverage"
	}
}

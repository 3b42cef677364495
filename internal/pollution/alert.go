package pollution

import "github.com/terrawatch/envzone/internal/model"

// AlertFor maps a risk score and overall pollution level to an alert level.
// The score bands are checked first, top to bottom; the overall level only
// decides for scores below 35. A dangerous zone at a low score still raises
// a high alert, not a critical one.
func AlertFor(riskScore int, overall model.PollutionLevel) model.AlertLevel {
	switch {
	case riskScore >= 90:
		return model.AlertCritical
	case riskScore >= 80:
		return model.AlertHigh
	case riskScore >= 60:
		return model.AlertMedium
	case riskScore >= 35:
		return model.AlertLow
	}

	switch overall {
	case model.LevelDangerous:
		return model.AlertHigh
	case model.LevelUnhealthy:
		return model.AlertMedium
	case model.LevelModerate:
		return model.AlertLow
	default:
		// good and no-data both stay silent.
		return model.AlertNone
	}
}

package pollution

import "github.com/terrawatch/envzone/internal/model"

// Classifier maps a single reading to a pollution band using the injected
// policy. It is a total, deterministic function over finite values.
type Classifier struct {
	policy Policy
}

// NewClassifier creates a Classifier with the given threshold policy.
func NewClassifier(policy Policy) *Classifier {
	return &Classifier{policy: policy}
}

// Classify returns the pollution band for a reading value. Bands are checked
// good, then moderate, then unhealthy; the order is the tie-break, since bands nest.
// Values outside every band are dangerous. Only a sensor type unknown to
// this build yields no-data; callers handle inactive or reading-less sensors
// themselves and never call Classify for them.
func (c *Classifier) Classify(t model.SensorType, value float64) model.PollutionLevel {
	th, ok := c.policy.thresholdsFor(t)
	if !ok {
		return model.LevelNoData
	}

	switch {
	case th.Good.Contains(value):
		return model.LevelGood
	case th.Moderate.Contains(value):
		return model.LevelModerate
	case th.Unhealthy.Contains(value):
		return model.LevelUnhealthy
	default:
		return model.LevelDangerous
	}
}

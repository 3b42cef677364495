package pollution

import (
	"math"

	"github.com/terrawatch/envzone/internal/model"
)

// Base risk contribution per classification band.
const (
	scoreGood      = 5.0
	scoreModerate  = 35.0
	scoreUnhealthy = 70.0
	scoreDangerous = 95.0
)

// multiProblemBoost is applied to a type's weight when more than one sensor
// of that type reads unhealthy or dangerous.
const multiProblemBoost = 1.2

// Aggregator combines per-sensor classifications into a zone-level pollution
// level and weighted risk score.
type Aggregator struct {
	policy Policy
}

// NewAggregator creates an Aggregator with the given policy.
func NewAggregator(policy Policy) *Aggregator {
	return &Aggregator{policy: policy}
}

// activeOnly filters to classifications that participate in aggregation:
// active sensors with a real band.
func activeOnly(classifications []model.SensorClassification) []model.SensorClassification {
	var out []model.SensorClassification
	for _, c := range classifications {
		if c.Active && c.Level != model.LevelNoData {
			out = append(out, c)
		}
	}
	return out
}

// OverallLevel derives the zone-wide pollution level from the share of
// sensors in each band. Percentages are computed over active classified
// sensors only; an empty set yields no-data.
func (a *Aggregator) OverallLevel(classifications []model.SensorClassification) model.PollutionLevel {
	active := activeOnly(classifications)
	if len(active) == 0 {
		return model.LevelNoData
	}

	var dangerous, unhealthy, moderate, good int
	for _, c := range active {
		switch c.Level {
		case model.LevelDangerous:
			dangerous++
		case model.LevelUnhealthy:
			unhealthy++
		case model.LevelModerate:
			moderate++
		case model.LevelGood:
			good++
		}
	}

	total := float64(len(active))
	dangerousPct := float64(dangerous) / total * 100
	unhealthyPct := float64(unhealthy) / total * 100
	moderatePct := float64(moderate) / total * 100
	goodPct := float64(good) / total * 100
	problemPct := dangerousPct + unhealthyPct
	concernPct := problemPct + moderatePct

	switch {
	case dangerousPct >= 50 || problemPct >= 80:
		return model.LevelDangerous
	case dangerousPct >= 25 || problemPct >= 50:
		return model.LevelUnhealthy
	case dangerousPct > 0 || unhealthyPct >= 25 || concernPct >= 50:
		return model.LevelModerate
	case goodPct >= 70:
		return model.LevelGood
	default:
		return model.LevelModerate
	}
}

// levelScore returns the base risk contribution for a band, 0 for no-data.
func levelScore(l model.PollutionLevel) float64 {
	switch l {
	case model.LevelGood:
		return scoreGood
	case model.LevelModerate:
		return scoreModerate
	case model.LevelUnhealthy:
		return scoreUnhealthy
	case model.LevelDangerous:
		return scoreDangerous
	}
	return 0
}

// RiskScore computes the weighted 0-100 zone risk score. Sensors are grouped
// by type; each type contributes the score of its worst sensor, weighted by
// the policy weight, boosted when several sensors of the type are in trouble.
// A diversity multiplier dampens broad-but-localized problems (many types,
// few affected) and amplifies narrow coverage (one or two types).
func (a *Aggregator) RiskScore(classifications []model.SensorClassification) int {
	active := activeOnly(classifications)
	if len(active) == 0 {
		return 0
	}

	type typeStats struct {
		worst    float64
		problems int
	}
	byType := make(map[model.SensorType]*typeStats)
	var order []model.SensorType

	for _, c := range active {
		st, ok := byType[c.Type]
		if !ok {
			st = &typeStats{}
			byType[c.Type] = st
			order = append(order, c.Type)
		}
		// Strict > keeps the first maximum on ties.
		if s := levelScore(c.Level); s > st.worst {
			st.worst = s
		}
		if c.Level == model.LevelUnhealthy || c.Level == model.LevelDangerous {
			st.problems++
		}
	}

	var weightedScore, totalWeight float64
	problemTypes := 0
	for _, t := range order {
		st := byType[t]
		weight := a.policy.WeightFor(t)
		if st.problems > 1 {
			weight *= multiProblemBoost
		}
		if st.problems > 0 {
			problemTypes++
		}
		weightedScore += st.worst * weight
		totalWeight += weight
	}

	average := 0.0
	if totalWeight > 0 {
		average = weightedScore / totalWeight
	}

	multiplier := 1.0
	n := len(order)
	switch {
	case n >= 4 && float64(problemTypes)/float64(n) < 0.5:
		multiplier = 0.9
	case n <= 2:
		multiplier = 1.1
	}

	score := int(math.Round(average * multiplier))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

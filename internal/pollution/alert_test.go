package pollution

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/terrawatch/envzone/internal/model"
)

// The alert table is an exact lookup, not a monotone function: the score
// bands win first, and only sub-35 scores fall through to the overall level.
func TestAlertFor_ExactTable(t *testing.T) {
	tests := []struct {
		score   int
		overall model.PollutionLevel
		want    model.AlertLevel
	}{
		{95, model.LevelGood, model.AlertCritical},
		{90, model.LevelNoData, model.AlertCritical},
		{85, model.LevelGood, model.AlertHigh},
		{80, model.LevelModerate, model.AlertHigh},
		{65, model.LevelGood, model.AlertMedium},
		{60, model.LevelDangerous, model.AlertMedium},
		{40, model.LevelGood, model.AlertLow},
		{35, model.LevelNoData, model.AlertLow},
		// Below 35 the overall level decides.
		{28, model.LevelDangerous, model.AlertHigh}, // not critical
		{10, model.LevelDangerous, model.AlertHigh},
		{10, model.LevelUnhealthy, model.AlertMedium},
		{10, model.LevelModerate, model.AlertLow},
		{10, model.LevelGood, model.AlertNone},
		{0, model.LevelNoData, model.AlertNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AlertFor(tt.score, tt.overall),
			"score=%d overall=%s", tt.score, tt.overall)
	}
}

// With a calm overall level the fallback contributes nothing, so severity
// strictly follows the score bands. The dangerous/unhealthy fallback rows
// deliberately break monotonicity below 35 and are pinned by the exact
// table above instead.
func TestAlertFor_ScoreBandsNonDecreasing(t *testing.T) {
	for _, overall := range []model.PollutionLevel{model.LevelGood, model.LevelNoData} {
		prev := -1
		for _, score := range []int{10, 40, 65, 85, 95} {
			sev := AlertFor(score, overall).Severity()
			assert.GreaterOrEqual(t, sev, prev, "overall=%s score=%d", overall, score)
			prev = sev
		}
	}
}

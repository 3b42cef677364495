package pollution

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/terrawatch/envzone/internal/model"
)

// ReadingSource supplies the latest reading for a sensor. A false ok means
// "no reading available"; implementations swallow transport failures and map
// them to ok=false rather than returning errors (retry policy, if any, lives
// inside the implementation, never here).
type ReadingSource interface {
	Latest(ctx context.Context, sensorID string) (model.Reading, bool)
}

// defaultFetchConcurrency bounds the per-zone reading fan-out.
const defaultFetchConcurrency = 8

// Analyzer runs the full sensor-based assessment of a zone: fetch latest
// readings, classify, aggregate, alert, and generate diagnostics.
type Analyzer struct {
	classifier  *Classifier
	aggregator  *Aggregator
	source      ReadingSource
	concurrency int
}

// NewAnalyzer creates an Analyzer over the given policy and reading source.
func NewAnalyzer(policy Policy, source ReadingSource) *Analyzer {
	return &Analyzer{
		classifier:  NewClassifier(policy),
		aggregator:  NewAggregator(policy),
		source:      source,
		concurrency: defaultFetchConcurrency,
	}
}

// WithConcurrency overrides the reading fetch fan-out width.
func (a *Analyzer) WithConcurrency(n int) *Analyzer {
	if n > 0 {
		a.concurrency = n
	}
	return a
}

// AnalyzeZone assesses one zone from its registered sensors. It never fails:
// sensors that are inactive or have no reading classify as no-data, and a
// zone with no usable sensors yields the no-data/0/none analysis. Reading
// fetches fan out concurrently; classification order follows sensor order.
func (a *Analyzer) AnalyzeZone(ctx context.Context, zoneID string, sensors []model.Sensor) model.ZonePollutionAnalysis {
	log := zap.L().With(zap.String("zone_id", zoneID))

	classifications := make([]model.SensorClassification, len(sensors))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, s := range sensors {
		g.Go(func() error {
			classifications[i] = a.classifySensor(gctx, s)
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	overall := a.aggregator.OverallLevel(classifications)
	score := a.aggregator.RiskScore(classifications)
	alert := AlertFor(score, overall)

	if overall == model.LevelNoData {
		log.Info("analysis incomplete: no active sensor data", zap.Int("sensors", len(sensors)))
	} else {
		log.Debug("zone analyzed",
			zap.String("overall", string(overall)),
			zap.Int("risk_score", score),
			zap.String("alert", string(alert)),
		)
	}

	return model.ZonePollutionAnalysis{
		ZoneID:          zoneID,
		OverallLevel:    overall,
		RiskScore:       score,
		AlertLevel:      alert,
		Factors:         Factors(classifications),
		Recommendations: Recommendations(classifications, overall),
		Sensors:         classifications,
		AnalyzedAt:      time.Now().UTC(),
	}
}

// classifySensor resolves one sensor to its classification. Inactive sensors
// and sensors without a latest reading are no-data and skip classification
// entirely.
func (a *Analyzer) classifySensor(ctx context.Context, s model.Sensor) model.SensorClassification {
	c := model.SensorClassification{
		SensorID: s.ID,
		Name:     s.Name,
		Type:     s.Type,
		Level:    model.LevelNoData,
		Active:   s.Active,
	}
	if !s.Active {
		return c
	}

	reading, ok := a.source.Latest(ctx, s.ID)
	if !ok {
		return c
	}

	v := reading.Value
	c.Value = &v
	c.Level = a.classifier.Classify(s.Type, v)
	return c
}

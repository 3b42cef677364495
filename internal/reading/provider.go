// Package reading supplies the latest sensor measurements to the
// analysis engine, either from the local store or a remote gateway.
package reading

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/config"
	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/pollution"
	"github.com/terrawatch/envzone/internal/store"
)

// StoreProvider serves readings from the local database.
type StoreProvider struct {
	store store.Store
}

// NewStoreProvider creates a provider backed by the given store.
func NewStoreProvider(st store.Store) *StoreProvider {
	return &StoreProvider{store: st}
}

// Latest returns the most recent reading for the sensor. Store errors are
// logged and reported as missing so one bad sensor cannot fail a whole
// zone analysis.
func (p *StoreProvider) Latest(ctx context.Context, sensorID string) (model.Reading, bool) {
	r, err := p.store.LatestReading(ctx, sensorID)
	if err != nil {
		zap.L().Warn("reading: store lookup failed",
			zap.String("sensor_id", sensorID),
			zap.Error(err),
		)
		return model.Reading{}, false
	}
	if r == nil {
		return model.Reading{}, false
	}
	return *r, true
}

// NewFromConfig selects the reading source: the gateway when a URL is
// configured, the local store otherwise.
func NewFromConfig(cfg config.ReadingsConfig, st store.Store) pollution.ReadingSource {
	if cfg.GatewayURL != "" {
		return NewGatewayProvider(GatewayOptions{
			BaseURL:   cfg.GatewayURL,
			RateLimit: cfg.RateLimit,
			Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
		})
	}
	return NewStoreProvider(st)
}

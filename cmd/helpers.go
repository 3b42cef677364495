package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/terrawatch/envzone/internal/pollution"
	"github.com/terrawatch/envzone/internal/reading"
	"github.com/terrawatch/envzone/internal/store"
)

// initStore opens the configured store and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// loadPolicy returns the threshold policy, applying the optional file override.
func loadPolicy() (pollution.Policy, error) {
	if cfg.Pollution.PolicyFile == "" {
		return pollution.DefaultPolicy(), nil
	}
	return pollution.LoadPolicy(cfg.Pollution.PolicyFile)
}

// newAnalyzer builds the zone analyzer against the configured reading source.
func newAnalyzer(st store.Store) (*pollution.Analyzer, error) {
	policy, err := loadPolicy()
	if err != nil {
		return nil, err
	}
	source := reading.NewFromConfig(cfg.Readings, st)
	analyzer := pollution.NewAnalyzer(policy, source)
	if cfg.Readings.Concurrency > 0 {
		analyzer = analyzer.WithConcurrency(cfg.Readings.Concurrency)
	}
	return analyzer, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode result")
	}
	fmt.Println(string(data))
	return nil
}

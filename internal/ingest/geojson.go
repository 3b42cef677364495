package ingest

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	geojson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terrawatch/envzone/internal/geo"
	"github.com/terrawatch/envzone/internal/model"
)

// ParseGeoJSONZones reads a GeoJSON FeatureCollection and converts each
// feature into a zone. Feature properties "name", "color", and "radius_m"
// are honored; a Point feature with radius_m becomes a circle zone.
func ParseGeoJSONZones(path string) ([]model.Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read geojson %s", path)
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "ingest: decode geojson %s", path)
	}

	zones := make([]model.Zone, 0, len(fc.Features))
	for i, feature := range fc.Features {
		radiusM := propFloat(feature.Properties, "radius_m")
		geometry, err := geo.FromGeom(feature.Geometry, radiusM)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: feature %d", i)
		}

		name := propString(feature.Properties, "name")
		if name == "" {
			name = "Imported zone"
		}

		zones = append(zones, model.Zone{
			ID:       feature.ID,
			Name:     name,
			Geometry: geometry,
			Color:    propString(feature.Properties, "color"),
		})
	}
	return zones, nil
}

func propString(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func propFloat(props map[string]any, key string) float64 {
	if f, ok := props[key].(float64); ok {
		return f
	}
	return 0
}

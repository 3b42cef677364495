package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrawatch/envzone/internal/model"
)

func TestGeoJSON_PolygonRoundTrip(t *testing.T) {
	g := square(10, 0, 0.01)

	data, err := MarshalGeoJSON(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Polygon"`)

	back, err := UnmarshalGeoJSON(data, 0)
	require.NoError(t, err)
	assert.Equal(t, model.GeometryPolygon, back.Kind)
	require.Len(t, back.Polygon, 1)
	assert.Equal(t, g.Polygon[0], back.Polygon[0])
}

func TestGeoJSON_CircleAsPointPlusRadius(t *testing.T) {
	g := circle(10, 45, 750)

	data, err := MarshalGeoJSON(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Point"`)

	back, err := UnmarshalGeoJSON(data, 750)
	require.NoError(t, err)
	assert.Equal(t, model.GeometryCircle, back.Kind)
	assert.Equal(t, g.Center, back.Center)
	assert.Equal(t, 750.0, back.RadiusM)
}

func TestGeoJSON_MultiPolygon(t *testing.T) {
	g := model.Geometry{
		Kind: model.GeometryMultiPolygon,
		MultiPolygon: [][]model.Ring{
			square(10, 0, 0.01).Polygon,
			square(11, 0, 0.01).Polygon,
		},
	}

	data, err := MarshalGeoJSON(g)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"MultiPolygon"`)

	back, err := UnmarshalGeoJSON(data, 0)
	require.NoError(t, err)
	assert.Equal(t, model.GeometryMultiPolygon, back.Kind)
	assert.Len(t, back.MultiPolygon, 2)
}

func TestGeoJSON_UnsupportedKind(t *testing.T) {
	_, err := MarshalGeoJSON(model.Geometry{Kind: model.GeometryKind("line")})
	assert.Error(t, err)
}

func TestGeoJSON_UnsupportedPayload(t *testing.T) {
	_, err := UnmarshalGeoJSON([]byte(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`), 0)
	assert.Error(t, err)
}

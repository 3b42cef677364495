package ingest

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrawatch/envzone/internal/model"
)

func TestPolygonToGeometry_SinglePart(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points: []shp.Point{
			{X: 13.0, Y: 52.0},
			{X: 13.0, Y: 52.1},
			{X: 13.1, Y: 52.1},
			{X: 13.1, Y: 52.0},
			{X: 13.0, Y: 52.0},
		},
	}

	g, ok := polygonToGeometry(poly)
	require.True(t, ok)
	assert.Equal(t, model.GeometryPolygon, g.Kind)
	require.Len(t, g.Polygon, 1)
	assert.Len(t, g.Polygon[0], 5)
	assert.Equal(t, model.LngLat{13.0, 52.0}, g.Polygon[0][0])
}

func TestPolygonToGeometry_MultiPart(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
			{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}, {X: 5, Y: 5},
		},
	}

	g, ok := polygonToGeometry(poly)
	require.True(t, ok)
	assert.Equal(t, model.GeometryMultiPolygon, g.Kind)
	assert.Len(t, g.MultiPolygon, 2)
}

func TestPolygonToGeometry_Empty(t *testing.T) {
	_, ok := polygonToGeometry(nil)
	assert.False(t, ok)

	_, ok = polygonToGeometry(&shp.Polygon{})
	assert.False(t, ok)
}

func TestParseShapefileZones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{shp.StringField("NAME", 40)}))

	w.Write(&shp.Polygon{
		NumParts:  1,
		NumPoints: 5,
		Parts:     []int32{0},
		Points: []shp.Point{
			{X: 13.0, Y: 52.0},
			{X: 13.0, Y: 52.1},
			{X: 13.1, Y: 52.1},
			{X: 13.1, Y: 52.0},
			{X: 13.0, Y: 52.0},
		},
	})
	require.NoError(t, w.WriteAttribute(0, 0, "HARBOR DISTRICT"))
	w.Close()

	zones, err := ParseShapefileZones(path, ShapefileOptions{})
	require.NoError(t, err)
	require.Len(t, zones, 1)

	// ALL CAPS attribute names are title-cased.
	assert.Equal(t, "Harbor District", zones[0].Name)
	assert.Equal(t, model.GeometryPolygon, zones[0].Geometry.Kind)
}

func TestParseShapefileZones_MissingFile(t *testing.T) {
	_, err := ParseShapefileZones(filepath.Join(t.TempDir(), "nope.shp"), ShapefileOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open shapefile")
}

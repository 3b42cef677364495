package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terrawatch/envzone/internal/model"
)

// square builds a closed square polygon with its lower-left corner at
// (lng, lat) and the given side length in degrees.
func square(lng, lat, side float64) model.Geometry {
	return model.Geometry{
		Kind: model.GeometryPolygon,
		Polygon: []model.Ring{{
			{lng, lat},
			{lng + side, lat},
			{lng + side, lat + side},
			{lng, lat + side},
			{lng, lat},
		}},
	}
}

func circle(lng, lat, radiusM float64) model.Geometry {
	return model.Geometry{
		Kind:    model.GeometryCircle,
		Center:  model.LngLat{lng, lat},
		RadiusM: radiusM,
	}
}

// A 0.01° square near the equator spans about 1.113 km by 1.106 km.
const smallSquareKm2 = 1.231

func TestAreaKm2(t *testing.T) {
	e := NewPlanarEngine()

	assert.InDelta(t, smallSquareKm2, e.AreaKm2(square(10, 0, 0.01)), 0.01)

	// Circles are exact: pi for a 1 km radius.
	assert.InDelta(t, 3.14159, e.AreaKm2(circle(10, 0, 1000)), 1e-4)

	assert.Zero(t, e.AreaKm2(model.Geometry{}))
	assert.Zero(t, e.AreaKm2(circle(10, 0, 0)))
}

func TestUnion_OverlappingSquares(t *testing.T) {
	e := NewPlanarEngine()

	a := square(10, 0, 0.01)
	b := square(10.005, 0, 0.01) // overlaps the right half of a

	got, ok := e.Union([]model.Geometry{a, b})
	require.True(t, ok)
	assert.Equal(t, model.GeometryPolygon, got.Kind)

	// 1.5 squares worth of area.
	assert.InDelta(t, smallSquareKm2*1.5, e.AreaKm2(got), 0.02)
}

func TestUnion_DisjointSquaresBecomeMultiPolygon(t *testing.T) {
	e := NewPlanarEngine()

	a := square(10, 0, 0.01)
	b := square(10.05, 0, 0.01)

	got, ok := e.Union([]model.Geometry{a, b})
	require.True(t, ok)
	assert.Equal(t, model.GeometryMultiPolygon, got.Kind)
	assert.InDelta(t, smallSquareKm2*2, e.AreaKm2(got), 0.02)
}

func TestUnion_TooFewInputs(t *testing.T) {
	e := NewPlanarEngine()

	_, ok := e.Union([]model.Geometry{square(10, 0, 0.01)})
	assert.False(t, ok)
	_, ok = e.Union(nil)
	assert.False(t, ok)
}

func TestIntersect(t *testing.T) {
	e := NewPlanarEngine()

	a := square(10, 0, 0.01)
	b := square(10.005, 0, 0.01)

	got, ok := e.Intersect([]model.Geometry{a, b})
	require.True(t, ok)
	assert.InDelta(t, smallSquareKm2*0.5, e.AreaKm2(got), 0.02)
}

// Disjoint zones intersect to nothing; that is a normal outcome, not a
// fault.
func TestIntersect_DisjointIsNoResult(t *testing.T) {
	e := NewPlanarEngine()

	a := square(10, 0, 0.01)
	b := square(12, 0, 0.01)

	_, ok := e.Intersect([]model.Geometry{a, b})
	assert.False(t, ok)
}

func TestIntersect_CircleWithSquare(t *testing.T) {
	e := NewPlanarEngine()

	// Circle centered on the square's corner: a quarter of it overlaps.
	a := square(10, 0, 0.02)
	b := circle(10, 0, 500)

	got, ok := e.Intersect([]model.Geometry{a, b})
	require.True(t, ok)
	quarter := 3.14159 * 0.5 * 0.5 / 4
	assert.InDelta(t, quarter, e.AreaKm2(got), quarter*0.05)
}

func TestBuffer_Circle(t *testing.T) {
	e := NewPlanarEngine()

	got, ok := e.Buffer(circle(10, 0, 500), 1)
	require.True(t, ok)
	// Grown to 1.5 km radius, returned as a polygon approximation.
	assert.Equal(t, model.GeometryPolygon, got.Kind)
	assert.InDelta(t, 3.14159*1.5*1.5, e.AreaKm2(got), 0.05)
}

func TestBuffer_Square(t *testing.T) {
	e := NewPlanarEngine()

	got, ok := e.Buffer(square(10, 0, 0.01), 1)
	require.True(t, ok)

	// Minkowski sum of the ~1.11x1.11 km square with a 1 km disc:
	// core + 4 edge strips + rounded corners (16-gon, slightly under pi).
	expected := smallSquareKm2 + 2*(1.1132+1.10574) + 3.06
	assert.InDelta(t, expected, e.AreaKm2(got), 0.2)
}

func TestBuffer_Invalid(t *testing.T) {
	e := NewPlanarEngine()

	_, ok := e.Buffer(model.Geometry{}, 1)
	assert.False(t, ok)
	_, ok = e.Buffer(square(10, 0, 0.01), 0)
	assert.False(t, ok)
}

func TestContains(t *testing.T) {
	e := NewPlanarEngine()

	outer := square(10, 0, 0.1)
	inside := square(10.04, 0.04, 0.01)
	straddling := square(10.095, 0.04, 0.01)
	outside := square(11, 0, 0.01)

	assert.True(t, e.Contains(outer, inside))
	assert.False(t, e.Contains(outer, straddling))
	assert.False(t, e.Contains(outer, outside))

	// A circle well inside the square is contained despite its polygon
	// approximation.
	assert.True(t, e.Contains(outer, circle(10.05, 0.05, 1000)))
	assert.False(t, e.Contains(outer, circle(10.05, 0.05, 20000)))
}

func TestContains_DegenerateInputs(t *testing.T) {
	e := NewPlanarEngine()

	assert.False(t, e.Contains(model.Geometry{}, square(10, 0, 0.01)))
	assert.False(t, e.Contains(square(10, 0, 0.01), model.Geometry{}))
}

package geo

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/model"
)

// Engine is the geometry capability consumed by the zone operation layer.
// Every method reports failure through its ok/bool result: an empty
// intersection, a degenerate geometry, or a clipping fault all read as
// "no result", never as an error. This keeps the operation layer free of
// geometry-backend concerns and testable with a fake.
type Engine interface {
	Union(gs []model.Geometry) (model.Geometry, bool)
	Intersect(gs []model.Geometry) (model.Geometry, bool)
	Buffer(g model.Geometry, distanceKm float64) (model.Geometry, bool)
	AreaKm2(g model.Geometry) float64
	Contains(container, inner model.Geometry) bool
}

// containsSlackRatio is the tolerated protrusion when testing containment,
// relative to the inner geometry's area. It absorbs the circle polygon
// approximation and clipping noise.
const containsSlackRatio = 1e-6

// PlanarEngine implements Engine with polygon clipping in a local
// equirectangular kilometer plane.
type PlanarEngine struct{}

// NewPlanarEngine returns the standard planar geometry engine.
func NewPlanarEngine() *PlanarEngine {
	return &PlanarEngine{}
}

// construct folds the inputs with one clipping operation. The clipping
// library may panic on pathological self-intersections; that is a
// computation fault per the error taxonomy and degrades to no result.
func (e *PlanarEngine) construct(op polyclip.Op, gs []model.Geometry) (result model.Geometry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("geo: clipping fault, dropping result", zap.Any("panic", r))
			result, ok = model.Geometry{}, false
		}
	}()

	if len(gs) < 2 {
		return model.Geometry{}, false
	}

	p := newProjector(gs...)
	acc, accOK := toPlane(p, gs[0])
	if !accOK {
		return model.Geometry{}, false
	}
	for _, g := range gs[1:] {
		next, nextOK := toPlane(p, g)
		if !nextOK {
			return model.Geometry{}, false
		}
		acc = acc.Construct(op, next)
		if len(acc) == 0 {
			return model.Geometry{}, false
		}
	}
	return fromPlane(p, acc)
}

// Union returns the combined geometry of all inputs.
func (e *PlanarEngine) Union(gs []model.Geometry) (model.Geometry, bool) {
	return e.construct(polyclip.UNION, gs)
}

// Intersect returns the shared geometry of all inputs. Disjoint inputs
// yield ok=false.
func (e *PlanarEngine) Intersect(gs []model.Geometry) (model.Geometry, bool) {
	return e.construct(polyclip.INTERSECTION, gs)
}

// Buffer expands a geometry outward by distanceKm. Circles grow exactly;
// polygons dilate approximately, by unioning the original shape with discs
// at every vertex and rectangles along every edge (a Minkowski sum against
// a disc, with the disc approximated).
func (e *PlanarEngine) Buffer(g model.Geometry, distanceKm float64) (result model.Geometry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("geo: buffer fault, dropping result", zap.Any("panic", r))
			result, ok = model.Geometry{}, false
		}
	}()

	if g.IsZero() || distanceKm <= 0 {
		return model.Geometry{}, false
	}

	p := newProjector(g)

	if g.Kind == model.GeometryCircle {
		grown := model.Geometry{
			Kind:    model.GeometryCircle,
			Center:  g.Center,
			RadiusM: g.RadiusM + distanceKm*1000,
		}
		plane, planeOK := toPlane(p, grown)
		if !planeOK {
			return model.Geometry{}, false
		}
		return fromPlane(p, plane)
	}

	base, baseOK := toPlane(p, g)
	if !baseOK {
		return model.Geometry{}, false
	}

	acc := base
	for _, contour := range base {
		n := len(contour)
		for i := 0; i < n; i++ {
			a, b := contour[i], contour[(i+1)%n]
			acc = acc.Construct(polyclip.UNION, polyclip.Polygon{discContour(a, distanceKm, 16)})
			if quad, quadOK := edgeQuad(a, b, distanceKm); quadOK {
				acc = acc.Construct(polyclip.UNION, polyclip.Polygon{quad})
			}
		}
	}
	return fromPlane(p, acc)
}

// edgeQuad builds the rectangle swept by offsetting edge (a,b) sideways by
// d km in both directions. Degenerate edges report false.
func edgeQuad(a, b polyclip.Point, d float64) (polyclip.Contour, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-12 {
		return nil, false
	}
	// Unit normal.
	nx, ny := -dy/length*d, dx/length*d
	return polyclip.Contour{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}, true
}

// AreaKm2 returns the geometry's area in square kilometers. Circles are
// exact; polygons use the shoelace formula in the kilometer plane.
func (e *PlanarEngine) AreaKm2(g model.Geometry) float64 {
	if g.IsZero() {
		return 0
	}
	if g.Kind == model.GeometryCircle {
		r := g.RadiusM / 1000
		return math.Pi * r * r
	}

	p := newProjector(g)
	plane, ok := toPlane(p, g)
	if !ok {
		return 0
	}
	return planeArea(plane)
}

// Contains reports whether container fully covers inner: the part of inner
// outside container must be negligible relative to inner's own area.
func (e *PlanarEngine) Contains(container, inner model.Geometry) (contained bool) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("geo: containment fault, reporting not contained", zap.Any("panic", r))
			contained = false
		}
	}()

	if container.IsZero() || inner.IsZero() {
		return false
	}

	p := newProjector(container, inner)
	outerPlane, outerOK := toPlane(p, container)
	innerPlane, innerOK := toPlane(p, inner)
	if !outerOK || !innerOK {
		return false
	}

	innerArea := planeArea(innerPlane)
	if innerArea <= 0 {
		return false
	}

	outside := innerPlane.Construct(polyclip.DIFFERENCE, outerPlane)
	if len(outside) == 0 {
		return true
	}
	return planeArea(outside) <= innerArea*containsSlackRatio+1e-9
}

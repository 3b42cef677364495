package geo

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/terrawatch/envzone/internal/model"
)

// circleSegments is the polygon approximation used for circle zones.
const circleSegments = 64

// toPlane converts a zone geometry into a clipping polygon in the
// projector's kilometer plane. Circles become 64-gons. Returns false for
// empty or unknown geometries.
func toPlane(p projector, g model.Geometry) (polyclip.Polygon, bool) {
	switch g.Kind {
	case model.GeometryCircle:
		if g.RadiusM <= 0 {
			return nil, false
		}
		center := p.toKm(g.Center)
		return polyclip.Polygon{discContour(center, g.RadiusM/1000, circleSegments)}, true

	case model.GeometryPolygon:
		return ringsToPlane(p, g.Polygon)

	case model.GeometryMultiPolygon:
		var out polyclip.Polygon
		for _, rings := range g.MultiPolygon {
			poly, ok := ringsToPlane(p, rings)
			if !ok {
				continue
			}
			out = append(out, poly...)
		}
		return out, len(out) > 0
	}
	return nil, false
}

func ringsToPlane(p projector, rings []model.Ring) (polyclip.Polygon, bool) {
	var out polyclip.Polygon
	for _, ring := range rings {
		contour := ringToContour(p, ring)
		if len(contour) >= 3 {
			out = append(out, contour)
		}
	}
	return out, len(out) > 0
}

// ringToContour projects a closed ring, dropping the duplicated closing
// coordinate polyclip does not expect.
func ringToContour(p projector, ring model.Ring) polyclip.Contour {
	n := len(ring)
	if n >= 2 && ring[0] == ring[n-1] {
		n--
	}
	contour := make(polyclip.Contour, 0, n)
	for i := 0; i < n; i++ {
		contour = append(contour, p.toKm(ring[i]))
	}
	return contour
}

// discContour builds a regular segments-gon of the given radius (km)
// around a plane point.
func discContour(center polyclip.Point, radiusKm float64, segments int) polyclip.Contour {
	contour := make(polyclip.Contour, 0, segments)
	for i := 0; i < segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		contour = append(contour, polyclip.Point{
			X: center.X + radiusKm*math.Cos(angle),
			Y: center.Y + radiusKm*math.Sin(angle),
		})
	}
	return contour
}

// contourRole classifies one clipping-result contour.
type contourRole struct {
	depth int // number of other contours containing it; -1 for degenerate
	shell int // shell slice index when depth is even
	owner int // owning shell index when depth is odd, -1 if orphaned
}

// classify assigns every contour a containment depth. Even depth means
// shell, odd depth means hole of its innermost containing shell. polyclip
// does not mark holes itself, so the structure is recovered geometrically.
func classify(poly polyclip.Polygon) []contourRole {
	roles := make([]contourRole, len(poly))

	for i, c := range poly {
		roles[i] = contourRole{shell: -1, owner: -1}
		if len(c) < 3 {
			roles[i].depth = -1
			continue
		}
		for j, other := range poly {
			if i == j || len(other) < 3 {
				continue
			}
			if contourContainsPoint(other, c[0]) {
				roles[i].depth++
			}
		}
	}

	shells := 0
	for i := range roles {
		if roles[i].depth >= 0 && roles[i].depth%2 == 0 {
			roles[i].shell = shells
			shells++
		}
	}

	for i, c := range poly {
		if roles[i].depth <= 0 || roles[i].depth%2 == 0 {
			continue
		}
		ownerDepth := -1
		for j, other := range poly {
			if i == j || roles[j].shell < 0 {
				continue
			}
			if contourContainsPoint(other, c[0]) && roles[j].depth > ownerDepth {
				roles[i].owner = roles[j].shell
				ownerDepth = roles[j].depth
			}
		}
	}
	return roles
}

// fromPlane converts a clipping result back to a zone geometry in degrees.
// One shell yields a polygon, several a multipolygon. Returns false for
// empty results.
func fromPlane(p projector, poly polyclip.Polygon) (model.Geometry, bool) {
	roles := classify(poly)

	var polys [][]model.Ring
	for i, c := range poly {
		if roles[i].shell < 0 {
			continue
		}
		rings := []model.Ring{contourToRing(p, c)}
		for j, h := range poly {
			if roles[j].owner == roles[i].shell {
				rings = append(rings, contourToRing(p, h))
			}
		}
		polys = append(polys, rings)
	}

	if len(polys) == 0 {
		return model.Geometry{}, false
	}
	if len(polys) == 1 {
		return model.Geometry{Kind: model.GeometryPolygon, Polygon: polys[0]}, true
	}
	return model.Geometry{Kind: model.GeometryMultiPolygon, MultiPolygon: polys}, true
}

func contourToRing(p projector, c polyclip.Contour) model.Ring {
	ring := make(model.Ring, 0, len(c)+1)
	for _, pt := range c {
		ring = append(ring, p.fromKm(pt))
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0]) // close the ring
	}
	return ring
}

// contourContainsPoint is a standard ray-casting point-in-polygon test.
func contourContainsPoint(c polyclip.Contour, pt polyclip.Point) bool {
	inside := false
	n := len(c)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := c[i], c[j]
		if (a.Y > pt.Y) != (b.Y > pt.Y) &&
			pt.X < (b.X-a.X)*(pt.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// contourArea returns the unsigned shoelace area of a contour in km².
func contourArea(c polyclip.Contour) float64 {
	var sum float64
	n := len(c)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// planeArea returns the net area of a clipping polygon in km²: shell areas
// minus hole areas.
func planeArea(poly polyclip.Polygon) float64 {
	roles := classify(poly)
	var area float64
	for i, c := range poly {
		switch {
		case roles[i].shell >= 0:
			area += contourArea(c)
		case roles[i].depth > 0:
			area -= contourArea(c)
		}
	}
	if area < 0 {
		area = 0
	}
	return area
}

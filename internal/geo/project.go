// Package geo implements the planar geometry engine behind the zone
// operations: boolean clipping, buffering, area, and containment over
// circle/polygon/multipolygon zone geometries. Clipping runs in a local
// equirectangular kilometer plane anchored at the input centroid, which is
// accurate to well under a percent at monitoring-zone scale (a few tens of
// kilometers).
package geo

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/terrawatch/envzone/internal/model"
)

const (
	kmPerDegLat = 110.574
	kmPerDegLng = 111.320 // at the equator, scaled by cos(lat)
)

// projector maps (lng,lat) degrees to a local kilometer plane and back.
// One projector is shared by every geometry participating in an operation
// so their planes coincide.
type projector struct {
	lng0, lat0 float64
	kx, ky     float64
}

func newProjector(geoms ...model.Geometry) projector {
	var sumLng, sumLat float64
	var n int

	add := func(c model.LngLat) {
		sumLng += c.Lng()
		sumLat += c.Lat()
		n++
	}
	for _, g := range geoms {
		switch g.Kind {
		case model.GeometryCircle:
			add(g.Center)
		case model.GeometryPolygon:
			for _, ring := range g.Polygon {
				for _, c := range ring {
					add(c)
				}
			}
		case model.GeometryMultiPolygon:
			for _, poly := range g.MultiPolygon {
				for _, ring := range poly {
					for _, c := range ring {
						add(c)
					}
				}
			}
		}
	}

	p := projector{}
	if n > 0 {
		p.lng0 = sumLng / float64(n)
		p.lat0 = sumLat / float64(n)
	}
	p.ky = kmPerDegLat
	p.kx = kmPerDegLng * math.Cos(p.lat0*math.Pi/180)
	if p.kx < 1e-6 {
		// Degenerate near the poles; keep the plane invertible.
		p.kx = 1e-6
	}
	return p
}

func (p projector) toKm(c model.LngLat) polyclip.Point {
	return polyclip.Point{
		X: (c.Lng() - p.lng0) * p.kx,
		Y: (c.Lat() - p.lat0) * p.ky,
	}
}

func (p projector) fromKm(pt polyclip.Point) model.LngLat {
	return model.LngLat{pt.X/p.kx + p.lng0, pt.Y/p.ky + p.lat0}
}

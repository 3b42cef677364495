package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/terrawatch/envzone/internal/model"
)

// ToGeom converts a zone geometry to a go-geom value. Circles map to their
// center point; the radius travels separately (Leaflet convention), since
// GeoJSON has no circle type.
func ToGeom(g model.Geometry) (geom.T, error) {
	switch g.Kind {
	case model.GeometryCircle:
		return geom.NewPointFlat(geom.XY, []float64{g.Center.Lng(), g.Center.Lat()}).SetSRID(4326), nil

	case model.GeometryPolygon:
		return geom.NewPolygon(geom.XY).MustSetCoords(ringsToCoords(g.Polygon)).SetSRID(4326), nil

	case model.GeometryMultiPolygon:
		coords := make([][][]geom.Coord, 0, len(g.MultiPolygon))
		for _, rings := range g.MultiPolygon {
			coords = append(coords, ringsToCoords(rings))
		}
		return geom.NewMultiPolygon(geom.XY).MustSetCoords(coords).SetSRID(4326), nil
	}
	return nil, eris.Errorf("geo: unsupported geometry kind %q", g.Kind)
}

// FromGeom converts a go-geom polygonal value into a zone geometry. Points
// become circles with the supplied radius; radius is ignored otherwise.
func FromGeom(t geom.T, radiusM float64) (model.Geometry, error) {
	switch gg := t.(type) {
	case *geom.Point:
		c := gg.Coords()
		return model.Geometry{
			Kind:    model.GeometryCircle,
			Center:  model.LngLat{c[0], c[1]},
			RadiusM: radiusM,
		}, nil

	case *geom.Polygon:
		return model.Geometry{
			Kind:    model.GeometryPolygon,
			Polygon: coordsToRings(gg.Coords()),
		}, nil

	case *geom.MultiPolygon:
		coords := gg.Coords()
		polys := make([][]model.Ring, 0, len(coords))
		for _, rings := range coords {
			polys = append(polys, coordsToRings(rings))
		}
		return model.Geometry{
			Kind:         model.GeometryMultiPolygon,
			MultiPolygon: polys,
		}, nil
	}
	return model.Geometry{}, eris.Errorf("geo: unsupported geometry type %T", t)
}

// MarshalGeoJSON encodes a zone geometry as a GeoJSON geometry object.
func MarshalGeoJSON(g model.Geometry) ([]byte, error) {
	t, err := ToGeom(g)
	if err != nil {
		return nil, err
	}
	data, err := geojson.Marshal(t)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode geojson")
	}
	return data, nil
}

// UnmarshalGeoJSON decodes a GeoJSON geometry object into a zone geometry.
// radiusM applies only when the payload is a Point.
func UnmarshalGeoJSON(data []byte, radiusM float64) (model.Geometry, error) {
	var t geom.T
	if err := geojson.Unmarshal(data, &t); err != nil {
		return model.Geometry{}, eris.Wrap(err, "geo: decode geojson")
	}
	return FromGeom(t, radiusM)
}

func ringsToCoords(rings []model.Ring) [][]geom.Coord {
	out := make([][]geom.Coord, 0, len(rings))
	for _, ring := range rings {
		coords := make([]geom.Coord, 0, len(ring))
		for _, c := range ring {
			coords = append(coords, geom.Coord{c.Lng(), c.Lat()})
		}
		out = append(out, coords)
	}
	return out
}

func coordsToRings(coords [][]geom.Coord) []model.Ring {
	out := make([]model.Ring, 0, len(coords))
	for _, ringCoords := range coords {
		ring := make(model.Ring, 0, len(ringCoords))
		for _, c := range ringCoords {
			ring = append(ring, model.LngLat{c.X(), c.Y()})
		}
		out = append(out, ring)
	}
	return out
}

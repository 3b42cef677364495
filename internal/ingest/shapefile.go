package ingest

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/terrawatch/envzone/internal/model"
)

// ShapefileOptions configures zone import from a shapefile.
type ShapefileOptions struct {
	NameField  string // attribute holding the zone name; default "NAME"
	ColorField string // optional attribute holding a hex color
}

// ParseShapefileZones reads polygon records from a shapefile and converts
// each into a zone. Records without polygon geometry are skipped.
func ParseShapefileZones(shpPath string, opts ShapefileOptions) ([]model.Zone, error) {
	if opts.NameField == "" {
		opts.NameField = "NAME"
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	nameIdx, hasName := fieldIdx[strings.ToLower(opts.NameField)]
	colorIdx, hasColor := fieldIdx[strings.ToLower(opts.ColorField)]

	titler := cases.Title(language.English)

	var zones []model.Zone
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		geometry, ok := polygonToGeometry(poly)
		if !ok {
			skipped++
			continue
		}

		name := ""
		if hasName {
			name = cleanAttribute(reader.Attribute(nameIdx))
		}
		if name == "" {
			name = "Imported zone"
		} else if name == strings.ToUpper(name) {
			// Shapefile attributes are frequently ALL CAPS.
			name = titler.String(strings.ToLower(name))
		}

		zone := model.Zone{Name: name, Geometry: geometry}
		if hasColor && opts.ColorField != "" {
			zone.Color = cleanAttribute(reader.Attribute(colorIdx))
		}
		zones = append(zones, zone)
	}

	if skipped > 0 {
		zap.L().Debug("ingest: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	return zones, nil
}

// polygonToGeometry walks the shapefile part index into rings. Single-part
// records become polygons, multi-part records multipolygons with one
// polygon per part.
func polygonToGeometry(p *shp.Polygon) (model.Geometry, bool) {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return model.Geometry{}, false
	}

	var parts []model.Ring
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		ring := make(model.Ring, 0, end-start)
		for j := start; j < end; j++ {
			ring = append(ring, model.LngLat{p.Points[j].X, p.Points[j].Y})
		}
		if len(ring) < 4 {
			continue
		}
		parts = append(parts, ring)
	}

	switch len(parts) {
	case 0:
		return model.Geometry{}, false
	case 1:
		return model.Geometry{Kind: model.GeometryPolygon, Polygon: parts}, true
	}

	polys := make([][]model.Ring, 0, len(parts))
	for _, ring := range parts {
		polys = append(polys, []model.Ring{ring})
	}
	return model.Geometry{Kind: model.GeometryMultiPolygon, MultiPolygon: polys}, true
}

func cleanAttribute(val string) string {
	return strings.TrimSpace(strings.TrimRight(val, "\x00"))
}

package model

import "time"

// GeometryKind discriminates the supported zone geometry shapes.
type GeometryKind string

const (
	GeometryCircle       GeometryKind = "circle"
	GeometryPolygon      GeometryKind = "polygon"
	GeometryMultiPolygon GeometryKind = "multipolygon"
)

// LngLat is a (longitude, latitude) coordinate pair in degrees.
type LngLat [2]float64

// Lng returns the longitude component.
func (c LngLat) Lng() float64 { return c[0] }

// Lat returns the latitude component.
func (c LngLat) Lat() float64 { return c[1] }

// Ring is a closed linear ring: the first and last coordinates are equal.
type Ring []LngLat

// Geometry is a zone shape: a circle (center + radius), a polygon
// (outer ring plus optional holes), or a multipolygon. Exactly the
// fields matching Kind are populated.
type Geometry struct {
	Kind         GeometryKind `json:"kind"`
	Center       LngLat       `json:"center,omitempty"`
	RadiusM      float64      `json:"radius_m,omitempty"`
	Polygon      []Ring       `json:"polygon,omitempty"`
	MultiPolygon [][]Ring     `json:"multi_polygon,omitempty"`
}

// IsZero reports whether g carries no shape at all.
func (g Geometry) IsZero() bool {
	switch g.Kind {
	case GeometryCircle:
		return g.RadiusM <= 0
	case GeometryPolygon:
		return len(g.Polygon) == 0
	case GeometryMultiPolygon:
		return len(g.MultiPolygon) == 0
	}
	return true
}

// Zone is a named geographic monitoring area. Zones are immutable while a
// geometric operation runs; operations emit new or updated copies.
type Zone struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Geometry  Geometry  `json:"geometry"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ImpactRiskLevel grades the risk attached to a geometry-operation result.
type ImpactRiskLevel string

const (
	ImpactRiskLow      ImpactRiskLevel = "low"
	ImpactRiskModerate ImpactRiskLevel = "moderate"
	ImpactRiskHigh     ImpactRiskLevel = "high"
	ImpactRiskCritical ImpactRiskLevel = "critical"
)

// ComplianceStatus summarizes regulatory standing of an operation result.
type ComplianceStatus string

const (
	ComplianceCompliant ComplianceStatus = "compliant"
	ComplianceWarning   ComplianceStatus = "warning"
	ComplianceViolation ComplianceStatus = "violation"
)

// EnvironmentalImpact is the area/population/compliance summary attached
// to a geometry-operation result. It is distinct from the sensor-based
// ZonePollutionAnalysis.
type EnvironmentalImpact struct {
	TotalAreaKm2       float64          `json:"totalAreaKm2"`
	AffectedPopulation int              `json:"affectedPopulation"`
	RiskLevel          ImpactRiskLevel  `json:"riskLevel"`
	ComplianceStatus   ComplianceStatus `json:"complianceStatus"`
	Recommendations    []string         `json:"recommendations"`
}

// ContainmentReport carries the per-zone tally of a contains operation.
type ContainmentReport struct {
	ContainedCount int  `json:"containedCount"`
	TotalChecked   int  `json:"totalChecked"`
	Compliant      bool `json:"compliant"`
}

// DerivedZone is the outcome of a geometric zone operation: either a new
// synthetic zone (union/intersection/buffer, Type "polygon") or an updated
// copy of the container zone (contains, Type unchanged from the input).
type DerivedZone struct {
	ID                    string              `json:"id"`
	Name                  string              `json:"name"`
	Type                  GeometryKind        `json:"type"`
	Geometry              Geometry            `json:"geometry"`
	Color                 string              `json:"color"`
	EnvironmentalAnalysis EnvironmentalImpact `json:"environmentalAnalysis"`
	Containment           *ContainmentReport  `json:"containment,omitempty"`
}

// Package zoneops derives new monitoring zones from existing ones through
// geometric set operations and attaches an environmental-impact summary to
// each result. Every failure mode an operator can hit with reasonable input
// (unknown operation, too few zones, empty intersection, degenerate
// geometry) is a nil result, never an error: callers treat nil as
// "operation not applicable".
package zoneops

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/terrawatch/envzone/internal/geo"
	"github.com/terrawatch/envzone/internal/model"
)

// Operation names the supported zone set operations.
type Operation string

const (
	OpUnion        Operation = "union"
	OpIntersection Operation = "intersection"
	OpBuffer1km    Operation = "buffer-1km"
	OpContains     Operation = "contains"
)

// bufferDistanceKm is the fixed outward expansion of the buffer operation.
const bufferDistanceKm = 1.0

// Result colors for derived zones, keyed by impact risk.
func colorForRisk(risk model.ImpactRiskLevel) string {
	switch risk {
	case model.ImpactRiskCritical:
		return "#ef4444"
	case model.ImpactRiskHigh:
		return "#f97316"
	case model.ImpactRiskModerate:
		return "#eab308"
	default:
		return "#22c55e"
	}
}

const (
	compliantColor    = "#22c55e"
	nonCompliantColor = "#ef4444"
)

// Operator performs geometric zone operations through an injected geometry
// engine.
type Operator struct {
	engine geo.Engine
}

// NewOperator creates an Operator over the given geometry engine.
func NewOperator(engine geo.Engine) *Operator {
	return &Operator{engine: engine}
}

// Perform runs one named operation over the input zones and returns the
// derived zone, or nil when the operation does not apply. Input zones are
// never mutated; the contains operation returns an updated copy of its
// container.
func (o *Operator) Perform(op Operation, zones []model.Zone) *model.DerivedZone {
	switch op {
	case OpUnion:
		return o.union(zones)
	case OpIntersection:
		return o.intersection(zones)
	case OpBuffer1km:
		return o.buffer(zones)
	case OpContains:
		return o.contains(zones)
	}
	zap.L().Debug("zoneops: unsupported operation", zap.String("op", string(op)))
	return nil
}

func (o *Operator) union(zones []model.Zone) *model.DerivedZone {
	if len(zones) < 2 {
		return nil
	}

	result, ok := o.engine.Union(geometries(zones))
	if !ok {
		return nil
	}

	impact := unionImpact(o.engine.AreaKm2(result))
	return &model.DerivedZone{
		ID:                    uuid.New().String(),
		Name:                  fmt.Sprintf("Union of %s", joinNames(zones)),
		Type:                  result.Kind,
		Geometry:              result,
		Color:                 colorForRisk(impact.RiskLevel),
		EnvironmentalAnalysis: impact,
	}
}

func (o *Operator) intersection(zones []model.Zone) *model.DerivedZone {
	if len(zones) < 2 {
		return nil
	}

	result, ok := o.engine.Intersect(geometries(zones))
	if !ok {
		// Disjoint zones; a normal outcome.
		return nil
	}

	impact := intersectionImpact(o.engine.AreaKm2(result))
	return &model.DerivedZone{
		ID:                    uuid.New().String(),
		Name:                  fmt.Sprintf("Intersection of %s", joinNames(zones)),
		Type:                  result.Kind,
		Geometry:              result,
		Color:                 colorForRisk(impact.RiskLevel),
		EnvironmentalAnalysis: impact,
	}
}

func (o *Operator) buffer(zones []model.Zone) *model.DerivedZone {
	if len(zones) < 1 {
		return nil
	}

	first := zones[0]
	result, ok := o.engine.Buffer(first.Geometry, bufferDistanceKm)
	if !ok {
		return nil
	}

	impact := bufferImpact(o.engine.AreaKm2(result))
	return &model.DerivedZone{
		ID:                    uuid.New().String(),
		Name:                  fmt.Sprintf("%s (1km buffer)", first.Name),
		Type:                  result.Kind,
		Geometry:              result,
		Color:                 colorForRisk(impact.RiskLevel),
		EnvironmentalAnalysis: impact,
	}
}

// contains treats the first zone as the container and checks full
// containment of every other zone. Unlike the other operations it does not
// synthesize a new zone: it returns the container itself, renamed and
// recolored to reflect the verdict.
func (o *Operator) contains(zones []model.Zone) *model.DerivedZone {
	if len(zones) < 2 {
		return nil
	}

	container := zones[0]
	if container.Geometry.IsZero() {
		return nil
	}

	contained := 0
	checked := len(zones) - 1
	for _, z := range zones[1:] {
		if o.engine.Contains(container.Geometry, z.Geometry) {
			contained++
		}
	}
	compliant := contained == checked

	name := fmt.Sprintf("%s (non-compliant)", container.Name)
	color := nonCompliantColor
	if compliant {
		name = fmt.Sprintf("%s (compliant)", container.Name)
		color = compliantColor
	}

	return &model.DerivedZone{
		ID:                    container.ID,
		Name:                  name,
		Type:                  container.Geometry.Kind,
		Geometry:              container.Geometry,
		Color:                 color,
		EnvironmentalAnalysis: containsImpact(o.engine.AreaKm2(container.Geometry), contained, checked),
		Containment: &model.ContainmentReport{
			ContainedCount: contained,
			TotalChecked:   checked,
			Compliant:      compliant,
		},
	}
}

func geometries(zones []model.Zone) []model.Geometry {
	gs := make([]model.Geometry, 0, len(zones))
	for _, z := range zones {
		gs = append(gs, z.Geometry)
	}
	return gs
}

func joinNames(zones []model.Zone) string {
	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	return strings.Join(names, " + ")
}

package zoneops

import (
	"fmt"
	"math"

	"github.com/terrawatch/envzone/internal/model"
)

// populationDensity is the fixed people-per-km² estimator. It is the only
// population signal available at this layer; zone-level census lookups
// belong to upstream services.
const populationDensity = 500

// Area thresholds (km²) grading an operation result.
const (
	areaModerateKm2 = 2
	areaHighKm2     = 10
	areaCriticalKm2 = 25
)

// estimatePopulation applies the constant-density estimate to an area.
func estimatePopulation(areaKm2 float64) int {
	return int(math.Round(areaKm2 * populationDensity))
}

// riskForArea grades an area with the shared low/moderate/high ladder.
// Only union escalates past high; see unionImpact.
func riskForArea(areaKm2 float64) model.ImpactRiskLevel {
	switch {
	case areaKm2 > areaHighKm2:
		return model.ImpactRiskHigh
	case areaKm2 > areaModerateKm2:
		return model.ImpactRiskModerate
	default:
		return model.ImpactRiskLow
	}
}

// complianceForRisk maps a risk grade to a compliance status for the
// synthetic-result operations.
func complianceForRisk(risk model.ImpactRiskLevel) model.ComplianceStatus {
	switch risk {
	case model.ImpactRiskCritical:
		return model.ComplianceViolation
	case model.ImpactRiskHigh:
		return model.ComplianceWarning
	default:
		return model.ComplianceCompliant
	}
}

// unionImpact summarizes a union result. A combined area past the critical
// threshold escalates to critical risk and a compliance violation.
func unionImpact(areaKm2 float64) model.EnvironmentalImpact {
	risk := riskForArea(areaKm2)
	var rec string
	switch {
	case areaKm2 > areaCriticalKm2:
		risk = model.ImpactRiskCritical
		rec = "Immediate emergency response required for the combined area"
	case areaKm2 > areaHighKm2:
		rec = "Monitor the combined area closely"
	default:
		rec = "Combined area within acceptable limits"
	}

	return model.EnvironmentalImpact{
		TotalAreaKm2:       areaKm2,
		AffectedPopulation: estimatePopulation(areaKm2),
		RiskLevel:          risk,
		ComplianceStatus:   complianceForRisk(risk),
		Recommendations:    []string{rec},
	}
}

// intersectionImpact summarizes an intersection result.
func intersectionImpact(areaKm2 float64) model.EnvironmentalImpact {
	risk := riskForArea(areaKm2)
	var rec string
	switch {
	case areaKm2 > areaHighKm2:
		rec = "Prioritize inspection of the shared risk area"
	case areaKm2 > areaModerateKm2:
		rec = "Schedule inspection of the overlapping area"
	default:
		rec = "Overlap within acceptable limits"
	}

	return model.EnvironmentalImpact{
		TotalAreaKm2:       areaKm2,
		AffectedPopulation: estimatePopulation(areaKm2),
		RiskLevel:          risk,
		ComplianceStatus:   complianceForRisk(risk),
		Recommendations:    []string{rec},
	}
}

// bufferImpact summarizes a buffer result.
func bufferImpact(areaKm2 float64) model.EnvironmentalImpact {
	risk := riskForArea(areaKm2)
	var rec string
	switch {
	case areaKm2 > areaHighKm2:
		rec = "Notify residents across the extended perimeter"
	case areaKm2 > areaModerateKm2:
		rec = "Review facilities inside the buffer corridor"
	default:
		rec = "Buffer corridor within acceptable limits"
	}

	return model.EnvironmentalImpact{
		TotalAreaKm2:       areaKm2,
		AffectedPopulation: estimatePopulation(areaKm2),
		RiskLevel:          risk,
		ComplianceStatus:   complianceForRisk(risk),
		Recommendations:    []string{rec},
	}
}

// containsImpact summarizes a containment check over the container's own
// area. Risk and compliance follow the verdict, not the area.
func containsImpact(areaKm2 float64, contained, checked int) model.EnvironmentalImpact {
	compliant := contained == checked

	risk := model.ImpactRiskHigh
	status := model.ComplianceViolation
	recs := []string{
		fmt.Sprintf("%d of %d zones extend beyond the container boundary", checked-contained, checked),
		"Realign zone boundaries or expand the container",
	}
	if compliant {
		risk = model.ImpactRiskLow
		status = model.ComplianceCompliant
		recs = []string{"All monitored zones sit inside the container zone"}
	}

	return model.EnvironmentalImpact{
		TotalAreaKm2:       areaKm2,
		AffectedPopulation: estimatePopulation(areaKm2),
		RiskLevel:          risk,
		ComplianceStatus:   status,
		Recommendations:    recs,
	}
}

// Package scoring computes fit and urgency scores for prospect facilities.
// Score is a pure function over the facility attributes; per-signal weights
// are tunable business parameters selected by opportunity type.
package scoring

import (
	"math"
	"strings"

	"leadgen_backend/internal/leads/domain"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	// Hard clamps. Priority is always exactly fit + urgency.
	maxFitScore     = 50.0
	maxUrgencyScore = 30.0

	// Demand sweet spot: facilities in this band size a system large enough
	// to matter but under the program ceiling.
	sweetSpotLowKW  = 200.0
	sweetSpotHighKW = 1000.0
)

// Result holds the scoring output and per-signal factor details.
type Result struct {
	FitScore      int                `json:"fitScore"`
	UrgencyScore  int                `json:"urgencyScore"`
	PriorityScore int                `json:"priorityScore"`
	Factors       map[string]float64 `json:"factors"`
	Version       string             `json:"version"`
}

// Score evaluates a facility with the weight profile for its opportunity
// type. Missing (nil/empty) fields contribute zero for their signal rather
// than failing; scoring degrades gracefully with partial data.
func Score(company domain.Company, opportunityType string, profile Profile) Result {
	weights := profile.For(opportunityType)
	factors := map[string]float64{}

	fit := 0.0
	fit += addFactor(factors, "sector", clamp(scoreSector(company.Sector)*weights.Sector, 0, maxSectorPoints))
	fit += addFactor(factors, "zone", clamp(scoreZone(company.Zone)*weights.Zone, 0, maxZonePoints))
	fit += addFactor(factors, "billing", clamp(scoreBilling(company.MonthlyBillRM)*weights.Billing, 0, maxBillingPoints))
	fit += addFactor(factors, "roof", clamp(scoreRoof(company.RoofSizeSqft)*weights.Roof, 0, maxRoofPoints))
	fit += addFactor(factors, "hours", clamp(scoreHours(company.OperatingHours)*weights.Hours, 0, maxHoursPoints))
	fit = clamp(fit, 0, maxFitScore)

	urgency := 0.0
	urgency += addFactor(factors, "demand_band", clamp(scoreDemandBand(company.MaxDemandKW)*weights.DemandBand, 0, maxDemandPoints))
	urgency += addFactor(factors, "owner_occupied", clamp(scoreOwnerOccupied(company.OwnerOccupied)*weights.OwnerOccupied, 0, maxOwnerPoints))
	urgency += addFactor(factors, "single_tenant", clamp(scoreTenantStructure(company.TenantStructure)*weights.SingleTenant, 0, maxTenantPoints))
	urgency = clamp(urgency, 0, maxUrgencyScore)

	fitInt := int(math.Round(fit))
	urgencyInt := int(math.Round(urgency))

	return Result{
		FitScore:      fitInt,
		UrgencyScore:  urgencyInt,
		PriorityScore: fitInt + urgencyInt,
		Factors:       factors,
		Version:       scoreVersion,
	}
}

// Per-signal point budgets at weight 1.0. Fit budgets sum to 50, urgency
// budgets to 30.
const (
	maxSectorPoints  = 14.0
	maxZonePoints    = 8.0
	maxBillingPoints = 12.0
	maxRoofPoints    = 8.0
	maxHoursPoints   = 8.0

	maxDemandPoints = 14.0
	maxOwnerPoints  = 8.0
	maxTenantPoints = 8.0
)

// scoreSector buckets sectors by typical daytime self-consumption. Heavy
// manufacturing loads run when the panels produce.
func scoreSector(sector string) float64 {
	switch normalize(sector) {
	case "manufacturer", "manufacturing", "factory":
		return maxSectorPoints
	case "cold storage", "warehouse", "logistics":
		return 11
	case "retail", "shopping":
		return 8
	case "office":
		return 5
	case "":
		return 0
	default:
		return 4
	}
}

// scoreZone favours industrial corridors where roof stock and grid headroom
// are known to be good.
func scoreZone(zone string) float64 {
	switch normalize(zone) {
	case "shah alam", "klang", "port klang":
		return maxZonePoints
	case "rawang", "kajang", "semenyih", "puchong":
		return 6
	case "":
		return 0
	default:
		return 3
	}
}

// scoreBilling tiers the monthly TNB bill; bigger bills mean bigger offsets.
func scoreBilling(monthlyBillRM *float64) float64 {
	if monthlyBillRM == nil {
		return 0
	}
	switch bill := *monthlyBillRM; {
	case bill >= 100000:
		return maxBillingPoints
	case bill >= 50000:
		return 9
	case bill >= 20000:
		return 6
	case bill >= 10000:
		return 3
	default:
		return 1
	}
}

// scoreRoof tiers usable roof area in square feet.
func scoreRoof(roofSqft *float64) float64 {
	if roofSqft == nil {
		return 0
	}
	switch roof := *roofSqft; {
	case roof >= 100000:
		return maxRoofPoints
	case roof >= 50000:
		return 6
	case roof >= 20000:
		return 4
	case roof >= 8000:
		return 2
	default:
		return 1
	}
}

// scoreHours rewards daytime-heavy profiles; continuous operations consume
// everything the system produces.
func scoreHours(hours domain.OperatingHours) float64 {
	switch hours {
	case domain.HoursContinuous:
		return maxHoursPoints
	case domain.HoursShift:
		return 6
	case domain.HoursExtended:
		return 5
	case domain.HoursOffice:
		return 3
	default:
		return 0
	}
}

// scoreDemandBand rewards the sweet-spot capacity band; outside it the
// signal tapers instead of dropping to zero.
func scoreDemandBand(maxDemandKW *float64) float64 {
	if maxDemandKW == nil {
		return 0
	}
	demand := *maxDemandKW
	switch {
	case demand >= sweetSpotLowKW && demand <= sweetSpotHighKW:
		return maxDemandPoints
	case demand > sweetSpotHighKW:
		return 8
	case demand >= 100:
		return 6
	default:
		return 2
	}
}

func scoreOwnerOccupied(ownerOccupied *bool) float64 {
	if ownerOccupied == nil {
		return 0
	}
	if *ownerOccupied {
		return maxOwnerPoints
	}
	return 0
}

func scoreTenantStructure(structure domain.TenantStructure) float64 {
	if structure == domain.TenantSingle {
		return maxTenantPoints
	}
	return 0
}

func addFactor(factors map[string]float64, name string, points float64) float64 {
	factors[name] = points
	return points
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

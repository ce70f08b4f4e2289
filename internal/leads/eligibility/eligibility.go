// Package eligibility implements the program eligibility gate for prospect
// facilities. Check is a pure function: identical input yields identical
// output, including reason and warning ordering.
package eligibility

import (
	"fmt"
	"strings"

	"leadgen_backend/internal/leads/domain"
)

// DemandCeilingKW is the program's per-facility capacity cap. Demand above
// the ceiling does not disqualify; the system is capacity-capped instead.
const DemandCeilingKW = 1000.0

// excludedSectors lists sectors the program excludes outright. Matching is
// case-insensitive on normalized sector names.
var excludedSectors = []string{
	"property management",
	"strata management",
	"real estate agency",
}

// Result is the eligibility determination for a facility.
type Result struct {
	Eligible          bool     `json:"eligible"`
	DisqualifyReasons []string `json:"disqualifyReasons"`
	Warnings          []string `json:"warnings"`
}

// Check evaluates a facility against the program's structural criteria.
// Hard disqualifiers set Eligible false; warnings are informational only.
func Check(company domain.Company) Result {
	result := Result{
		Eligible:          true,
		DisqualifyReasons: []string{},
		Warnings:          []string{},
	}

	if company.TenantStructure == domain.TenantMulti {
		result.Eligible = false
		result.DisqualifyReasons = append(result.DisqualifyReasons,
			"multi-tenant facility: the program excludes shared-tenancy sites")
	}

	if sector := normalizeSector(company.Sector); sector != "" {
		for _, excluded := range excludedSectors {
			if sector == excluded {
				result.Eligible = false
				result.DisqualifyReasons = append(result.DisqualifyReasons,
					fmt.Sprintf("excluded sector: %s", company.Sector))
				break
			}
		}
	}

	if company.MaxDemandKW != nil && *company.MaxDemandKW > DemandCeilingKW {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("estimated demand %.0f kW exceeds the %.0f kW program ceiling; system will be capacity-capped", *company.MaxDemandKW, DemandCeilingKW))
	}

	if company.OwnerOccupied != nil && !*company.OwnerOccupied {
		result.Warnings = append(result.Warnings,
			"tenant-occupied facility: owner consent required before installation")
	}

	switch company.OperatingHours {
	case domain.HoursShift, domain.HoursContinuous:
		result.Warnings = append(result.Warnings,
			"shift or continuous operating hours: elevated risk of forfeited excess credit under the program's settlement rule")
	}

	return result
}

func normalizeSector(sector string) string {
	return strings.ToLower(strings.TrimSpace(sector))
}

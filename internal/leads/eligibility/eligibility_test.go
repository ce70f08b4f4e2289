package eligibility

import (
	"reflect"
	"testing"

	"leadgen_backend/internal/leads/domain"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrBool(b bool) *bool        { return &b }

func singleTenantFactory() domain.Company {
	return domain.Company{
		Name:            "Kilang Besi Maju Sdn Bhd",
		Sector:          "Manufacturer",
		Zone:            "Shah Alam",
		TenantStructure: domain.TenantSingle,
		OperatingHours:  domain.HoursOffice,
		MaxDemandKW:     ptrFloat(450),
		OwnerOccupied:   ptrBool(true),
	}
}

func TestCheck_CleanFacilityIsEligible(t *testing.T) {
	result := Check(singleTenantFactory())
	if !result.Eligible {
		t.Fatalf("expected eligible, got reasons %v", result.DisqualifyReasons)
	}
	if len(result.DisqualifyReasons) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected no reasons or warnings, got %v / %v", result.DisqualifyReasons, result.Warnings)
	}
}

func TestCheck_MultiTenantDisqualifies(t *testing.T) {
	company := singleTenantFactory()
	company.TenantStructure = domain.TenantMulti

	result := Check(company)
	if result.Eligible {
		t.Fatal("multi-tenant facility must be ineligible")
	}
	if len(result.DisqualifyReasons) != 1 {
		t.Fatalf("expected one reason, got %v", result.DisqualifyReasons)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("warnings must stay separate from disqualify reasons: %v", result.Warnings)
	}
}

func TestCheck_ExcludedSectorDisqualifies(t *testing.T) {
	company := singleTenantFactory()
	company.Sector = "Property Management"

	result := Check(company)
	if result.Eligible {
		t.Fatal("excluded sector must be ineligible")
	}
}

func TestCheck_WarningsDoNotBlockEligibility(t *testing.T) {
	company := singleTenantFactory()
	company.MaxDemandKW = ptrFloat(1500)
	company.OwnerOccupied = ptrBool(false)
	company.OperatingHours = domain.HoursContinuous

	result := Check(company)
	if !result.Eligible {
		t.Fatalf("warnings must not disqualify: %v", result.DisqualifyReasons)
	}
	if len(result.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", result.Warnings)
	}
}

func TestCheck_Deterministic(t *testing.T) {
	company := singleTenantFactory()
	company.TenantStructure = domain.TenantMulti
	company.Sector = "Strata Management"
	company.OperatingHours = domain.HoursShift
	company.OwnerOccupied = ptrBool(false)

	first := Check(company)
	second := Check(company)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical input produced different output:\n%+v\n%+v", first, second)
	}
}

func TestCheck_UnknownFieldsContributeNothing(t *testing.T) {
	result := Check(domain.Company{TenantStructure: domain.TenantUnknown})
	if !result.Eligible {
		t.Fatal("unknown tenant structure alone must not disqualify")
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("nil demand/occupancy must not warn: %v", result.Warnings)
	}
}

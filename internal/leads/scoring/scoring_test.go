package scoring

import (
	"testing"

	"leadgen_backend/internal/leads/domain"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrBool(b bool) *bool        { return &b }

func strongFacility() domain.Company {
	return domain.Company{
		Sector:          "Manufacturer",
		Zone:            "Shah Alam",
		MonthlyBillRM:   ptrFloat(120000),
		RoofSizeSqft:    ptrFloat(150000),
		OperatingHours:  domain.HoursContinuous,
		MaxDemandKW:     ptrFloat(500),
		OwnerOccupied:   ptrBool(true),
		TenantStructure: domain.TenantSingle,
	}
}

func TestScore_ClampsAndPrioritySum(t *testing.T) {
	cases := []domain.Company{
		strongFacility(),
		{}, // all-null input
		{Sector: "Office", MaxDemandKW: ptrFloat(50)},
	}

	for _, company := range cases {
		result := Score(company, "solar", DefaultProfile())
		if result.FitScore < 0 || result.FitScore > 50 {
			t.Errorf("fit score %d out of [0,50]", result.FitScore)
		}
		if result.UrgencyScore < 0 || result.UrgencyScore > 30 {
			t.Errorf("urgency score %d out of [0,30]", result.UrgencyScore)
		}
		if result.PriorityScore != result.FitScore+result.UrgencyScore {
			t.Errorf("priority %d != fit %d + urgency %d", result.PriorityScore, result.FitScore, result.UrgencyScore)
		}
	}
}

func TestScore_AllNullScoresZero(t *testing.T) {
	result := Score(domain.Company{}, "solar", DefaultProfile())
	if result.FitScore != 0 || result.UrgencyScore != 0 || result.PriorityScore != 0 {
		t.Fatalf("empty facility should score zero, got %+v", result)
	}
}

func TestScore_MonotonicBillingResponse(t *testing.T) {
	profile := DefaultProfile()
	prev := -1
	for _, bill := range []float64{5000, 15000, 30000, 60000, 150000} {
		company := domain.Company{MonthlyBillRM: ptrFloat(bill)}
		result := Score(company, "solar", profile)
		if result.FitScore < prev {
			t.Fatalf("fit score decreased when bill rose to %.0f", bill)
		}
		prev = result.FitScore
	}
}

func TestScore_SweetSpotDemandOutranksEdges(t *testing.T) {
	profile := DefaultProfile()
	inBand := Score(domain.Company{MaxDemandKW: ptrFloat(500)}, "solar", profile)
	below := Score(domain.Company{MaxDemandKW: ptrFloat(50)}, "solar", profile)
	above := Score(domain.Company{MaxDemandKW: ptrFloat(2500)}, "solar", profile)

	if inBand.UrgencyScore <= below.UrgencyScore {
		t.Error("sweet-spot demand should outrank small demand")
	}
	if inBand.UrgencyScore <= above.UrgencyScore {
		t.Error("sweet-spot demand should outrank over-ceiling demand")
	}
	if above.UrgencyScore <= 0 {
		t.Error("over-ceiling demand should still contribute some urgency")
	}
}

func TestScore_StrongFacilityNearsCeiling(t *testing.T) {
	result := Score(strongFacility(), "solar", DefaultProfile())
	if result.FitScore < 40 {
		t.Errorf("strong facility fit %d, expected >= 40", result.FitScore)
	}
	if result.UrgencyScore < 25 {
		t.Errorf("strong facility urgency %d, expected >= 25", result.UrgencyScore)
	}
}

func TestScore_UnknownOpportunityTypeFallsBackToDefault(t *testing.T) {
	company := strongFacility()
	got := Score(company, "carwash", DefaultProfile())
	want := Score(company, "", Profile{Default: neutralWeights})
	if got.FitScore != want.FitScore || got.UrgencyScore != want.UrgencyScore {
		t.Fatalf("unknown type got %+v, neutral default %+v", got, want)
	}
}

func TestScore_FactorsRecorded(t *testing.T) {
	result := Score(strongFacility(), "solar", DefaultProfile())
	for _, name := range []string{"sector", "zone", "billing", "roof", "hours", "demand_band", "owner_occupied", "single_tenant"} {
		if _, ok := result.Factors[name]; !ok {
			t.Errorf("factor %s missing from result", name)
		}
	}
}

package domain

import (
	"reflect"
	"testing"
)

func fullQualification() Qualification {
	return Qualification{
		OwnerPresent:            true,
		OwnBuilding:             true,
		RoofSuitable:            true,
		SufficientTNB:           true,
		BudgetConfirmed:         true,
		TimelineValid:           true,
		DecisionMakerIdentified: true,
		ComplianceChecked:       true,
	}
}

func TestQualification_CompleteRequiresAllFlags(t *testing.T) {
	if (Qualification{}).Complete() {
		t.Error("empty checklist must not be complete")
	}
	if !fullQualification().Complete() {
		t.Error("all-true checklist must be complete")
	}
}

func TestQualification_FlippingAnyFlagBreaksCompleteness(t *testing.T) {
	base := fullQualification()
	v := reflect.ValueOf(&base).Elem()
	for i := 0; i < v.NumField(); i++ {
		q := fullQualification()
		reflect.ValueOf(&q).Elem().Field(i).SetBool(false)
		if q.Complete() {
			t.Errorf("checklist with %s=false must not be complete", v.Type().Field(i).Name)
		}
		if len(q.Missing()) != 1 {
			t.Errorf("expected exactly one missing field when %s=false, got %v", v.Type().Field(i).Name, q.Missing())
		}
	}
}

func TestQualification_MissingNamesFieldsInOrder(t *testing.T) {
	q := fullQualification()
	q.ComplianceChecked = false
	q.OwnerPresent = false

	missing := q.Missing()
	want := []string{"owner_present", "compliance_checked"}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("Missing() = %v, want %v", missing, want)
	}
}

func TestQualification_MissingEmptyWhenComplete(t *testing.T) {
	if missing := fullQualification().Missing(); len(missing) != 0 {
		t.Fatalf("complete checklist reported missing fields: %v", missing)
	}
}

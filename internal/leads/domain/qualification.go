package domain

// Qualification is the 8-point checklist a lead must fully satisfy before it
// may enter the qualified status. Flags are independently settable; the
// checklist is replaced wholesale by the execution engine, never patched.
type Qualification struct {
	OwnerPresent            bool `json:"owner_present"`
	OwnBuilding             bool `json:"own_building"`
	RoofSuitable            bool `json:"roof_suitable"`
	SufficientTNB           bool `json:"sufficient_tnb"`
	BudgetConfirmed         bool `json:"budget_confirmed"`
	TimelineValid           bool `json:"timeline_valid"`
	DecisionMakerIdentified bool `json:"decision_maker_identified"`
	ComplianceChecked       bool `json:"compliance_checked"`
}

// qualificationFields pairs each flag with its stable field name, in the
// order missing fields are reported.
func (q Qualification) fields() []struct {
	name string
	set  bool
} {
	return []struct {
		name string
		set  bool
	}{
		{"owner_present", q.OwnerPresent},
		{"own_building", q.OwnBuilding},
		{"roof_suitable", q.RoofSuitable},
		{"sufficient_tnb", q.SufficientTNB},
		{"budget_confirmed", q.BudgetConfirmed},
		{"timeline_valid", q.TimelineValid},
		{"decision_maker_identified", q.DecisionMakerIdentified},
		{"compliance_checked", q.ComplianceChecked},
	}
}

// Complete reports whether every checklist flag is set.
func (q Qualification) Complete() bool {
	for _, f := range q.fields() {
		if !f.set {
			return false
		}
	}
	return true
}

// Missing returns the field names of unset flags, in checklist order.
func (q Qualification) Missing() []string {
	missing := make([]string, 0)
	for _, f := range q.fields() {
		if !f.set {
			missing = append(missing, f.name)
		}
	}
	return missing
}

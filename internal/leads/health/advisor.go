// Package health implements the read-only lead health advisor. Evaluate is a
// pure diagnostic over state supplied by the caller; it never touches
// persistence and never mutates anything.
package health

import (
	"fmt"
	"time"

	"leadgen_backend/internal/leads/domain"
)

// Risk classifies how much attention a lead needs.
type Risk string

const (
	RiskHealthy Risk = "healthy"
	RiskStalled Risk = "stalled"
	RiskAtRisk  Risk = "at_risk"
)

// Priority classifies how soon to act.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

const (
	// inactivityThreshold is the maximum gap since the last activity before
	// a lead counts as stalled.
	inactivityThreshold = 3 * 24 * time.Hour

	// outlierMultiplier flags the current dwell as an outlier against the
	// supplied historical average.
	outlierMultiplier = 1.5
)

// stageDwellLimits are the expected maximum days a lead spends in each
// non-terminal status before it counts as stalled.
var stageDwellLimits = map[domain.Status]time.Duration{
	domain.StatusIdentified:        14 * 24 * time.Hour,
	domain.StatusOutreached:        7 * 24 * time.Hour,
	domain.StatusResponded:         7 * 24 * time.Hour,
	domain.StatusQualified:         10 * 24 * time.Hour,
	domain.StatusAtapScreened:      10 * 24 * time.Hour,
	domain.StatusAppointmentBooked: 14 * 24 * time.Hour,
	domain.StatusSurveyComplete:    21 * 24 * time.Hour,
}

// checklistExpectedStatuses are the post-response, pre-qualified statuses
// where an incomplete checklist is a gap worth chasing.
var checklistExpectedStatuses = map[domain.Status]bool{
	domain.StatusResponded: true,
}

// Input bundles everything Evaluate needs; all fields are supplied by the
// caller.
type Input struct {
	Lead       domain.Lead
	Activities []domain.Activity
	// AvgStageDuration is the historical average dwell for the lead's
	// current stage, when known.
	AvgStageDuration *time.Duration
	Now              time.Time
}

// Diagnostics is the machine-readable companion to the suggestions list.
type Diagnostics struct {
	LastActivityAt     *time.Time `json:"lastActivityAt"`
	LastStatusChangeAt *time.Time `json:"lastStatusChangeAt"`
	CurrentDwell       string     `json:"currentDwell"`
	RegressionDetected bool       `json:"regressionDetected"`
}

// Report is the advisor's verdict for one lead.
type Report struct {
	Risk                 Risk        `json:"risk"`
	Priority             Priority    `json:"priority"`
	MissingQualification []string    `json:"missingQualification"`
	Suggestions          []string    `json:"suggestions"`
	Diagnostics          Diagnostics `json:"diagnostics"`
}

// Evaluate applies each rule independently and keeps the most severe
// outcome. Terminal leads override everything: a closed lead is never at
// risk.
func Evaluate(in Input) Report {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	lastActivityAt := lastActivityTime(in.Activities)
	lastStatusChangeAt := lastStatusChangeTime(in.Activities)
	regression := regressionDetected(in.Activities)
	dwell := currentDwell(in.Lead, lastStatusChangeAt, now)

	report := Report{
		Risk:                 RiskHealthy,
		Priority:             PriorityLow,
		MissingQualification: []string{},
		Suggestions:          []string{},
		Diagnostics: Diagnostics{
			LastActivityAt:     lastActivityAt,
			LastStatusChangeAt: lastStatusChangeAt,
			CurrentDwell:       dwell.Truncate(time.Minute).String(),
			RegressionDetected: regression,
		},
	}

	if domain.IsTerminal(in.Lead.Status) {
		return report
	}

	if limit, ok := stageDwellLimits[in.Lead.Status]; ok && dwell > limit {
		report.escalate(RiskStalled, PriorityHigh)
		report.Suggestions = append(report.Suggestions,
			fmt.Sprintf("lead has sat in %s for %d days (limit %d); push it forward or close it out",
				in.Lead.Status, int(dwell.Hours()/24), int(limit.Hours()/24)))
	}

	if checklistExpectedStatuses[in.Lead.Status] {
		if missing := in.Lead.Qualification.Missing(); len(missing) > 0 {
			report.MissingQualification = missing
			report.escalate(RiskHealthy, PriorityMedium)
			for _, field := range missing {
				report.Suggestions = append(report.Suggestions,
					fmt.Sprintf("confirm %s before attempting qualification", field))
			}
		}
	}

	if lastActivityAt == nil || now.Sub(*lastActivityAt) > inactivityThreshold {
		report.escalate(RiskStalled, PriorityMedium)
		report.Suggestions = append(report.Suggestions,
			"no recent activity; log an outreach touch to keep the lead warm")
	}

	if regression {
		report.escalate(RiskAtRisk, PriorityHigh)
		report.Suggestions = append(report.Suggestions, "regression detected: lead moved backward in the pipeline; review with the account owner")
	}

	if in.AvgStageDuration != nil && *in.AvgStageDuration > 0 &&
		dwell > time.Duration(float64(*in.AvgStageDuration)*outlierMultiplier) {
		report.escalate(RiskAtRisk, PriorityHigh)
		report.Suggestions = append(report.Suggestions,
			"current stage dwell is well above the historical average for this stage")
	}

	return report
}

// escalate raises risk and priority, never lowers them.
func (r *Report) escalate(risk Risk, priority Priority) {
	if riskSeverity(risk) > riskSeverity(r.Risk) {
		r.Risk = risk
	}
	if prioritySeverity(priority) > prioritySeverity(r.Priority) {
		r.Priority = priority
	}
}

func riskSeverity(r Risk) int {
	switch r {
	case RiskStalled:
		return 1
	case RiskAtRisk:
		return 2
	default:
		return 0
	}
}

func prioritySeverity(p Priority) int {
	switch p {
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	default:
		return 0
	}
}

func lastActivityTime(activities []domain.Activity) *time.Time {
	var last *time.Time
	for i := range activities {
		t := activities[i].CreatedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last
}

func lastStatusChangeTime(activities []domain.Activity) *time.Time {
	var last *time.Time
	for i := range activities {
		if activities[i].Kind != domain.ActivityStatusChanged {
			continue
		}
		t := activities[i].CreatedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last
}

// regressionDetected scans status_changed history for any transition whose
// destination ranks earlier than its origin. Moves into closed_lost are the
// normal way to lose a lead, not a regression.
func regressionDetected(activities []domain.Activity) bool {
	for i := range activities {
		if activities[i].Kind != domain.ActivityStatusChanged {
			continue
		}
		meta, ok := activities[i].Metadata.(domain.StatusChangedMeta)
		if !ok {
			continue
		}
		if meta.To == domain.StatusClosedLost {
			continue
		}
		if domain.Rank(meta.To) < domain.Rank(meta.From) {
			return true
		}
	}
	return false
}

// currentDwell measures time in the current stage: since the last status
// change, falling back to lead creation for leads still in their first
// stage.
func currentDwell(lead domain.Lead, lastStatusChangeAt *time.Time, now time.Time) time.Duration {
	since := lead.CreatedAt
	if lastStatusChangeAt != nil {
		since = *lastStatusChangeAt
	}
	if since.IsZero() || since.After(now) {
		return 0
	}
	return now.Sub(since)
}

// Package domain provides core business rules for the leads bounded context.
// It is the single authoritative encoding of the pipeline status graph and
// the qualification rule; no other layer re-encodes them.
package domain

// Status is a lead's position in the sales pipeline. A lead holds exactly
// one status at a time and is mutated only through the execution engine.
type Status string

const (
	StatusIdentified        Status = "identified"
	StatusOutreached        Status = "outreached"
	StatusResponded         Status = "responded"
	StatusQualified         Status = "qualified"
	StatusAtapScreened      Status = "atap_screened"
	StatusAppointmentBooked Status = "appointment_booked"
	StatusSurveyComplete    Status = "survey_complete"
	StatusClosedWon         Status = "closed_won"
	StatusClosedLost        Status = "closed_lost"
)

// statusRank is the canonical pipeline order. Regression detection compares
// ranks, never array positions. Terminal statuses share the highest ranks.
var statusRank = map[Status]int{
	StatusIdentified:        0,
	StatusOutreached:        1,
	StatusResponded:         2,
	StatusQualified:         3,
	StatusAtapScreened:      4,
	StatusAppointmentBooked: 5,
	StatusSurveyComplete:    6,
	StatusClosedWon:         7,
	StatusClosedLost:        8,
}

// forwardEdges holds the explicit forward transitions. Every non-terminal
// status additionally allows a transition to closed_lost; that edge is added
// in CanTransition rather than duplicated here.
var forwardEdges = map[Status][]Status{
	StatusIdentified:        {StatusOutreached},
	StatusOutreached:        {StatusResponded},
	StatusResponded:         {StatusQualified},
	StatusQualified:         {StatusAtapScreened},
	StatusAtapScreened:      {StatusAppointmentBooked},
	StatusAppointmentBooked: {StatusSurveyComplete, StatusClosedWon},
	StatusSurveyComplete:    {StatusClosedWon},
}

// AllStatuses lists every status in canonical pipeline order.
func AllStatuses() []Status {
	return []Status{
		StatusIdentified,
		StatusOutreached,
		StatusResponded,
		StatusQualified,
		StatusAtapScreened,
		StatusAppointmentBooked,
		StatusSurveyComplete,
		StatusClosedWon,
		StatusClosedLost,
	}
}

// IsKnownStatus reports whether the string names a pipeline status.
func IsKnownStatus(s string) bool {
	_, ok := statusRank[Status(s)]
	return ok
}

// Rank returns the status's position in the canonical pipeline order,
// or -1 for an unknown status.
func Rank(s Status) int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return s == StatusClosedWon || s == StatusClosedLost
}

// CanTransition reports whether `to` is reachable from `from` in a single
// step of the status graph. Self-loops are deliberately absent from the
// graph; rejecting from == to as a distinct error is the engine's job.
func CanTransition(from, to Status) bool {
	if !IsKnownStatus(string(from)) || !IsKnownStatus(string(to)) {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	if to == StatusClosedLost {
		return from != to
	}
	for _, next := range forwardEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTargets returns the statuses reachable from the given status in one
// step, in canonical order. Used by the pre-flight transitions endpoint.
func ValidTargets(from Status) []Status {
	targets := make([]Status, 0, 3)
	for _, to := range AllStatuses() {
		if CanTransition(from, to) {
			targets = append(targets, to)
		}
	}
	return targets
}

package domain

import "testing"

func TestCanTransition_ForwardEdges(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusIdentified, StatusOutreached, true},
		{StatusOutreached, StatusResponded, true},
		{StatusResponded, StatusQualified, true},
		{StatusQualified, StatusAtapScreened, true},
		{StatusAtapScreened, StatusAppointmentBooked, true},
		{StatusAppointmentBooked, StatusSurveyComplete, true},
		{StatusAppointmentBooked, StatusClosedWon, true},
		{StatusSurveyComplete, StatusClosedWon, true},

		{StatusIdentified, StatusResponded, false},
		{StatusOutreached, StatusIdentified, false},
		{StatusResponded, StatusAtapScreened, false},
		{StatusQualified, StatusAppointmentBooked, false},
		{StatusIdentified, StatusClosedWon, false},
		{StatusResponded, StatusClosedWon, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransition_EveryNonTerminalReachesClosedLost(t *testing.T) {
	for _, s := range AllStatuses() {
		if IsTerminal(s) {
			continue
		}
		if !CanTransition(s, StatusClosedLost) {
			t.Errorf("%s should be able to transition to closed_lost", s)
		}
	}
}

func TestCanTransition_TerminalStatusesHaveNoExits(t *testing.T) {
	for _, from := range []Status{StatusClosedWon, StatusClosedLost} {
		for _, to := range AllStatuses() {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestCanTransition_NoSelfLoops(t *testing.T) {
	for _, s := range AllStatuses() {
		if CanTransition(s, s) {
			t.Errorf("self-loop allowed for %s", s)
		}
	}
}

func TestCanTransition_TotalOverStatusSet(t *testing.T) {
	// Exhaustive edge count: each non-terminal status allows its documented
	// successors plus closed_lost, nothing else.
	wantEdges := map[Status]int{
		StatusIdentified:        2,
		StatusOutreached:        2,
		StatusResponded:         2,
		StatusQualified:         2,
		StatusAtapScreened:      2,
		StatusAppointmentBooked: 3,
		StatusSurveyComplete:    2,
		StatusClosedWon:         0,
		StatusClosedLost:        0,
	}

	for _, from := range AllStatuses() {
		count := 0
		for _, to := range AllStatuses() {
			if CanTransition(from, to) {
				count++
			}
		}
		if count != wantEdges[from] {
			t.Errorf("%s has %d valid targets, want %d", from, count, wantEdges[from])
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if CanTransition("nonsense", StatusOutreached) {
		t.Error("unknown from-status must not transition")
	}
	if CanTransition(StatusIdentified, "nonsense") {
		t.Error("unknown to-status must not be reachable")
	}
}

func TestRank_CanonicalOrder(t *testing.T) {
	prev := -1
	for _, s := range AllStatuses() {
		r := Rank(s)
		if r <= prev {
			t.Fatalf("rank of %s (%d) not increasing after %d", s, r, prev)
		}
		prev = r
	}
	if Rank("nonsense") != -1 {
		t.Error("unknown status should rank -1")
	}
}

func TestValidTargets(t *testing.T) {
	targets := ValidTargets(StatusAppointmentBooked)
	want := []Status{StatusSurveyComplete, StatusClosedWon, StatusClosedLost}
	if len(targets) != len(want) {
		t.Fatalf("got %v, want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("got %v, want %v", targets, want)
		}
	}
}

package service

import (
	"testing"

	"leadgen_backend/internal/leads/domain"
)

func TestTransitionTable_CoversEveryStatus(t *testing.T) {
	table := (&Service{}).TransitionTable()

	if len(table.Statuses) != len(domain.AllStatuses()) {
		t.Fatalf("expected %d statuses, got %d", len(domain.AllStatuses()), len(table.Statuses))
	}
	for i, st := range domain.AllStatuses() {
		rule := table.Statuses[i]
		if rule.Status != string(st) {
			t.Fatalf("position %d: expected %s, got %s", i, st, rule.Status)
		}
		if rule.Rank != domain.Rank(st) {
			t.Fatalf("status %s: expected rank %d, got %d", st, domain.Rank(st), rule.Rank)
		}
		if rule.Terminal && len(rule.ValidTargets) != 0 {
			t.Fatalf("terminal status %s must have no targets", rule.Status)
		}
		if !rule.Terminal && len(rule.ValidTargets) == 0 {
			t.Fatalf("open status %s must have at least one target", rule.Status)
		}
	}
}

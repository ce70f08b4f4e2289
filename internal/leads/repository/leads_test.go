package repository

import (
	"testing"

	"github.com/google/uuid"

	"leadgen_backend/internal/leads/domain"
)

func TestLeadListFilter_NoFilters(t *testing.T) {
	where, args := leadListFilter(ListLeadsParams{})
	if where != "TRUE" {
		t.Fatalf("where = %q, want TRUE", where)
	}
	if len(args) != 0 {
		t.Fatalf("args = %d, want 0", len(args))
	}
}

func TestLeadListFilter_StatusOnly(t *testing.T) {
	status := domain.StatusQualified
	where, args := leadListFilter(ListLeadsParams{Status: &status})
	if where != "TRUE AND status = $1" {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 1 || args[0] != string(domain.StatusQualified) {
		t.Fatalf("args = %v", args)
	}
}

func TestLeadListFilter_StatusAndCompany(t *testing.T) {
	status := domain.StatusOutreached
	companyID := uuid.New()
	where, args := leadListFilter(ListLeadsParams{Status: &status, CompanyID: &companyID})
	if where != "TRUE AND status = $1 AND company_id = $2" {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 2 || args[0] != string(domain.StatusOutreached) || args[1] != companyID {
		t.Fatalf("args = %v", args)
	}
}

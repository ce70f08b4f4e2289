package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store with commit/rollback semantics: writes
// inside ExecuteTx land in a staged copy and are only merged back when the
// closure returns nil.
type fakeStore struct {
	leads       map[uuid.UUID]domain.Lead
	activities  []fakeActivity
	eligibility map[uuid.UUID]bool
	now         time.Time
	appendErr   error
}

type fakeActivity struct {
	leadID uuid.UUID
	kind   domain.ActivityKind
	meta   domain.ActivityMetadata
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:       make(map[uuid.UUID]domain.Lead),
		eligibility: make(map[uuid.UUID]bool),
		now:         time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeStore) ExecuteTx(_ context.Context, fn func(tx TxStore) error) error {
	staged := &fakeTx{
		leads:       make(map[uuid.UUID]domain.Lead, len(s.leads)),
		eligibility: s.eligibility,
		now:         s.now,
		appendErr:   s.appendErr,
	}
	for id, l := range s.leads {
		staged.leads[id] = l
	}
	if err := fn(staged); err != nil {
		return err
	}
	s.leads = staged.leads
	s.activities = append(s.activities, staged.activities...)
	return nil
}

type fakeTx struct {
	leads       map[uuid.UUID]domain.Lead
	activities  []fakeActivity
	eligibility map[uuid.UUID]bool
	now         time.Time
	appendErr   error
}

func (t *fakeTx) InsertLead(_ context.Context, params CreateParams) (domain.Lead, error) {
	lead := domain.Lead{
		ID:              uuid.New(),
		CompanyID:       params.CompanyID,
		ContactID:       params.ContactID,
		OpportunityType: params.OpportunityType,
		Status:          domain.StatusIdentified,
		Notes:           params.Notes,
		CreatedAt:       t.now,
		UpdatedAt:       t.now,
	}
	t.leads[lead.ID] = lead
	return lead, nil
}

func (t *fakeTx) GetLeadForUpdate(_ context.Context, leadID uuid.UUID) (domain.Lead, error) {
	lead, ok := t.leads[leadID]
	if !ok {
		return domain.Lead{}, ErrLeadNotFound
	}
	return lead, nil
}

func (t *fakeTx) UpdateLeadStatus(_ context.Context, leadID uuid.UUID, status domain.Status) (time.Time, error) {
	lead := t.leads[leadID]
	lead.Status = status
	lead.UpdatedAt = t.now
	t.leads[leadID] = lead
	return t.now, nil
}

func (t *fakeTx) UpdateLeadQualification(_ context.Context, leadID uuid.UUID, q domain.Qualification) (time.Time, error) {
	lead := t.leads[leadID]
	lead.Qualification = q
	lead.UpdatedAt = t.now
	t.leads[leadID] = lead
	return t.now, nil
}

func (t *fakeTx) AppendActivity(_ context.Context, leadID uuid.UUID, meta domain.ActivityMetadata, _ *uuid.UUID) error {
	if t.appendErr != nil {
		return t.appendErr
	}
	t.activities = append(t.activities, fakeActivity{leadID: leadID, kind: meta.ActivityKind(), meta: meta})
	return nil
}

func (t *fakeTx) HasEligibilityRecord(_ context.Context, leadID uuid.UUID) (bool, error) {
	return t.eligibility[leadID], nil
}

func completeQualification() domain.Qualification {
	return domain.Qualification{
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

func seedLead(s *fakeStore, status domain.Status, q domain.Qualification) uuid.UUID {
	id := uuid.New()
	s.leads[id] = domain.Lead{
		ID:            id,
		CompanyID:     uuid.New(),
		Status:        status,
		Qualification: q,
		CreatedAt:     s.now.Add(-24 * time.Hour),
		UpdatedAt:     s.now.Add(-24 * time.Hour),
	}
	return id
}

func ptr(s domain.Status) *domain.Status { return &s }

func TestExecute_ForwardTransition(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusIdentified, domain.Qualification{})
	eng := New(store, nil)

	snap, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:    id,
		Activity:  domain.LoggedMeta{Channel: "phone", Summary: "first outreach call"},
		NewStatus: ptr(domain.StatusOutreached),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if snap.Status != domain.StatusOutreached {
		t.Fatalf("status = %s, want %s", snap.Status, domain.StatusOutreached)
	}
	if snap.PreviousStatus != domain.StatusIdentified {
		t.Fatalf("previous = %s, want %s", snap.PreviousStatus, domain.StatusIdentified)
	}
	if store.leads[id].Status != domain.StatusOutreached {
		t.Fatalf("persisted status = %s", store.leads[id].Status)
	}

	if len(store.activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(store.activities))
	}
	if store.activities[0].kind != domain.ActivityLogged {
		t.Fatalf("first activity = %s, want %s", store.activities[0].kind, domain.ActivityLogged)
	}
	if store.activities[1].kind != domain.ActivityStatusChanged {
		t.Fatalf("second activity = %s, want %s", store.activities[1].kind, domain.ActivityStatusChanged)
	}
	sc := store.activities[1].meta.(domain.StatusChangedMeta)
	if sc.From != domain.StatusIdentified || sc.To != domain.StatusOutreached {
		t.Fatalf("status change meta = %+v", sc)
	}
}

func TestExecute_BackwardTransitionRejected(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusOutreached, domain.Qualification{})
	eng := New(store, nil)

	_, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:    id,
		Activity:  domain.LoggedMeta{Summary: "attempt to walk back"},
		NewStatus: ptr(domain.StatusIdentified),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
	if apperr.GetCode(err) != CodeInvalidTransition {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), CodeInvalidTransition)
	}
	if store.leads[id].Status != domain.StatusOutreached {
		t.Fatalf("status mutated on rejected transition: %s", store.leads[id].Status)
	}
	if len(store.activities) != 0 {
		t.Fatalf("activities logged on rejected transition: %d", len(store.activities))
	}
}

func TestExecute_SameStatusRejected(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusResponded, domain.Qualification{})
	eng := New(store, nil)

	_, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:    id,
		Activity:  domain.LoggedMeta{Summary: "noop"},
		NewStatus: ptr(domain.StatusResponded),
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("kind = %v, want conflict", apperr.GetKind(err))
	}
	if apperr.GetCode(err) != CodeSameStatus {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), CodeSameStatus)
	}
}

func TestExecute_QualificationGate(t *testing.T) {
	incomplete := completeQualification()
	incomplete.ComplianceChecked = false

	store := newFakeStore()
	id := seedLead(store, domain.StatusResponded, incomplete)
	eng := New(store, nil)

	_, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:    id,
		Activity:  domain.LoggedMeta{Summary: "push to qualified"},
		NewStatus: ptr(domain.StatusQualified),
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}
	if apperr.GetCode(err) != CodeQualificationIncomplete {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), CodeQualificationIncomplete)
	}

	appErr := err.(*apperr.Error)
	details := appErr.Details.(map[string]any)
	missing := details["missing"].([]string)
	if len(missing) != 1 || missing[0] != "compliance_checked" {
		t.Fatalf("missing = %v, want [compliance_checked]", missing)
	}

	if store.leads[id].Status != domain.StatusResponded {
		t.Fatalf("status mutated by gated transition: %s", store.leads[id].Status)
	}
	if len(store.activities) != 0 {
		t.Fatalf("activities logged by gated transition: %d", len(store.activities))
	}
}

func TestExecute_QualificationReplacementIsEffectiveForGate(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusResponded, domain.Qualification{})
	eng := New(store, nil)

	full := completeQualification()
	snap, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:        id,
		Activity:      domain.LoggedMeta{Summary: "checklist done on site visit"},
		NewStatus:     ptr(domain.StatusQualified),
		Qualification: &full,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if snap.Status != domain.StatusQualified {
		t.Fatalf("status = %s, want %s", snap.Status, domain.StatusQualified)
	}
	if !store.leads[id].Qualification.Complete() {
		t.Fatalf("qualification not persisted")
	}

	wantKinds := []domain.ActivityKind{
		domain.ActivityQualificationUpdated,
		domain.ActivityLogged,
		domain.ActivityStatusChanged,
	}
	if len(store.activities) != len(wantKinds) {
		t.Fatalf("activities = %d, want %d", len(store.activities), len(wantKinds))
	}
	for i, want := range wantKinds {
		if store.activities[i].kind != want {
			t.Fatalf("activity[%d] = %s, want %s", i, store.activities[i].kind, want)
		}
	}
}

func TestExecute_QualificationRollsBackWithFailedTransition(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusOutreached, domain.Qualification{})
	eng := New(store, nil)

	full := completeQualification()
	_, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:        id,
		Activity:      domain.LoggedMeta{Summary: "bad jump"},
		NewStatus:     ptr(domain.StatusAppointmentBooked),
		Qualification: &full,
	})
	if apperr.GetCode(err) != CodeInvalidTransition {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), CodeInvalidTransition)
	}
	if store.leads[id].Qualification.Complete() {
		t.Fatalf("qualification persisted despite failed execution")
	}
	if len(store.activities) != 0 {
		t.Fatalf("activities persisted despite failed execution: %d", len(store.activities))
	}
}

func TestExecute_ScreeningRequiresEligibilityRecord(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusQualified, completeQualification())
	eng := New(store, nil)

	params := ExecuteParams{
		LeadID:    id,
		Activity:  domain.LoggedMeta{Summary: "screen facility"},
		NewStatus: ptr(domain.StatusAtapScreened),
	}

	_, err := eng.Execute(context.Background(), params)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("kind = %v, want conflict", apperr.GetKind(err))
	}
	if apperr.GetCode(err) != CodeUpstreamStateMissing {
		t.Fatalf("code = %q, want %q", apperr.GetCode(err), CodeUpstreamStateMissing)
	}

	store.eligibility[id] = true
	snap, err := eng.Execute(context.Background(), params)
	if err != nil {
		t.Fatalf("execute with record: %v", err)
	}
	if snap.Status != domain.StatusAtapScreened {
		t.Fatalf("status = %s, want %s", snap.Status, domain.StatusAtapScreened)
	}
}

func TestExecute_ActivityOnlyExecution(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusOutreached, domain.Qualification{})
	eng := New(store, nil)

	snap, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:   id,
		Activity: domain.LoggedMeta{Channel: "email", Summary: "sent proposal deck"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if snap.Status != domain.StatusOutreached || snap.PreviousStatus != domain.StatusOutreached {
		t.Fatalf("activity-only execution changed status: %+v", snap)
	}
	if len(store.activities) != 1 || store.activities[0].kind != domain.ActivityLogged {
		t.Fatalf("activities = %+v", store.activities)
	}
}

func TestExecute_ClosedLostFromAnyNonTerminal(t *testing.T) {
	for _, from := range domain.AllStatuses() {
		if domain.IsTerminal(from) {
			continue
		}
		store := newFakeStore()
		id := seedLead(store, from, completeQualification())
		eng := New(store, nil)

		snap, err := eng.Execute(context.Background(), ExecuteParams{
			LeadID:    id,
			Activity:  domain.LoggedMeta{Summary: "customer withdrew"},
			NewStatus: ptr(domain.StatusClosedLost),
		})
		if err != nil {
			t.Fatalf("close from %s: %v", from, err)
		}
		if snap.Status != domain.StatusClosedLost {
			t.Fatalf("close from %s: status = %s", from, snap.Status)
		}
	}
}

func TestExecute_TerminalLeadsAreFrozen(t *testing.T) {
	for _, from := range []domain.Status{domain.StatusClosedWon, domain.StatusClosedLost} {
		store := newFakeStore()
		id := seedLead(store, from, completeQualification())
		eng := New(store, nil)

		_, err := eng.Execute(context.Background(), ExecuteParams{
			LeadID:    id,
			Activity:  domain.LoggedMeta{Summary: "reopen attempt"},
			NewStatus: ptr(domain.StatusIdentified),
		})
		if apperr.GetCode(err) != CodeInvalidTransition {
			t.Fatalf("from %s: code = %q, want %q", from, apperr.GetCode(err), CodeInvalidTransition)
		}
	}
}

func TestExecute_LeadNotFound(t *testing.T) {
	eng := New(newFakeStore(), nil)

	_, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:   uuid.New(),
		Activity: domain.LoggedMeta{Summary: "ghost"},
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("kind = %v, want not found", apperr.GetKind(err))
	}
}

func TestCreate_WritesLeadAndCreationActivityTogether(t *testing.T) {
	store := newFakeStore()
	eng := New(store, nil)
	companyID := uuid.New()

	lead, err := eng.Create(context.Background(), CreateParams{
		CompanyID:       companyID,
		OpportunityType: "solar",
		Source:          "csv_import",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if lead.Status != domain.StatusIdentified {
		t.Fatalf("status = %s, want %s", lead.Status, domain.StatusIdentified)
	}
	if _, ok := store.leads[lead.ID]; !ok {
		t.Fatal("lead not persisted")
	}

	if len(store.activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(store.activities))
	}
	created, ok := store.activities[0].meta.(domain.LeadCreatedMeta)
	if !ok || store.activities[0].kind != domain.ActivityLeadCreated {
		t.Fatalf("first activity = %s, want %s", store.activities[0].kind, domain.ActivityLeadCreated)
	}
	if created.CompanyID != companyID || created.Source != "csv_import" {
		t.Fatalf("creation meta = %+v", created)
	}
}

func TestCreate_RollsBackWhenAuditWriteFails(t *testing.T) {
	store := newFakeStore()
	store.appendErr = errors.New("activity insert failed")
	eng := New(store, nil)

	_, err := eng.Create(context.Background(), CreateParams{
		CompanyID:       uuid.New(),
		OpportunityType: "solar",
	})
	if err == nil {
		t.Fatal("expected error when the creation activity cannot be written")
	}
	if len(store.leads) != 0 {
		t.Fatalf("leads persisted = %d, want 0", len(store.leads))
	}
	if len(store.activities) != 0 {
		t.Fatalf("activities persisted = %d, want 0", len(store.activities))
	}
}

func TestExecute_SnapshotReflectsPersistedTimestamp(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusIdentified, domain.Qualification{})
	eng := New(store, nil)

	snap, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:    id,
		Activity:  domain.LoggedMeta{Channel: "phone", Summary: "first outreach call"},
		NewStatus: ptr(domain.StatusOutreached),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !snap.UpdatedAt.Equal(store.now) {
		t.Fatalf("snapshot updatedAt = %s, want row timestamp %s", snap.UpdatedAt, store.now)
	}
	if !store.leads[id].UpdatedAt.Equal(store.now) {
		t.Fatalf("row updatedAt = %s, want %s", store.leads[id].UpdatedAt, store.now)
	}
}

func TestExecute_ActivityOnlySnapshotKeepsRowTimestamp(t *testing.T) {
	store := newFakeStore()
	id := seedLead(store, domain.StatusOutreached, domain.Qualification{})
	before := store.leads[id].UpdatedAt
	eng := New(store, nil)

	snap, err := eng.Execute(context.Background(), ExecuteParams{
		LeadID:   id,
		Activity: domain.LoggedMeta{Channel: "email", Summary: "sent brochure"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !snap.UpdatedAt.Equal(before) {
		t.Fatalf("snapshot updatedAt = %s, want unchanged %s", snap.UpdatedAt, before)
	}
}

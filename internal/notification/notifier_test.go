package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"leadgen_backend/internal/email"
	"leadgen_backend/internal/events"
	platformevents "leadgen_backend/platform/events"
	"leadgen_backend/platform/logger"
)

type wonCall struct {
	to             string
	leadID         string
	previousStatus string
}

type fakeSender struct {
	wonCalls []wonCall
	wonErr   error
}

func (s *fakeSender) SendStalledLeadsDigest(_ context.Context, _ string, _ []email.DigestItem) error {
	return nil
}

func (s *fakeSender) SendLeadWonNotification(_ context.Context, toEmail string, leadID, previousStatus string) error {
	if s.wonErr != nil {
		return s.wonErr
	}
	s.wonCalls = append(s.wonCalls, wonCall{to: toEmail, leadID: leadID, previousStatus: previousStatus})
	return nil
}

func newTestBus(t *testing.T, sender *fakeSender, recipient string) *platformevents.InMemoryBus {
	t.Helper()
	log := logger.New("development")
	bus := platformevents.NewInMemoryBus(log)
	New(sender, recipient, log).RegisterHandlers(bus)
	return bus
}

func TestHandle_ClosedWonSendsNotification(t *testing.T) {
	sender := &fakeSender{}
	bus := newTestBus(t, sender, "sales@example.com")

	leadID := uuid.New()
	err := bus.PublishSync(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		From:      "survey_complete",
		To:        "closed_won",
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.wonCalls) != 1 {
		t.Fatalf("expected 1 won notification, got %d", len(sender.wonCalls))
	}
	call := sender.wonCalls[0]
	if call.to != "sales@example.com" {
		t.Errorf("expected recipient sales@example.com, got %s", call.to)
	}
	if call.leadID != leadID.String() {
		t.Errorf("expected lead %s, got %s", leadID, call.leadID)
	}
	if call.previousStatus != "survey_complete" {
		t.Errorf("expected previous status survey_complete, got %s", call.previousStatus)
	}
}

func TestHandle_OtherTransitionsDoNotSend(t *testing.T) {
	sender := &fakeSender{}
	bus := newTestBus(t, sender, "sales@example.com")

	err := bus.PublishSync(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		From:      "qualified",
		To:        "atap_screened",
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.wonCalls) != 0 {
		t.Fatalf("expected no won notifications, got %d", len(sender.wonCalls))
	}
}

func TestHandle_EmptyRecipientDisablesEmail(t *testing.T) {
	sender := &fakeSender{}
	bus := newTestBus(t, sender, "")

	err := bus.PublishSync(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		From:      "survey_complete",
		To:        "closed_won",
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(sender.wonCalls) != 0 {
		t.Fatalf("expected no won notifications without a recipient, got %d", len(sender.wonCalls))
	}
}

func TestHandle_SenderFailurePropagates(t *testing.T) {
	sender := &fakeSender{wonErr: errors.New("smtp down")}
	bus := newTestBus(t, sender, "sales@example.com")

	err := bus.PublishSync(context.Background(), events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		From:      "survey_complete",
		To:        "closed_won",
	})
	if err == nil {
		t.Fatal("expected error from failing sender, got nil")
	}
}

func TestHandle_StalledAndCreatedEventsAreConsumed(t *testing.T) {
	sender := &fakeSender{}
	bus := newTestBus(t, sender, "sales@example.com")

	err := bus.PublishSync(context.Background(), events.LeadCreated{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          uuid.New(),
		CompanyID:       uuid.New(),
		OpportunityType: "solar",
	})
	if err != nil {
		t.Fatalf("PublishSync(LeadCreated) returned error: %v", err)
	}

	err = bus.PublishSync(context.Background(), events.LeadStalled{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Status:    "outreached",
		Risk:      "high",
		Priority:  "high",
	})
	if err != nil {
		t.Fatalf("PublishSync(LeadStalled) returned error: %v", err)
	}

	if len(sender.wonCalls) != 0 {
		t.Fatalf("expected no won notifications for non-status events, got %d", len(sender.wonCalls))
	}
}

// Package notification consumes lead domain events from the bus: it keeps a
// structured log of pipeline movement and mails the sales inbox when a deal
// closes.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"leadgen_backend/internal/email"
	"leadgen_backend/internal/events"
	"leadgen_backend/internal/leads/domain"
	"leadgen_backend/platform/logger"
)

// Notifier is the event-bus consumer for lead events.
type Notifier struct {
	sender    email.Sender
	recipient string
	log       *logger.Logger
}

// New creates a notifier. An empty recipient disables the won-deal email
// but keeps event logging.
func New(sender email.Sender, recipient string, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, recipient: recipient, log: log}
}

// RegisterHandlers subscribes to all lead domain events on the event bus.
func (n *Notifier) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), n)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), n)
	bus.Subscribe(events.LeadStalled{}.EventName(), n)
}

// Handle dispatches one event. Unknown events are ignored so new publishers
// cannot break the consumer.
func (n *Notifier) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		n.log.Info("lead_created",
			slog.String("lead_id", e.LeadID.String()),
			slog.String("company_id", e.CompanyID.String()),
			slog.String("opportunity_type", e.OpportunityType),
		)
	case events.LeadStatusChanged:
		// Transition commits are already logged by the engine; the consumer
		// only acts on the closing move.
		if e.To == string(domain.StatusClosedWon) && n.recipient != "" {
			if err := n.sender.SendLeadWonNotification(ctx, n.recipient, e.LeadID.String(), e.From); err != nil {
				return fmt.Errorf("send lead won notification: %w", err)
			}
		}
	case events.LeadStalled:
		n.log.Warn("lead_stalled",
			slog.String("lead_id", e.LeadID.String()),
			slog.String("status", e.Status),
			slog.String("risk", e.Risk),
			slog.String("priority", e.Priority),
		)
	}
	return nil
}

var _ events.Handler = (*Notifier)(nil)

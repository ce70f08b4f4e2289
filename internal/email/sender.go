// Package email delivers operational mail for the pipeline: the
// stalled-leads digest produced by the health sweep and the notification
// sent when a deal closes.
package email

import (
	"context"

	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
)

// DigestItem is one flagged lead in the stalled-leads digest.
type DigestItem struct {
	LeadID      string
	CompanyName string
	Status      string
	Risk        string
	Priority    string
	Suggestions []string
}

// Sender delivers pipeline email.
type Sender interface {
	SendStalledLeadsDigest(ctx context.Context, toEmail string, items []DigestItem) error
	SendLeadWonNotification(ctx context.Context, toEmail string, leadID, previousStatus string) error
}

// NewSender builds the configured sender. When email is disabled the
// returned sender logs and drops messages instead of failing the caller.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		return &noopSender{log: log}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

type noopSender struct {
	log *logger.Logger
}

func (s *noopSender) SendStalledLeadsDigest(_ context.Context, toEmail string, items []DigestItem) error {
	s.log.Info("email disabled, dropping stalled-leads digest", "to", toEmail, "leads", len(items))
	return nil
}

func (s *noopSender) SendLeadWonNotification(_ context.Context, toEmail string, leadID, _ string) error {
	s.log.Info("email disabled, dropping lead-won notification", "to", toEmail, "leadId", leadID)
	return nil
}

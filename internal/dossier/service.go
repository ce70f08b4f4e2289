// Package dossier exports a lead's complete picture (facility, checklist,
// score, eligibility, health, timeline) as a JSON document in object
// storage, for handing over to field surveyors.
package dossier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leadgen_backend/internal/adapters/storage"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/apperr"
	"leadgen_backend/platform/logger"
)

// Service assembles and exports lead dossiers.
type Service struct {
	leads  *service.Service
	store  storage.Service
	bucket string
	log    *logger.Logger
}

// New creates a dossier service writing to the given bucket.
func New(leads *service.Service, store storage.Service, bucket string, log *logger.Logger) *Service {
	return &Service{leads: leads, store: store, bucket: bucket, log: log}
}

// document is the exported dossier shape.
type document struct {
	GeneratedAt string                        `json:"generatedAt"`
	Lead        transport.LeadResponse        `json:"lead"`
	Company     transport.CompanyResponse     `json:"company"`
	Score       transport.ScoreResponse       `json:"score"`
	Health      transport.HealthResponse      `json:"health"`
	Eligibility *transport.EligibilityResponse `json:"eligibility,omitempty"`
	Timeline    transport.TimelineResponse    `json:"timeline"`
}

// Export builds the dossier, uploads it, and returns a presigned download
// link. An absent eligibility determination is not an error; the section is
// simply omitted.
func (s *Service) Export(ctx context.Context, leadID uuid.UUID) (transport.DossierResponse, error) {
	lead, err := s.leads.GetLead(ctx, leadID)
	if err != nil {
		return transport.DossierResponse{}, err
	}
	company, err := s.leads.GetCompany(ctx, lead.CompanyID)
	if err != nil {
		return transport.DossierResponse{}, err
	}
	score, err := s.leads.GetScore(ctx, leadID)
	if err != nil {
		return transport.DossierResponse{}, err
	}
	healthReport, err := s.leads.GetHealth(ctx, leadID)
	if err != nil {
		return transport.DossierResponse{}, err
	}
	timeline, err := s.leads.GetTimeline(ctx, leadID)
	if err != nil {
		return transport.DossierResponse{}, err
	}

	doc := document{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Lead:        lead,
		Company:     company,
		Score:       score,
		Health:      healthReport,
		Timeline:    timeline,
	}

	eligibilityResp, err := s.leads.GetEligibility(ctx, leadID)
	switch {
	case err == nil:
		doc.Eligibility = &eligibilityResp
	case apperr.Is(err, apperr.KindNotFound):
		// No determination yet; export without the section.
	default:
		return transport.DossierResponse{}, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return transport.DossierResponse{}, fmt.Errorf("marshal dossier: %w", err)
	}

	fileKey := fmt.Sprintf("dossiers/%s/%s.json", leadID, time.Now().UTC().Format("20060102T150405Z"))
	if err := s.store.UploadBytes(ctx, s.bucket, fileKey, "application/json", data); err != nil {
		return transport.DossierResponse{}, err
	}

	link, err := s.store.GenerateDownloadURL(ctx, s.bucket, fileKey)
	if err != nil {
		return transport.DossierResponse{}, err
	}

	s.log.Info("dossier exported", "leadId", leadID, "fileKey", fileKey)

	return transport.DossierResponse{
		LeadID:    leadID,
		ObjectKey: fileKey,
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt.Format(time.RFC3339),
	}, nil
}

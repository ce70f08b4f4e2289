package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadgen_backend/internal/email"
	"leadgen_backend/internal/events"
	"leadgen_backend/internal/leads/health"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
)

const workerConcurrency = 10

type Worker struct {
	server          *asynq.Server
	mux             *asynq.ServeMux
	repo            *repository.Repo
	bus             events.Bus
	sender          email.Sender
	digestRecipient string
	log             *logger.Logger
}

// WorkerConfig combines the config surfaces the worker needs.
type WorkerConfig interface {
	config.SchedulerConfig
	GetDigestRecipient() string
}

func NewWorker(cfg WorkerConfig, pool *pgxpool.Pool, bus events.Bus, sender email.Sender, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: workerConcurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:          server,
		mux:             mux,
		repo:            repository.New(pool),
		bus:             bus,
		sender:          sender,
		digestRecipient: cfg.GetDigestRecipient(),
		log:             log,
	}

	mux.HandleFunc(TaskLeadsHealthSweep, w.handleHealthSweep)

	return w, nil
}

// handleHealthSweep evaluates every open lead and mails a digest of the
// flagged ones. Per-lead failures are logged and skipped so one bad lead
// cannot starve the sweep.
func (w *Worker) handleHealthSweep(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseHealthSweepPayload(task)
	if err != nil {
		return err
	}
	w.log.Info("health sweep started", "requestedAt", payload.RequestedAt)

	ids, err := w.repo.ListOpenLeadIDs(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	flagged := make([]email.DigestItem, 0)

	for _, id := range ids {
		lead, err := w.repo.GetLead(ctx, id)
		if err != nil {
			w.log.Error("health sweep: load lead", "leadId", id, "error", err)
			continue
		}
		activities, err := w.repo.ListActivities(ctx, id)
		if err != nil {
			w.log.Error("health sweep: load activities", "leadId", id, "error", err)
			continue
		}
		avg, err := w.repo.AvgStageDuration(ctx, lead.Status)
		if err != nil {
			w.log.Error("health sweep: avg stage duration", "leadId", id, "error", err)
			continue
		}

		report := health.Evaluate(health.Input{
			Lead:             lead,
			Activities:       activities,
			AvgStageDuration: avg,
			Now:              now,
		})
		if report.Risk == health.RiskHealthy {
			continue
		}

		w.bus.Publish(ctx, events.LeadStalled{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Status:    string(lead.Status),
			Risk:      string(report.Risk),
			Priority:  string(report.Priority),
		})

		companyName := lead.CompanyID.String()
		if company, err := w.repo.GetCompany(ctx, lead.CompanyID); err == nil {
			companyName = company.Name
		}
		flagged = append(flagged, email.DigestItem{
			LeadID:      lead.ID.String(),
			CompanyName: companyName,
			Status:      string(lead.Status),
			Risk:        string(report.Risk),
			Priority:    string(report.Priority),
			Suggestions: report.Suggestions,
		})
	}

	w.log.Info("health sweep finished", "open", len(ids), "flagged", len(flagged))

	if len(flagged) == 0 || w.digestRecipient == "" {
		return nil
	}
	return w.sender.SendStalledLeadsDigest(ctx, w.digestRecipient, flagged)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

package scheduler

import (
	"fmt"

	"github.com/hibiken/asynq"

	"leadgen_backend/platform/config"
	"leadgen_backend/platform/logger"
)

// Periodic wraps the asynq scheduler that triggers the recurring health
// sweep.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewPeriodic registers the health sweep at the configured interval.
func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	interval := cfg.GetHealthSweepInterval()
	if interval <= 0 {
		return nil, fmt.Errorf("health sweep interval not configured")
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	task, err := NewHealthSweepTask(HealthSweepPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(fmt.Sprintf("@every %s", interval), task, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register health sweep: %w", err)
	}

	log.Info("health sweep registered", "interval", interval.String(), "queue", queue)
	return &Periodic{scheduler: scheduler, log: log}, nil
}

// Run blocks until the scheduler stops.
func (p *Periodic) Run() error {
	return p.scheduler.Run()
}

// Shutdown stops the scheduler.
func (p *Periodic) Shutdown() {
	p.scheduler.Shutdown()
}

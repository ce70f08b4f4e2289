package scheduler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "leadgen_backend/internal/http"
	"leadgen_backend/platform/httpkit"
	"leadgen_backend/platform/logger"
)

// Module exposes the ad-hoc health sweep trigger. It is only mounted when
// Redis is configured, since the sweep runs through the asynq queue.
type Module struct {
	client SweepScheduler
	log    *logger.Logger
}

// NewModule creates the scheduler trigger module.
func NewModule(client SweepScheduler, log *logger.Logger) *Module {
	return &Module{client: client, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "scheduler"
}

// RegisterRoutes mounts the sweep trigger route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/admin/health-sweep", m.trigger)
}

func (m *Module) trigger(c *gin.Context) {
	if err := m.client.EnqueueHealthSweep(c.Request.Context()); err != nil {
		m.log.Error("failed to enqueue health sweep", "error", err)
		httpkit.Error(c, http.StatusServiceUnavailable, "failed to enqueue health sweep", nil)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "enqueued"})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

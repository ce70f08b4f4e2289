package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskLeadsHealthSweep = "leads.health_sweep"

type HealthSweepPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewHealthSweepTask(payload HealthSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadsHealthSweep, data), nil
}

func ParseHealthSweepPayload(task *asynq.Task) (HealthSweepPayload, error) {
	var payload HealthSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return HealthSweepPayload{}, err
	}
	return payload, nil
}

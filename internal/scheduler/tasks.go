package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TaskSummaryRefresh recomputes the default-window summary of one tenant.
const TaskSummaryRefresh = "leads:summary_refresh"

// TaskSummaryRefreshAll fans a refresh out to every tenant.
const TaskSummaryRefreshAll = "leads:summary_refresh_all"

type SummaryRefreshPayload struct {
	TenantID string `json:"tenantId"`
}

func NewSummaryRefreshTask(tenantID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(SummaryRefreshPayload{TenantID: tenantID.String()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSummaryRefresh, data), nil
}

// ParseSummaryRefreshPayload decodes the payload and validates the tenant id.
func ParseSummaryRefreshPayload(task *asynq.Task) (uuid.UUID, error) {
	var payload SummaryRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return uuid.Nil, err
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id %q: %w", payload.TenantID, err)
	}
	return tenantID, nil
}

func NewSummaryRefreshAllTask() *asynq.Task {
	return asynq.NewTask(TaskSummaryRefreshAll, nil)
}

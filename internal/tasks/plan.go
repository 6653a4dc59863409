package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"contentos/internal/models"
	"contentos/internal/modules"
)

const (
	planSlotHour     = 10
	planSlotPlatform = "linkedin"
)

// HandlePlanTask seeds one empty schedule slot per day at 10:00 local,
// starting tomorrow. All slots land in a single batch insert.
func (h *TaskHandler) HandlePlanTask(ctx context.Context, t *asynq.Task) error {
	var p PlanPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return terminal(fmt.Errorf("invalid plan payload: %w", err))
	}
	if err := p.Validate(); err != nil {
		return terminal(err)
	}

	if err := modules.RequireEntitlement(ctx, h.db, p.WorkspaceID, modules.KeyPlan); err != nil {
		return terminal(err)
	}

	now := time.Now()
	slots := make([]models.ScheduleSlot, 0, p.Days)
	for i := 1; i <= p.Days; i++ {
		day := now.AddDate(0, 0, i)
		at := time.Date(day.Year(), day.Month(), day.Day(), planSlotHour, 0, 0, 0, day.Location())
		slots = append(slots, models.ScheduleSlot{
			WorkspaceID: p.WorkspaceID,
			Platform:    planSlotPlatform,
			Time:        at,
		})
	}

	if err := h.db.WithContext(ctx).Create(&slots).Error; err != nil {
		return h.logger.Error("failed to create schedule slots", err)
	}

	h.logger.Success("planned %d slots for workspace %s", p.Days, p.WorkspaceID)
	if w := t.ResultWriter(); w != nil {
		result, _ := json.Marshal(map[string]int{"planned": p.Days})
		_, _ = w.Write(result)
	}
	return nil
}

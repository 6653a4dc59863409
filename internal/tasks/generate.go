package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"contentos/internal/ai"
	"contentos/internal/metrics"
	"contentos/internal/models"
	"contentos/internal/modules"
)

// HandleGenerateTask turns a free-form prompt into one draft post. The
// model is asked for three variants; the first one becomes the draft.
func (h *TaskHandler) HandleGenerateTask(ctx context.Context, t *asynq.Task) error {
	var p GeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return terminal(fmt.Errorf("invalid generate payload: %w", err))
	}
	if err := p.Validate(); err != nil {
		return terminal(err)
	}

	if err := modules.RequireEntitlement(ctx, h.db, p.WorkspaceID, modules.KeyTextViral); err != nil {
		return terminal(err)
	}

	client, mock, err := h.resolveTextClient(ctx, p.UserID, modules.KeyTextViral)
	if err != nil {
		return err
	}

	var variants []string
	if mock {
		variants = ai.MockViralText(p.Prompt)
	} else {
		variants, err = ai.GenerateViralText(ctx, client, p.Prompt)
		if err != nil {
			return h.logger.Error("text generation failed", err)
		}
	}
	if len(variants) == 0 {
		return terminal(fmt.Errorf("model returned no content"))
	}

	post := models.Post{
		WorkspaceID: p.WorkspaceID,
		Platform:    p.Platform,
		Content:     variants[0],
		Status:      models.PostStatusDraft,
		Concept:     p.Prompt,
	}
	if err := h.db.WithContext(ctx).Create(&post).Error; err != nil {
		return h.logger.Error("failed to persist generated post", err)
	}

	metrics.PostsCreated.WithLabelValues(modules.KeyTextViral).Inc()
	h.logger.Success("generated post %s for workspace %s", post.ID, p.WorkspaceID)
	return nil
}

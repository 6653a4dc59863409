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

// postPlatformForShorts maps a shorts format onto the post's target
// platform column.
func postPlatformForShorts(platform string) string {
	switch platform {
	case "youtube_shorts":
		return "youtube"
	case "reels":
		return "instagram"
	default:
		return "tiktok"
	}
}

// HandleShortsTask generates a short-form video script and persists it as
// one draft post carrying the assembled full script.
func (h *TaskHandler) HandleShortsTask(ctx context.Context, t *asynq.Task) error {
	var p ShortsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return terminal(fmt.Errorf("invalid shorts payload: %w", err))
	}
	if err := p.Validate(); err != nil {
		return terminal(err)
	}

	if err := modules.RequireEntitlement(ctx, h.db, p.WorkspaceID, modules.KeyShortsGenerator); err != nil {
		return terminal(err)
	}

	client, mock, err := h.resolveTextClient(ctx, p.UserID, modules.KeyShortsGenerator)
	if err != nil {
		return err
	}

	opts := ai.ShortsOptions{
		Topic:    p.Topic,
		Platform: p.Platform,
		Niche:    p.Niche,
		Tone:     p.Tone,
	}

	var script ai.ShortsScript
	if mock {
		script = ai.MockShortsScript(opts)
	} else {
		script, err = ai.GenerateShortsScript(ctx, client, opts)
		if err != nil {
			return h.logger.Error("shorts generation failed", err)
		}
	}

	post := models.Post{
		WorkspaceID: p.WorkspaceID,
		Platform:    postPlatformForShorts(p.Platform),
		Content:     script.FullScript,
		Status:      models.PostStatusDraft,
		Concept:     fmt.Sprintf("Shorts Script: %s", p.Topic),
	}
	if err := h.db.WithContext(ctx).Create(&post).Error; err != nil {
		return h.logger.Error("failed to persist shorts script", err)
	}

	metrics.PostsCreated.WithLabelValues(modules.KeyShortsGenerator).Inc()
	h.logger.Success("shorts script %s created for workspace %s", post.ID, p.WorkspaceID)
	return nil
}

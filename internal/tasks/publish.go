package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"contentos/internal/connectors"
	"contentos/internal/models"
	"contentos/internal/utils/crypto"
)

// HandlePublishTask pushes one post out through its platform connector.
// Success moves the post to PUBLISHED; any failure records FAILED with a
// reason and returns the error so asynq retries it.
func (h *TaskHandler) HandlePublishTask(ctx context.Context, t *asynq.Task) error {
	var p PublishPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return terminal(fmt.Errorf("invalid publish payload: %w", err))
	}
	if err := p.Validate(); err != nil {
		return terminal(err)
	}

	var post models.Post
	if err := h.db.WithContext(ctx).First(&post, "id = ?", p.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return terminal(fmt.Errorf("post %s not found", p.PostID))
		}
		return h.logger.Error("failed to load post", err)
	}

	// The scheduled ProcessAt task and the due sweep can both enqueue the
	// same post; the second delivery must not reach the platform again.
	if post.Status == models.PostStatusPublished {
		h.logger.Info("post %s already published, skipping", post.ID)
		return nil
	}

	connector, err := h.connectorFor(post.Platform)
	if err != nil {
		return terminal(err)
	}

	creds, err := h.loadCredentials(ctx, post.WorkspaceID, post.Platform)
	if err != nil {
		return h.logger.Error("failed to load integration credentials", err)
	}

	result, err := connector.PublishText(ctx, connectors.PublishInput{
		PostID:  post.ID,
		Content: post.Content,
	}, creds)
	if err != nil || !result.Success {
		if err == nil {
			err = fmt.Errorf("connector rejected publish: %s", result.Error)
		}
		now := time.Now()
		updates := map[string]interface{}{
			"status":       models.PostStatusFailed,
			"failed_at":    &now,
			"error_reason": err.Error(),
		}
		if uerr := h.db.WithContext(ctx).Model(&post).Updates(updates).Error; uerr != nil {
			h.logger.Warn("failed to record publish failure for post %s: %v", post.ID, uerr)
		}
		return h.logger.Error("publish failed", err)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":           models.PostStatusPublished,
		"published_at":     &now,
		"platform_post_id": result.PlatformID,
	}
	if err := h.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		return h.logger.Error("failed to record publish success", err)
	}

	h.logger.Success("published post %s to %s (%s)", post.ID, post.Platform, result.PlatformID)
	return nil
}

// loadCredentials fetches and decrypts the workspace integration for a
// platform. Absent or non-ACTIVE integrations yield empty credentials;
// the mock connector works without them.
func (h *TaskHandler) loadCredentials(ctx context.Context, workspaceID, platform string) (connectors.Credentials, error) {
	var integration models.Integration
	err := h.db.WithContext(ctx).
		Where("workspace_id = ? AND platform = ? AND status = ?", workspaceID, platform, models.IntegrationStatusActive).
		First(&integration).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return connectors.Credentials{}, nil
	}
	if err != nil {
		return connectors.Credentials{}, err
	}

	plaintext, err := crypto.Decrypt(integration.Credentials)
	if err != nil {
		return connectors.Credentials{}, fmt.Errorf("failed to decrypt credentials: %w", err)
	}
	var data map[string]string
	if err := json.Unmarshal([]byte(plaintext), &data); err != nil {
		return connectors.Credentials{}, fmt.Errorf("malformed credentials blob: %w", err)
	}
	return connectors.Credentials{Data: data}, nil
}

// HandlePublishSweepTask finds SCHEDULED posts whose time has come and
// enqueues a publish for each. Registered by the worker scheduler.
func (h *TaskHandler) HandlePublishSweepTask(ctx context.Context, t *asynq.Task) error {
	if h.taskClient == nil {
		return terminal(fmt.Errorf("publish sweep requires a task client"))
	}

	var due []models.Post
	err := h.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", models.PostStatusScheduled, time.Now()).
		Find(&due).Error
	if err != nil {
		return h.logger.Error("failed to query due posts", err)
	}

	for _, post := range due {
		if _, err := h.taskClient.EnqueuePublish(ctx, PublishPayload{PostID: post.ID}); err != nil {
			h.logger.Warn("failed to enqueue publish for post %s: %v", post.ID, err)
		}
	}

	if len(due) > 0 {
		h.logger.Info("publish sweep enqueued %d due posts", len(due))
	}
	return nil
}

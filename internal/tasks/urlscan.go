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

// HandleURLScanTask scrapes an article and turns it into exactly
// postCount draft posts, inserted in one transaction.
func (h *TaskHandler) HandleURLScanTask(ctx context.Context, t *asynq.Task) error {
	var p URLScanPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return terminal(fmt.Errorf("invalid url scan payload: %w", err))
	}
	if err := p.Validate(); err != nil {
		return terminal(err)
	}

	if err := modules.RequireEntitlement(ctx, h.db, p.WorkspaceID, modules.KeyURLScanner); err != nil {
		return terminal(err)
	}

	client, mock, err := h.resolveTextClient(ctx, p.UserID, modules.KeyURLScanner)
	if err != nil {
		return err
	}

	content, err := h.scraper.Scrape(ctx, p.URL)
	if err != nil {
		return h.logger.Error("failed to scrape url", err)
	}

	var posts []string
	if mock {
		posts = ai.MockPostsFromURL(content, p.Platform, p.PostCount)
	} else {
		posts, err = ai.GeneratePostsFromURL(ctx, client, content, p.Platform, p.PostCount)
		if err != nil {
			return h.logger.Error("post generation failed", err)
		}
	}
	posts = ai.NormalizePostCount(posts, p.PostCount, content)

	concept := fmt.Sprintf("URL Scan: %s | %s", content.Title, p.URL)
	drafts := make([]models.Post, 0, len(posts))
	for _, text := range posts {
		drafts = append(drafts, models.Post{
			WorkspaceID: p.WorkspaceID,
			Platform:    p.Platform,
			Content:     text,
			Status:      models.PostStatusDraft,
			Concept:     concept,
		})
	}

	// One transaction: either all postCount drafts land or none do.
	if err := h.db.WithContext(ctx).Create(&drafts).Error; err != nil {
		return h.logger.Error("failed to persist scanned posts", err)
	}

	metrics.PostsCreated.WithLabelValues(modules.KeyURLScanner).Add(float64(len(drafts)))
	h.logger.Success("url scan created %d posts for workspace %s", len(drafts), p.WorkspaceID)
	if w := t.ResultWriter(); w != nil {
		result, _ := json.Marshal(map[string]int{"created": len(drafts)})
		_, _ = w.Write(result)
	}
	return nil
}

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"contentos/internal/ai"
	"contentos/internal/models"
	"contentos/internal/modules"
)

// HandleAuthorityImageTask renders the branded SVG quote image and stores
// it as a workspace asset. Rendering is pure, so the only retryable part
// is asset storage.
func (h *TaskHandler) HandleAuthorityImageTask(ctx context.Context, t *asynq.Task) error {
	var p AuthorityImagePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return terminal(fmt.Errorf("invalid authority image payload: %w", err))
	}
	if err := p.Validate(); err != nil {
		return terminal(err)
	}
	if p.Style != "" && !ai.IsValidImageStyle(ai.ImageStyle(p.Style)) {
		return terminal(fmt.Errorf("unknown image style %q", p.Style))
	}

	if err := modules.RequireEntitlement(ctx, h.db, p.WorkspaceID, modules.KeyAuthorityImage); err != nil {
		return terminal(err)
	}

	result := ai.GenerateAuthorityImage(ai.AuthorityImageOptions{
		Text:            p.Text,
		Author:          p.Author,
		BackgroundColor: p.BackgroundColor,
		TextColor:       p.TextColor,
		AccentColor:     p.AccentColor,
		Style:           ai.ImageStyle(p.Style),
	})

	filename := fmt.Sprintf("authority-image-%d.svg", time.Now().UnixNano())
	publicURL, err := h.storage.StoreAsset(ctx, []byte(result.SVG), filename, "image/svg+xml")
	if err != nil {
		return h.logger.Error("failed to store authority image", err)
	}

	asset := models.Asset{
		WorkspaceID: p.WorkspaceID,
		Type:        models.AssetTypeImage,
		StoragePath: filename,
		PublicUrl:   publicURL,
		Prompt:      p.Text,
		Provider:    "template",
	}
	if err := h.db.WithContext(ctx).Create(&asset).Error; err != nil {
		return h.logger.Error("failed to persist asset", err)
	}

	h.logger.Success("authority image %s created for workspace %s", asset.ID, p.WorkspaceID)
	if w := t.ResultWriter(); w != nil {
		out, _ := json.Marshal(map[string]string{"assetId": asset.ID, "publicUrl": publicURL})
		_, _ = w.Write(out)
	}
	return nil
}

package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"contentos/internal/ai"
	"contentos/internal/config"
	"contentos/internal/connectors"
	"contentos/internal/modules"
	"contentos/internal/services"
	"contentos/internal/utils/logger"
)

// textClientFactory builds a model client from resolved credentials.
// Split out so processor tests can stub the model tier.
type textClientFactory func(ctx context.Context, cfg modules.AIConfig) (ai.TextClient, error)

// connectorFactory picks a social connector for a platform.
type connectorFactory func(platform string) (connectors.SocialConnector, error)

// TaskHandler owns every queue processor. All external seams (model
// client, scraper, storage, connectors) are injected.
type TaskHandler struct {
	db           *gorm.DB
	cfg          *config.Config
	logger       *logger.Logger
	scraper      *ai.Scraper
	storage      services.AssetStorage
	taskClient   *TaskClient
	newClient    textClientFactory
	connectorFor connectorFactory
}

// NewTaskHandler creates a TaskHandler with production seams. taskClient is
// only needed by the publish-due sweep and may be nil in API-side wiring.
func NewTaskHandler(db *gorm.DB, cfg *config.Config, storage services.AssetStorage, taskClient *TaskClient) *TaskHandler {
	return &TaskHandler{
		db:           db,
		cfg:          cfg,
		logger:       logger.New("task_handler"),
		scraper:      ai.NewScraper(TimeoutLong),
		storage:      storage,
		taskClient:   taskClient,
		newClient:    ai.NewTextClient,
		connectorFor: connectors.ForPlatform,
	}
}

// terminal marks an error as non-retryable for asynq.
func terminal(err error) error {
	return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
}

// resolveTextClient applies the BYOK policy for one user+module: a stored
// key yields a real model client; a missing key either switches the
// processor into deterministic mock mode (when allowed by config) or fails
// the job terminally.
func (h *TaskHandler) resolveTextClient(ctx context.Context, userID, moduleKey string) (ai.TextClient, bool, error) {
	aiCfg, err := modules.ResolveAIConfig(ctx, h.db, userID, moduleKey)
	if err != nil {
		return nil, false, err
	}
	if !aiCfg.HasKey() {
		if h.cfg.AI.AllowMockFallback {
			h.logger.Warn("no API key for user=%s module=%s, using mock generator", userID, moduleKey)
			return nil, true, nil
		}
		return nil, false, terminal(modules.ErrMissingCredential)
	}
	client, err := h.newClient(ctx, aiCfg)
	if err != nil {
		// A stored key for a provider we cannot drive is a configuration
		// problem, not a transient one.
		return nil, false, terminal(err)
	}
	return client, false, nil
}

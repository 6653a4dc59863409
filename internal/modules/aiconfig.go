package modules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"contentos/internal/models"
	"contentos/internal/utils/crypto"

	"gorm.io/gorm"
)

// ErrMissingCredential is returned by callers that need a real key and the
// resolver came back empty (and mock fallback is disabled).
var ErrMissingCredential = errors.New("no API key configured for provider")

// AIConfig is the resolved provider/model/key triple for one user+module.
// APIKey is empty when the user has stored no usable key.
type AIConfig struct {
	Provider string
	Model    string
	APIKey   string
}

// HasKey reports whether a real key was resolved.
func (c AIConfig) HasKey() bool {
	return c.APIKey != ""
}

var defaultModels = map[string]string{
	"gemini":    "gemini-1.5-flash",
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-sonnet-20241022",
}

// DefaultModel returns the per-provider default model.
func DefaultModel(provider string) string {
	if model, ok := defaultModels[provider]; ok {
		return model
	}
	return defaultModels["gemini"]
}

// ResolveAIConfig determines which provider, model and BYOK key a user/module
// combination should use:
//
//  1. provider and model come from the user's module settings blob
//     (aiProvider, aiModel), defaulting to gemini / the provider default;
//  2. the module-scoped key "<provider>_<moduleKey>" wins if stored;
//  3. otherwise the bare "<provider>" key is used;
//  4. otherwise APIKey stays empty and the caller decides the policy.
//
// Every call re-reads storage; this runs inside already-asynchronous job
// processors, off any request latency path.
func ResolveAIConfig(ctx context.Context, db *gorm.DB, userID, moduleKey string) (AIConfig, error) {
	cfg := AIConfig{Provider: "gemini"}

	var settings models.UserModuleSettings
	err := db.WithContext(ctx).
		Where("user_id = ? AND module_key = ?", userID, moduleKey).
		First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return cfg, fmt.Errorf("failed to load module settings: %w", err)
	}
	if err == nil && len(settings.Settings) > 0 {
		var blob map[string]interface{}
		if err := json.Unmarshal(settings.Settings, &blob); err == nil {
			if provider, ok := blob["aiProvider"].(string); ok && provider != "" {
				cfg.Provider = provider
			}
			if model, ok := blob["aiModel"].(string); ok && model != "" {
				cfg.Model = model
			}
		}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	// Module-scoped key first, bare provider key as fallback.
	key, err := lookupAPIKey(ctx, db, userID, fmt.Sprintf("%s_%s", cfg.Provider, moduleKey))
	if err != nil {
		return cfg, err
	}
	if key == "" {
		key, err = lookupAPIKey(ctx, db, userID, cfg.Provider)
		if err != nil {
			return cfg, err
		}
	}

	cfg.APIKey = key
	return cfg, nil
}

func lookupAPIKey(ctx context.Context, db *gorm.DB, userID, provider string) (string, error) {
	var record models.UserApiKey
	err := db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load API key: %w", err)
	}

	plaintext, err := crypto.Decrypt(record.APIKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt API key for %s: %w", provider, err)
	}
	return plaintext, nil
}

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"contentos/internal/ai"
	"contentos/internal/config"
	"contentos/internal/connectors"
	"contentos/internal/models"
	"contentos/internal/modules"
	"contentos/internal/utils/crypto"
	"contentos/internal/utils/logger"
)

func openTaskDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceUser{},
		&models.Module{},
		&models.WorkspaceModule{},
		&models.Integration{},
		&models.UserApiKey{},
		&models.UserModuleSettings{},
		&models.Post{},
		&models.Asset{},
		&models.ScheduleSlot{},
	))
	return db
}

func seedWorkspace(t *testing.T, db *gorm.DB) models.Workspace {
	t.Helper()
	ws := models.Workspace{Name: "Acme", Slug: "acme-" + uuid.New().String()[:8]}
	require.NoError(t, db.Create(&ws).Error)
	return ws
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Email: uuid.New().String()[:8] + "@example.com"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedAPIKey(t *testing.T, db *gorm.DB, userID, provider string) {
	t.Helper()
	key, err := crypto.GenerateSecretKey()
	require.NoError(t, err)
	require.NoError(t, crypto.InitializeKeys(key))
	encrypted, err := crypto.Encrypt("sk-test-key")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.UserApiKey{
		UserID:   userID,
		Provider: provider,
		APIKey:   encrypted,
	}).Error)
}

func grant(t *testing.T, db *gorm.DB, workspaceID, moduleKey string) {
	t.Helper()
	_, err := modules.GrantEntitlement(context.Background(), db, workspaceID, moduleKey)
	require.NoError(t, err)
}

// stubText is a canned-response model client for processor tests.
type stubText struct {
	response string
	err      error
}

func (s stubText) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.response, s.err
}

// stubStorage captures what the image processor hands to asset storage.
type stubStorage struct {
	filename    string
	contentType string
	data        []byte
}

func (s *stubStorage) StoreAsset(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	s.data = data
	s.filename = filename
	s.contentType = contentType
	return "mem://" + filename, nil
}

// stubConnector records the publish input and returns a fixed outcome.
type stubConnector struct {
	result connectors.Result
	err    error
	input  connectors.PublishInput
	calls  int
}

func (s *stubConnector) ValidateConnection(ctx context.Context, creds connectors.Credentials) (bool, error) {
	return true, nil
}

func (s *stubConnector) PublishText(ctx context.Context, post connectors.PublishInput, creds connectors.Credentials) (connectors.Result, error) {
	s.input = post
	s.calls++
	return s.result, s.err
}

func (s *stubConnector) PublishImage(ctx context.Context, post connectors.PublishInput, imageURL string, creds connectors.Credentials) (connectors.Result, error) {
	return s.result, s.err
}

func (s *stubConnector) GetAccountInfo(ctx context.Context, creds connectors.Credentials) (connectors.AccountInfo, error) {
	return connectors.AccountInfo{}, nil
}

func newTestHandler(db *gorm.DB, mockFallback bool, client ai.TextClient) *TaskHandler {
	return &TaskHandler{
		db:      db,
		cfg:     &config.Config{AI: config.AIConfig{AllowMockFallback: mockFallback}},
		logger:  logger.New("task_test"),
		scraper: ai.NewScraper(5 * time.Second),
		storage: &stubStorage{},
		newClient: func(ctx context.Context, cfg modules.AIConfig) (ai.TextClient, error) {
			return client, nil
		},
		connectorFor: connectors.ForPlatform,
	}
}

func mkTask(t *testing.T, typename string, payload interface{}) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(typename, raw)
}

func TestHandlePlanTaskSeedsSlots(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	grant(t, db, ws.ID, modules.KeyPlan)
	h := newTestHandler(db, false, nil)

	err := h.HandlePlanTask(context.Background(), mkTask(t, TypePlan, PlanPayload{WorkspaceID: ws.ID, Days: 3}))

	require.NoError(t, err)
	var slots []models.ScheduleSlot
	require.NoError(t, db.Order("time asc").Find(&slots).Error)
	require.Len(t, slots, 3)
	tomorrow := time.Now().AddDate(0, 0, 1)
	for i, slot := range slots {
		assert.Equal(t, ws.ID, slot.WorkspaceID)
		assert.Equal(t, "linkedin", slot.Platform)
		assert.Equal(t, 10, slot.Time.Hour())
		assert.Equal(t, tomorrow.AddDate(0, 0, i).Day(), slot.Time.Day())
		assert.False(t, slot.IsFilled)
	}
}

func TestHandlePlanTaskWithoutEntitlementIsTerminal(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	h := newTestHandler(db, false, nil)

	err := h.HandlePlanTask(context.Background(), mkTask(t, TypePlan, PlanPayload{WorkspaceID: ws.ID}))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	var count int64
	db.Model(&models.ScheduleSlot{}).Count(&count)
	assert.Zero(t, count)
}

func TestHandleGenerateTaskPersistsFirstVariant(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyTextViral)
	seedAPIKey(t, db, user.ID, "gemini")
	h := newTestHandler(db, false, stubText{response: "First take\n---\nSecond take\n---\nThird take"})

	err := h.HandleGenerateTask(context.Background(), mkTask(t, TypeGenerate, GeneratePayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Prompt:      "why consistency beats virality",
	}))

	require.NoError(t, err)
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 1)
	assert.Equal(t, "First take", posts[0].Content)
	assert.Equal(t, models.PostStatusDraft, posts[0].Status)
	assert.Equal(t, "linkedin", posts[0].Platform)
	assert.Equal(t, "why consistency beats virality", posts[0].Concept)
}

func TestHandleGenerateTaskMissingKeyIsTerminal(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyTextViral)
	h := newTestHandler(db, false, nil)

	err := h.HandleGenerateTask(context.Background(), mkTask(t, TypeGenerate, GeneratePayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Prompt:      "anything",
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, err.Error(), "no API key")
	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestHandleGenerateTaskMockFallback(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyTextViral)
	h := newTestHandler(db, true, nil)

	err := h.HandleGenerateTask(context.Background(), mkTask(t, TypeGenerate, GeneratePayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Prompt:      "launch week",
	}))

	require.NoError(t, err)
	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, ai.MockViralText("launch week")[0], post.Content)
}

func TestHandleGenerateTaskModelErrorIsRetryable(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyTextViral)
	seedAPIKey(t, db, user.ID, "gemini")
	h := newTestHandler(db, false, stubText{err: errors.New("model overloaded")})

	err := h.HandleGenerateTask(context.Background(), mkTask(t, TypeGenerate, GeneratePayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Prompt:      "anything",
	}))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleURLScanTaskCreatesExactCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Go Routines</title></head><body><article>Concurrency patterns worth knowing about.</article></body></html>`)
	}))
	defer server.Close()

	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyURLScanner)
	seedAPIKey(t, db, user.ID, "gemini")
	h := newTestHandler(db, false, stubText{response: "Post one\n---\nPost two"})

	err := h.HandleURLScanTask(context.Background(), mkTask(t, TypeURLScan, URLScanPayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		URL:         server.URL,
		PostCount:   5,
	}))

	require.NoError(t, err)
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 5)
	contents := make([]string, 0, len(posts))
	padded := 0
	for _, post := range posts {
		contents = append(contents, post.Content)
		if strings.Contains(post.Content, `📌 Check out this article: "Go Routines"`) {
			assert.Contains(t, post.Content, server.URL)
			padded++
		}
		assert.Equal(t, models.PostStatusDraft, post.Status)
		assert.Equal(t, fmt.Sprintf("URL Scan: Go Routines | %s", server.URL), post.Concept)
	}
	assert.Contains(t, contents, "Post one")
	assert.Contains(t, contents, "Post two")
	// Shortfall is padded with the article pointer.
	assert.Equal(t, 3, padded)
}

func TestHandleURLScanTaskScrapeFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyURLScanner)
	seedAPIKey(t, db, user.ID, "gemini")
	h := newTestHandler(db, false, stubText{response: "irrelevant"})

	err := h.HandleURLScanTask(context.Background(), mkTask(t, TypeURLScan, URLScanPayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		URL:         server.URL,
	}))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	var count int64
	db.Model(&models.Post{}).Count(&count)
	assert.Zero(t, count)
}

func TestHandleShortsTaskMapsPlatform(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	user := seedUser(t, db)
	grant(t, db, ws.ID, modules.KeyShortsGenerator)
	h := newTestHandler(db, true, nil)

	err := h.HandleShortsTask(context.Background(), mkTask(t, TypeShorts, ShortsPayload{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Topic:       "cold outreach",
		Platform:    "youtube_shorts",
	}))

	require.NoError(t, err)
	var post models.Post
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "youtube", post.Platform)
	assert.Equal(t, "Shorts Script: cold outreach", post.Concept)
	assert.NotEmpty(t, post.Content)
	assert.Equal(t, models.PostStatusDraft, post.Status)
}

func TestPostPlatformForShorts(t *testing.T) {
	assert.Equal(t, "youtube", postPlatformForShorts("youtube_shorts"))
	assert.Equal(t, "instagram", postPlatformForShorts("reels"))
	assert.Equal(t, "tiktok", postPlatformForShorts("tiktok"))
	assert.Equal(t, "tiktok", postPlatformForShorts(""))
}

func TestHandleAuthorityImageTaskStoresAsset(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	grant(t, db, ws.ID, modules.KeyAuthorityImage)
	storage := &stubStorage{}
	h := newTestHandler(db, false, nil)
	h.storage = storage

	err := h.HandleAuthorityImageTask(context.Background(), mkTask(t, TypeAuthorityImage, AuthorityImagePayload{
		WorkspaceID: ws.ID,
		Text:        "Done is better than perfect.",
		Author:      "Someone Wise",
	}))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(storage.filename, "authority-image-"))
	assert.True(t, strings.HasSuffix(storage.filename, ".svg"))
	assert.Equal(t, "image/svg+xml", storage.contentType)
	assert.True(t, strings.HasPrefix(string(storage.data), "<svg"))

	var asset models.Asset
	require.NoError(t, db.First(&asset).Error)
	assert.Equal(t, ws.ID, asset.WorkspaceID)
	assert.Equal(t, models.AssetTypeImage, asset.Type)
	assert.Equal(t, "template", asset.Provider)
	assert.Equal(t, "mem://"+storage.filename, asset.PublicUrl)
	assert.Equal(t, "Done is better than perfect.", asset.Prompt)
}

func TestHandleAuthorityImageTaskUnknownStyleIsTerminal(t *testing.T) {
	db := openTaskDB(t)
	h := newTestHandler(db, false, nil)

	err := h.HandleAuthorityImageTask(context.Background(), mkTask(t, TypeAuthorityImage, AuthorityImagePayload{
		WorkspaceID: uuid.New().String(),
		Text:        "Quote",
		Style:       "vaporwave",
	}))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePublishTaskSuccess(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	post := models.Post{
		WorkspaceID: ws.ID,
		Platform:    "linkedin",
		Content:     "hello world",
		Status:      models.PostStatusScheduled,
	}
	require.NoError(t, db.Create(&post).Error)

	connector := &stubConnector{result: connectors.Result{Success: true, PlatformID: "ext-123"}}
	h := newTestHandler(db, false, nil)
	h.connectorFor = func(platform string) (connectors.SocialConnector, error) { return connector, nil }

	err := h.HandlePublishTask(context.Background(), mkTask(t, TypePublish, PublishPayload{PostID: post.ID}))

	require.NoError(t, err)
	assert.Equal(t, post.ID, connector.input.PostID)
	assert.Equal(t, "hello world", connector.input.Content)

	var got models.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, models.PostStatusPublished, got.Status)
	assert.Equal(t, "ext-123", got.PlatformPostID)
	require.NotNil(t, got.PublishedAt)
	assert.WithinDuration(t, time.Now(), *got.PublishedAt, time.Minute)
}

func TestHandlePublishTaskSecondDeliveryIsNoOp(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	post := models.Post{
		WorkspaceID: ws.ID,
		Platform:    "linkedin",
		Content:     "hello world",
		Status:      models.PostStatusScheduled,
	}
	require.NoError(t, db.Create(&post).Error)

	connector := &stubConnector{result: connectors.Result{Success: true, PlatformID: "ext-123"}}
	h := newTestHandler(db, false, nil)
	h.connectorFor = func(platform string) (connectors.SocialConnector, error) { return connector, nil }

	task := mkTask(t, TypePublish, PublishPayload{PostID: post.ID})
	require.NoError(t, h.HandlePublishTask(context.Background(), task))
	require.NoError(t, h.HandlePublishTask(context.Background(), task))

	assert.Equal(t, 1, connector.calls)
	var got models.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, models.PostStatusPublished, got.Status)
	assert.Equal(t, "ext-123", got.PlatformPostID)
}

func TestHandlePublishTaskFailureRecordsReasonAndRetries(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	post := models.Post{
		WorkspaceID: ws.ID,
		Platform:    "linkedin",
		Content:     "hello world",
		Status:      models.PostStatusScheduled,
	}
	require.NoError(t, db.Create(&post).Error)

	connector := &stubConnector{err: errors.New("rate limited upstream")}
	h := newTestHandler(db, false, nil)
	h.connectorFor = func(platform string) (connectors.SocialConnector, error) { return connector, nil }

	err := h.HandlePublishTask(context.Background(), mkTask(t, TypePublish, PublishPayload{PostID: post.ID}))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)

	var got models.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, models.PostStatusFailed, got.Status)
	assert.Contains(t, got.ErrorReason, "rate limited upstream")
	require.NotNil(t, got.FailedAt)
	assert.Empty(t, got.PlatformPostID)
}

func TestHandlePublishTaskConnectorRejectionRecordsFailure(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	post := models.Post{
		WorkspaceID: ws.ID,
		Platform:    "linkedin",
		Content:     "hello world",
		Status:      models.PostStatusScheduled,
	}
	require.NoError(t, db.Create(&post).Error)

	connector := &stubConnector{result: connectors.Result{Success: false, Error: "duplicate content"}}
	h := newTestHandler(db, false, nil)
	h.connectorFor = func(platform string) (connectors.SocialConnector, error) { return connector, nil }

	err := h.HandlePublishTask(context.Background(), mkTask(t, TypePublish, PublishPayload{PostID: post.ID}))

	require.Error(t, err)
	var got models.Post
	require.NoError(t, db.First(&got, "id = ?", post.ID).Error)
	assert.Equal(t, models.PostStatusFailed, got.Status)
	assert.Contains(t, got.ErrorReason, "duplicate content")
}

func TestHandlePublishTaskMissingPostIsTerminal(t *testing.T) {
	db := openTaskDB(t)
	h := newTestHandler(db, false, nil)

	err := h.HandlePublishTask(context.Background(), mkTask(t, TypePublish, PublishPayload{PostID: uuid.New().String()}))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePublishTaskUnknownPlatformIsTerminal(t *testing.T) {
	db := openTaskDB(t)
	ws := seedWorkspace(t, db)
	post := models.Post{
		WorkspaceID: ws.ID,
		Platform:    "myspace",
		Content:     "hello",
		Status:      models.PostStatusScheduled,
	}
	require.NoError(t, db.Create(&post).Error)
	h := newTestHandler(db, false, nil)

	err := h.HandlePublishTask(context.Background(), mkTask(t, TypePublish, PublishPayload{PostID: post.ID}))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlePublishSweepTaskWithoutClientIsTerminal(t *testing.T) {
	db := openTaskDB(t)
	h := newTestHandler(db, false, nil)

	err := h.HandlePublishSweepTask(context.Background(), asynq.NewTask(TypePublishSweep, nil))

	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

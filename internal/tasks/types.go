package tasks

import (
	"errors"
	"time"
)

// Task Types
const (
	TypePlan           = "module:plan"
	TypeGenerate       = "module:generate"
	TypeURLScan        = "module:url_scan"
	TypeShorts         = "module:shorts_generator"
	TypeAuthorityImage = "module:authority_image"
	TypePublish        = "post:publish"
	TypePublishSweep   = "publish:due"
)

// Task Queues (one queue per job type)
const (
	QueuePlan           = "plan"
	QueueGenerate       = "generate"
	QueueURLScan        = "url_scan"
	QueueShorts         = "shorts_generator"
	QueueAuthorityImage = "authority_image"
	QueuePublish        = "publish"
)

// Task Timeouts
const (
	TimeoutShort = 1 * time.Minute // local-only work and publishing
	TimeoutLong  = 5 * time.Minute // scrape + model calls
)

// Task Retry Settings
const (
	RetryExternal = 3 // tasks touching scrapers, models or social APIs
	RetryLocal    = 1 // tasks with no external I/O
)

var (
	ErrMissingWorkspace = errors.New("workspaceId is required")
	ErrMissingUser      = errors.New("userId is required")
	ErrMissingURL       = errors.New("url is required")
	ErrMissingPrompt    = errors.New("prompt is required")
	ErrMissingTopic     = errors.New("topic is required")
	ErrMissingText      = errors.New("text is required")
	ErrMissingPost      = errors.New("postId is required")
	ErrBadPostCount     = errors.New("postCount must be one of 3, 5, 10, 15")
)

// PlanPayload seeds a week (or more) of empty schedule slots.
type PlanPayload struct {
	WorkspaceID string `json:"workspaceId"`
	Days        int    `json:"days,omitempty"`
}

func (p *PlanPayload) Validate() error {
	if p.WorkspaceID == "" {
		return ErrMissingWorkspace
	}
	if p.Days == 0 {
		p.Days = 7
	}
	if p.Days < 1 || p.Days > 90 {
		return errors.New("days must be between 1 and 90")
	}
	return nil
}

// GeneratePayload drives free-form viral text generation.
type GeneratePayload struct {
	WorkspaceID string `json:"workspaceId"`
	UserID      string `json:"userId"`
	Prompt      string `json:"prompt"`
	Type        string `json:"type,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

func (p *GeneratePayload) Validate() error {
	if p.WorkspaceID == "" {
		return ErrMissingWorkspace
	}
	if p.UserID == "" {
		return ErrMissingUser
	}
	if p.Prompt == "" {
		return ErrMissingPrompt
	}
	if p.Platform == "" {
		p.Platform = "linkedin"
	}
	return nil
}

// URLScanPayload turns an article URL into a batch of draft posts.
type URLScanPayload struct {
	WorkspaceID string `json:"workspaceId"`
	UserID      string `json:"userId"`
	URL         string `json:"url"`
	Platform    string `json:"platform,omitempty"`
	PostCount   int    `json:"postCount,omitempty"`
}

func (p *URLScanPayload) Validate() error {
	if p.WorkspaceID == "" {
		return ErrMissingWorkspace
	}
	if p.UserID == "" {
		return ErrMissingUser
	}
	if p.URL == "" {
		return ErrMissingURL
	}
	if p.Platform == "" {
		p.Platform = "linkedin"
	}
	if p.PostCount == 0 {
		p.PostCount = 5
	}
	switch p.PostCount {
	case 3, 5, 10, 15:
	default:
		return ErrBadPostCount
	}
	return nil
}

// ShortsPayload drives short-form video script generation.
type ShortsPayload struct {
	WorkspaceID string `json:"workspaceId"`
	UserID      string `json:"userId"`
	Topic       string `json:"topic"`
	Platform    string `json:"platform,omitempty"`
	Niche       string `json:"niche,omitempty"`
	Tone        string `json:"tone,omitempty"`
}

func (p *ShortsPayload) Validate() error {
	if p.WorkspaceID == "" {
		return ErrMissingWorkspace
	}
	if p.UserID == "" {
		return ErrMissingUser
	}
	if p.Topic == "" {
		return ErrMissingTopic
	}
	if p.Platform == "" {
		p.Platform = "tiktok"
	}
	if p.Tone == "" {
		p.Tone = "educational"
	}
	return nil
}

// AuthorityImagePayload drives branded quote-image rendering.
type AuthorityImagePayload struct {
	WorkspaceID     string `json:"workspaceId"`
	Text            string `json:"text"`
	Author          string `json:"author,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
	AccentColor     string `json:"accentColor,omitempty"`
	Style           string `json:"style,omitempty"`
}

func (p *AuthorityImagePayload) Validate() error {
	if p.WorkspaceID == "" {
		return ErrMissingWorkspace
	}
	if p.Text == "" {
		return ErrMissingText
	}
	return nil
}

// PublishPayload pushes one post out through its platform connector.
type PublishPayload struct {
	PostID string `json:"postId"`
}

func (p *PublishPayload) Validate() error {
	if p.PostID == "" {
		return ErrMissingPost
	}
	return nil
}

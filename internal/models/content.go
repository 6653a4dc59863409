package models

import (
	"time"

	"contentos/internal/events"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Post is a generated content draft and its lifecycle after generation.
type Post struct {
	Base
	WorkspaceID string     `gorm:"type:uuid;not null;index" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace `json:"workspace,omitempty"`
	Platform    string     `gorm:"not null" json:"platform" validate:"required"`
	Content     string     `gorm:"not null" json:"content" validate:"required"`
	Status      PostStatus `gorm:"not null;default:'DRAFT';index" json:"status" validate:"required,oneof=DRAFT SCHEDULED PUBLISHED FAILED"`
	// Concept records provenance: the prompt, or "URL Scan: <title> | <url>".
	Concept      string     `json:"concept"`
	Saved        bool       `gorm:"default:false" json:"saved"`
	ScheduledFor *time.Time `gorm:"index" json:"scheduledFor,omitempty"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	FailedAt     *time.Time `json:"failedAt,omitempty"`
	ErrorReason  string     `json:"errorReason,omitempty"`
	// PlatformPostID is the remote id the connector reports on success.
	PlatformPostID string `json:"platformPostId,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (p *Post) AfterCreate(tx *gorm.DB) error {
	events.Emit("post.created", p)
	return nil
}

// Asset is a generated non-text artifact, currently only images.
type Asset struct {
	Base
	WorkspaceID string     `gorm:"type:uuid;not null;index" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace `json:"workspace,omitempty"`
	Type        AssetType  `gorm:"not null;default:'IMAGE'" json:"type" validate:"required,oneof=IMAGE VIDEO"`
	StoragePath string     `gorm:"not null" json:"storagePath" validate:"required"`
	// PublicUrl is either a data URL (local storage) or the uploaded S3 URL.
	PublicUrl string `gorm:"not null" json:"publicUrl"`
	Prompt    string `json:"prompt"`
	Provider  string `json:"provider"`
}

func (a *Asset) AfterCreate(tx *gorm.DB) error {
	events.Emit("asset.created", a)
	return nil
}

// BrandVoice is a reusable tone-of-voice profile scoped to a workspace. At
// most one voice per workspace carries IsDefault.
type BrandVoice struct {
	Base
	WorkspaceID string         `gorm:"type:uuid;not null;index" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace     `json:"workspace,omitempty"`
	Name        string         `gorm:"not null" json:"name" validate:"required"`
	Tone        string         `gorm:"not null" json:"tone" validate:"required"`
	Style       string         `json:"style,omitempty"`
	Audience    string         `json:"audience,omitempty"`
	Keywords    datatypes.JSON `gorm:"type:jsonb" json:"keywords,omitempty"`
	AvoidWords  datatypes.JSON `gorm:"type:jsonb" json:"avoidWords,omitempty"`
	Examples    string         `json:"examples,omitempty"`
	IsDefault   bool           `gorm:"default:false" json:"isDefault"`
}

func (b *BrandVoice) AfterCreate(tx *gorm.DB) error {
	events.Emit("brandvoice.created", b)
	return nil
}

// ScheduleSlot is a workspace calendar slot filled by the planner.
type ScheduleSlot struct {
	Base
	WorkspaceID string     `gorm:"type:uuid;not null;index" json:"workspaceId" validate:"required,uuid"`
	Workspace   *Workspace `json:"workspace,omitempty"`
	Platform    string     `gorm:"not null" json:"platform" validate:"required"`
	Time        time.Time  `gorm:"not null;index" json:"time" validate:"required"`
	IsFilled    bool       `gorm:"default:false" json:"isFilled"`
	PostID      string     `gorm:"type:uuid;default:NULL" json:"postId,omitempty"`
	Post        *Post      `json:"post,omitempty"`
}

package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playgroundvalidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"contentos/internal/ai"
)

// ValidationErrors wraps the validator's ValidationErrors
type ValidationErrors []playgroundvalidator.FieldError

// CustomValidator wraps go-playground/validator
type CustomValidator struct {
	validator *playgroundvalidator.Validate
}

// NewValidator creates a new validator instance
func NewValidator() echo.Validator {
	v := playgroundvalidator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	err := v.RegisterValidation("platform", validatePlatform)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("shorts_platform", validateShortsPlatform)
	if err != nil {
		return nil
	}
	err = v.RegisterValidation("image_style", validateImageStyle)
	if err != nil {
		return nil
	}

	return &CustomValidator{validator: v}
}

// Custom validation functions
func validatePlatform(fl playgroundvalidator.FieldLevel) bool {
	platform := fl.Field().String()
	validPlatforms := map[string]bool{
		"linkedin":  true,
		"twitter":   true,
		"instagram": true,
		"tiktok":    true,
		"youtube":   true,
		"facebook":  true,
	}
	return validPlatforms[platform]
}

func validateShortsPlatform(fl playgroundvalidator.FieldLevel) bool {
	platform := fl.Field().String()
	return platform == "tiktok" || platform == "youtube_shorts" || platform == "reels"
}

func validateImageStyle(fl playgroundvalidator.FieldLevel) bool {
	return ai.IsValidImageStyle(ai.ImageStyle(fl.Field().String()))
}

// Validate implements echo.Validator interface
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		var validationErrors playgroundvalidator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return ValidationErrors(validationErrors)
		}
		return err
	}
	return nil
}

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var fields []string
	for _, err := range ve {
		fields = append(fields, err.Field())
	}
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(fields, ", "))
}

// Request validation structs for the module enqueue endpoints.

type URLScanRequest struct {
	URL       string `json:"url" validate:"required,url"`
	Platform  string `json:"platform" validate:"omitempty,platform"`
	PostCount int    `json:"postCount" validate:"omitempty,oneof=3 5 10 15"`
}

type GenerateRequest struct {
	Prompt   string `json:"prompt" validate:"required,min=3"`
	Type     string `json:"type"`
	Platform string `json:"platform" validate:"omitempty,platform"`
}

type ShortsRequest struct {
	Topic    string `json:"topic" validate:"required,min=3"`
	Platform string `json:"platform" validate:"omitempty,shorts_platform"`
	Niche    string `json:"niche"`
	Tone     string `json:"tone"`
}

type AuthorityImageRequest struct {
	Text            string `json:"text" validate:"required,min=3"`
	Author          string `json:"author"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`
	Style           string `json:"style" validate:"omitempty,image_style"`
}

type PlanRequest struct {
	Days int `json:"days" validate:"omitempty,min=1,max=90"`
}

type SchedulePostRequest struct {
	ScheduledFor string `json:"scheduledFor" validate:"required"`
}

type APIKeyRequest struct {
	Provider string `json:"provider" validate:"required,oneof=gemini openai anthropic"`
	// ModuleKey scopes the key to one module; stored as "<provider>_<moduleKey>".
	ModuleKey string `json:"moduleKey" validate:"omitempty,min=2"`
	APIKey    string `json:"apiKey" validate:"required,min=8"`
	Label     string `json:"label"`
}

type BrandVoiceRequest struct {
	Name       string   `json:"name" validate:"required,min=2"`
	Tone       string   `json:"tone" validate:"required,min=2"`
	Style      string   `json:"style"`
	Audience   string   `json:"audience"`
	Keywords   []string `json:"keywords"`
	AvoidWords []string `json:"avoidWords"`
	Examples   string   `json:"examples"`
	IsDefault  bool     `json:"isDefault"`
}

type ModuleSettingsRequest struct {
	Settings map[string]interface{} `json:"settings" validate:"required"`
}

type BillingWebhookRequest struct {
	Event       string `json:"event" validate:"required"`
	WorkspaceID string `json:"workspaceId" validate:"required,uuid"`
	ModuleKey   string `json:"moduleKey" validate:"required"`
}

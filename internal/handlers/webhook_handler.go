package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"contentos/internal/api/validator"
	"contentos/internal/modules"
	"contentos/internal/utils/logger"
)

// WebhookHandler receives billing callbacks that grant module
// entitlements. "transaction.completed" is the production purchase event;
// "dev.grant" is the development shortcut with the same effect.
type WebhookHandler struct {
	db          *gorm.DB
	secretToken string
	log         *logger.Logger
}

func NewWebhookHandler(db *gorm.DB, secretToken string) *WebhookHandler {
	return &WebhookHandler{db: db, secretToken: secretToken, log: logger.New("WebhookHandler")}
}

// Billing processes a billing event.
// @Summary Billing webhook
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body validator.BillingWebhookRequest true "Billing event"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Unknown event or module"
// @Failure 401 {object} map[string]string "Bad webhook token"
// @Router /webhooks/billing [post]
func (h *WebhookHandler) Billing(c echo.Context) error {
	if h.secretToken != "" {
		token := c.Request().Header.Get("X-Webhook-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.secretToken)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook token")
		}
	}

	var req validator.BillingWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	switch req.Event {
	case "transaction.completed", "dev.grant":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown event "+req.Event)
	}

	entitlement, err := modules.GrantEntitlement(c.Request().Context(), h.db, req.WorkspaceID, req.ModuleKey)
	if err != nil {
		if errors.Is(err, modules.ErrInvalidModuleKey) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.log.Success("granted %s to workspace %s via %s", req.ModuleKey, req.WorkspaceID, req.Event)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"granted":     true,
		"moduleKey":   req.ModuleKey,
		"workspaceId": req.WorkspaceID,
		"enabledAt":   entitlement.PurchasedAt,
	})
}

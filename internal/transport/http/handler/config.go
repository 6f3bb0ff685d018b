package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandreply/internal/app"
	"brandreply/internal/transport/http/middleware"
	"brandreply/internal/transport/http/response"
)

type ConfigHandler struct {
	configService *app.ConfigService
}

type UpsertConfigRequest struct {
	SlackWebhookURL     *string `json:"slack_webhook_url"`
	InboundEmailAddress *string `json:"inbound_email_address"`
}

func NewConfigHandler(configService *app.ConfigService) *ConfigHandler {
	return &ConfigHandler{configService: configService}
}

func (h *ConfigHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	cfg, err := h.configService.Get(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch config failed")
		return
	}
	if cfg == nil {
		response.OK(c, nil)
		return
	}
	response.OK(c, cfg)
}

func (h *ConfigHandler) Upsert(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	var req UpsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	cfg, err := h.configService.Upsert(c.Request.Context(), app.UpsertConfigInput{
		UserID:              userID,
		SlackWebhookURL:     req.SlackWebhookURL,
		InboundEmailAddress: req.InboundEmailAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput),
			errors.Is(err, app.ErrInvalidEmailAddress),
			errors.Is(err, app.ErrInvalidSlackURL):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInboundAddressTaken):
			response.Error(c, http.StatusConflict, response.CodeConflict, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save config failed")
		}
		return
	}
	response.OK(c, cfg)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandreply/internal/app"
	"brandreply/internal/transport/http/middleware"
	"brandreply/internal/transport/http/response"
)

// InboundHandler serves the mail provider's webhook plus the tenant-facing
// email listing. The webhook replies with a plain JSON shape the provider
// expects, not the API envelope.
type InboundHandler struct {
	inboundService *app.InboundEmailService
}

// Mail providers deliver parsed emails as form fields, either urlencoded or
// multipart, never JSON.
type InboundEmailRequest struct {
	From    string `form:"from"`
	To      string `form:"to"`
	Subject string `form:"subject"`
	Text    string `form:"text"`
	HTML    string `form:"html"`
}

func NewInboundHandler(inboundService *app.InboundEmailService) *InboundHandler {
	return &InboundHandler{inboundService: inboundService}
}

func (h *InboundHandler) Receive(c *gin.Context) {
	var req InboundEmailRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	email, err := h.inboundService.Receive(c.Request.Context(), app.ReceiveEmailInput{
		From:    req.From,
		To:      req.To,
		Subject: req.Subject,
		Text:    req.Text,
		HTML:    req.HTML,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
		case errors.Is(err, app.ErrTenantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recipient address is not registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to accept email"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"email_id": email.ID,
		"message":  "email accepted for processing",
	})
}

// List returns the tenant's inbound emails with parsed questions and answers.
func (h *InboundHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	emails, err := h.inboundService.ListByUserID(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list emails failed")
		return
	}

	items := make([]gin.H, 0, len(emails))
	for i := range emails {
		e := &emails[i]
		items = append(items, gin.H{
			"id":                  e.ID,
			"from_email":          e.FromEmail,
			"subject":             e.Subject,
			"processing_status":   e.ProcessingStatus,
			"extracted_questions": e.Questions(),
			"ai_answers":          e.Answers(),
			"error_message":       e.ErrorMessage,
			"received_at":         e.CreatedAt,
			"processed_at":        e.ProcessedAt,
			"slack_notified_at":   e.SlackNotifiedAt,
		})
	}
	response.OK(c, items)
}

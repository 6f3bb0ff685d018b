package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"brandreply/internal/app"
	"brandreply/internal/transport/http/middleware"
	"brandreply/internal/transport/http/response"
)

// QnAHandler answers one-off questions against the caller's knowledge base,
// synchronously. Meant for admins testing the knowledge base and tones.
type QnAHandler struct {
	qnaService *app.QnAService
}

// KnowledgeID is accepted for contract compatibility with existing clients;
// retrieval is always scoped to the tenant's whole store.
type AskRequest struct {
	KnowledgeID *uint  `json:"knowledgeId"`
	Query       string `json:"query" binding:"required"`
	BrandToneID *uint  `json:"brandToneId"`
}

func NewQnAHandler(qnaService *app.QnAService) *QnAHandler {
	return &QnAHandler{qnaService: qnaService}
}

func (h *QnAHandler) Ask(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	answer, err := h.qnaService.Answer(c.Request.Context(), app.AnswerInput{
		UserID:      userID,
		Query:       req.Query,
		BrandToneID: req.BrandToneID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrNoKnowledgeBase):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		case errors.Is(err, app.ErrBrandToneNotFound):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "generate answer failed")
		}
		return
	}

	response.OK(c, gin.H{"answer": answer})
}

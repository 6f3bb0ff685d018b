package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"brandreply/internal/app"
	"brandreply/internal/model"
	"brandreply/internal/pkg/pdfextract"
	"brandreply/internal/transport/http/middleware"
	"brandreply/internal/transport/http/response"
)

const maxUploadBytes = 20 << 20

type KnowledgeHandler struct {
	knowledgeService *app.KnowledgeService
}

type CreateKnowledgeRequest struct {
	Name    string `json:"name" binding:"required,max=256"`
	Content string `json:"content" binding:"required"`
}

// DeleteKnowledgeRequest carries the target id in the body; the delete
// endpoint is not addressed by path.
type DeleteKnowledgeRequest struct {
	ID uint `json:"id" binding:"required"`
}

func NewKnowledgeHandler(knowledgeService *app.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

// Upload ingests a multipart file. PDFs go through text extraction; anything
// else is treated as plain text.
func (h *KnowledgeHandler) Upload(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file field")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer f.Close()

	content, mimeType, err := extractUploadText(f, fileHeader.Filename)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "extract text from file failed")
		return
	}
	if strings.TrimSpace(content) == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file has no extractable text")
		return
	}

	file, err := h.knowledgeService.Ingest(c.Request.Context(), app.IngestFileInput{
		UserID:   userID,
		Name:     fileHeader.Filename,
		Content:  content,
		MimeType: mimeType,
		Size:     fileHeader.Size,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest knowledge file failed")
		return
	}
	response.OK(c, file.SafeData())
}

// Create ingests raw text posted as JSON, for knowledge entered by hand.
func (h *KnowledgeHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	var req CreateKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	file, err := h.knowledgeService.Ingest(c.Request.Context(), app.IngestFileInput{
		UserID:   userID,
		Name:     req.Name,
		Content:  req.Content,
		MimeType: "text/plain",
		Size:     int64(len(req.Content)),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest knowledge file failed")
		return
	}
	response.OK(c, file.SafeData())
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	files, err := h.knowledgeService.ListByUserID(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list knowledge files failed")
		return
	}

	items := make([]model.KnowledgeFileSafeData, 0, len(files))
	for i := range files {
		items = append(items, files[i].SafeData())
	}
	response.OK(c, items)
}

func (h *KnowledgeHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, err := h.knowledgeService.GetByID(userID, fileID)
	if err != nil {
		if errors.Is(err, app.ErrKnowledgeNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch knowledge file failed")
		return
	}
	response.OK(c, file)
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	var req DeleteKnowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.knowledgeService.Delete(userID, req.ID); err != nil {
		if errors.Is(err, app.ErrKnowledgeNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete knowledge file failed")
		return
	}
	response.OK(c, nil)
}

func extractUploadText(r io.Reader, filename string) (content, mimeType string, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	// The extracted text is what gets indexed, so the reported mime type
	// describes the text, not the container the user uploaded.
	case ".pdf":
		text, err := pdfextract.ExtractText(r)
		if err != nil {
			return "", "", err
		}
		return text, "text/plain", nil
	case ".md":
		b, err := io.ReadAll(r)
		if err != nil {
			return "", "", err
		}
		return string(b), "text/markdown", nil
	default:
		b, err := io.ReadAll(r)
		if err != nil {
			return "", "", err
		}
		return string(b), "text/plain", nil
	}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

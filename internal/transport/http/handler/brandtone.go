package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"brandreply/internal/app"
	"brandreply/internal/pkg/pdfextract"
	"brandreply/internal/transport/http/middleware"
	"brandreply/internal/transport/http/response"
)

type BrandToneHandler struct {
	toneService *app.BrandToneService
}

type CreateBrandToneRequest struct {
	Name               string `json:"name" binding:"required,max=128"`
	Description        string `json:"description" binding:"max=512"`
	InstructionContent string `json:"instruction_content" binding:"required"`
	IsDefault          bool   `json:"is_default"`
}

type DeleteBrandToneRequest struct {
	ID uint `json:"id" binding:"required"`
}

func NewBrandToneHandler(toneService *app.BrandToneService) *BrandToneHandler {
	return &BrandToneHandler{toneService: toneService}
}

func (h *BrandToneHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	var req CreateBrandToneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	tone, err := h.toneService.Create(app.CreateBrandToneInput{
		UserID:             userID,
		Name:               req.Name,
		Description:        req.Description,
		InstructionContent: req.InstructionContent,
		IsDefault:          req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create brand tone failed")
		return
	}
	response.OK(c, tone)
}

// Upload creates a brand tone from an uploaded instruction document (txt, md
// or pdf). Name comes from a form field, defaulting to the filename.
func (h *BrandToneHandler) Upload(c *gin.Context) {
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

	var content string
	if strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		content, err = pdfextract.ExtractText(f)
	} else {
		var b []byte
		b, err = io.ReadAll(f)
		content = string(b)
	}
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "extract text from file failed")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = fileHeader.Filename
	}

	tone, err := h.toneService.Create(app.CreateBrandToneInput{
		UserID:             userID,
		Name:               name,
		Description:        strings.TrimSpace(c.PostForm("description")),
		InstructionContent: content,
		IsDefault:          c.PostForm("is_default") == "true",
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create brand tone failed")
		return
	}
	response.OK(c, tone)
}

func (h *BrandToneHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	tones, err := h.toneService.ListByUserID(userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list brand tones failed")
		return
	}
	response.OK(c, tones)
}

func (h *BrandToneHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}
	toneID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tone, err := h.toneService.GetByID(userID, toneID)
	if err != nil {
		if errors.Is(err, app.ErrBrandToneNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "fetch brand tone failed")
		return
	}
	response.OK(c, tone)
}

func (h *BrandToneHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "user not found in session")
		return
	}

	var req DeleteBrandToneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	if err := h.toneService.Delete(userID, req.ID); err != nil {
		if errors.Is(err, app.ErrBrandToneNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete brand tone failed")
		return
	}
	response.OK(c, nil)
}

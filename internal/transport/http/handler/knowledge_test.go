package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"brandreply/internal/ai"
	"brandreply/internal/app"
	"brandreply/internal/model"
	"brandreply/internal/transport/http/middleware"
)

type stubKnowledgeFiles struct {
	rows map[uint]*model.KnowledgeFile
}

func (s *stubKnowledgeFiles) Create(file *model.KnowledgeFile) error {
	file.ID = uint(len(s.rows) + 1)
	s.rows[file.ID] = file
	return nil
}

func (s *stubKnowledgeFiles) ListByUserID(userID uint) ([]model.KnowledgeFile, error) {
	var out []model.KnowledgeFile
	for _, f := range s.rows {
		if f.UserID == userID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *stubKnowledgeFiles) GetByIDAndUserID(id, userID uint) (*model.KnowledgeFile, error) {
	f, ok := s.rows[id]
	if !ok || f.UserID != userID {
		return nil, nil
	}
	return f, nil
}

func (s *stubKnowledgeFiles) DeleteByIDAndUserID(id, userID uint) error {
	delete(s.rows, id)
	return nil
}

func (s *stubKnowledgeFiles) UpdateGeminiInfo(id uint, storeName, documentName string) error {
	return nil
}

type stubStores struct{}

func (s *stubStores) Create(store *model.FileSearchStore) error { return nil }
func (s *stubStores) GetByUserID(userID uint) (*model.FileSearchStore, error) {
	return &model.FileSearchStore{UserID: userID, StoreName: "fileSearchStores/test"}, nil
}

type stubIndexer struct{}

func (s *stubIndexer) CreateFileSearchStore(ctx context.Context, displayName string) (string, error) {
	return "fileSearchStores/test", nil
}

func (s *stubIndexer) UploadToFileSearchStore(ctx context.Context, storeName, path, displayName, mimeType string) (ai.Operation, error) {
	return ai.Operation{Name: "operations/op-1", Done: true}, nil
}

func (s *stubIndexer) WaitForOperation(ctx context.Context, op ai.Operation, interval time.Duration) (ai.Operation, error) {
	return op, nil
}

func asUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	}
}

func newKnowledgeRouter(files *stubKnowledgeFiles) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := app.NewKnowledgeService(files, &stubStores{}, &stubIndexer{}, time.Millisecond, time.Second)
	h := NewKnowledgeHandler(svc)

	router := gin.New()
	group := router.Group("/api/v1", asUser(1))
	group.GET("/knowledge/view/:id", h.Get)
	group.DELETE("/knowledge/delete", h.Delete)
	return router
}

func TestKnowledgeViewByID(t *testing.T) {
	files := &stubKnowledgeFiles{rows: map[uint]*model.KnowledgeFile{
		3: {ID: 3, UserID: 1, Name: "faq.txt", Content: "원단 정보", Size: 12},
	}}
	router := newKnowledgeRouter(files)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/knowledge/view/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "원단 정보") {
		t.Errorf("view response missing raw content: %s", w.Body.String())
	}
}

func TestKnowledgeDeleteReadsIDFromBody(t *testing.T) {
	files := &stubKnowledgeFiles{rows: map[uint]*model.KnowledgeFile{
		3: {ID: 3, UserID: 1, Name: "faq.txt", Content: "x", Size: 1},
	}}
	router := newKnowledgeRouter(files)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/knowledge/delete", strings.NewReader(`{"id":3}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if _, ok := files.rows[3]; ok {
		t.Error("file not deleted")
	}
}

func TestKnowledgeDeleteMissingID(t *testing.T) {
	files := &stubKnowledgeFiles{rows: map[uint]*model.KnowledgeFile{}}
	router := newKnowledgeRouter(files)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/knowledge/delete", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

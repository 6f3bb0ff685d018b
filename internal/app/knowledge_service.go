package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"brandreply/internal/model"
)

var ErrKnowledgeNotFound = errors.New("knowledge file not found")

// KnowledgeService owns a tenant's brand-knowledge documents: the database
// row holding the extracted text, and the mirrored document inside the
// tenant's Gemini file-search store.
type KnowledgeService struct {
	files        KnowledgeFiles
	stores       SearchStores
	indexer      KnowledgeIndexer
	pollInterval time.Duration
	indexTimeout time.Duration
}

type IngestFileInput struct {
	UserID   uint
	Name     string
	Content  string
	MimeType string
	Size     int64
}

func NewKnowledgeService(files KnowledgeFiles, stores SearchStores, indexer KnowledgeIndexer, pollInterval, indexTimeout time.Duration) *KnowledgeService {
	return &KnowledgeService{
		files:        files,
		stores:       stores,
		indexer:      indexer,
		pollInterval: pollInterval,
		indexTimeout: indexTimeout,
	}
}

// Ingest stores the document and indexes it into the tenant's file-search
// store, creating the store on first upload. The row is created before
// indexing starts; a row with an empty gemini_document_name means indexing
// did not finish.
func (s *KnowledgeService) Ingest(ctx context.Context, input IngestFileInput) (*model.KnowledgeFile, error) {
	if input.UserID == 0 || input.Name == "" || input.Content == "" {
		return nil, ErrInvalidInput
	}

	file := &model.KnowledgeFile{
		UserID:  input.UserID,
		Name:    input.Name,
		Content: input.Content,
		Size:    input.Size,
	}
	if err := s.files.Create(file); err != nil {
		return nil, err
	}

	storeName, err := s.ensureStore(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	documentName, err := s.indexDocument(ctx, storeName, input)
	if err != nil {
		return nil, err
	}

	if err := s.files.UpdateGeminiInfo(file.ID, storeName, documentName); err != nil {
		return nil, err
	}
	file.GeminiStoreName = storeName
	file.GeminiDocumentName = documentName
	return file, nil
}

func (s *KnowledgeService) ListByUserID(userID uint) ([]model.KnowledgeFile, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.files.ListByUserID(userID)
}

func (s *KnowledgeService) GetByID(userID, fileID uint) (*model.KnowledgeFile, error) {
	file, err := s.files.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, ErrKnowledgeNotFound
	}
	return file, nil
}

func (s *KnowledgeService) Delete(userID, fileID uint) error {
	file, err := s.files.GetByIDAndUserID(fileID, userID)
	if err != nil {
		return err
	}
	if file == nil {
		return ErrKnowledgeNotFound
	}
	return s.files.DeleteByIDAndUserID(fileID, userID)
}

// ensureStore returns the tenant's file-search store, creating one on the
// Gemini side and recording it locally on first use.
func (s *KnowledgeService) ensureStore(ctx context.Context, userID uint) (string, error) {
	store, err := s.stores.GetByUserID(userID)
	if err != nil {
		return "", err
	}
	if store != nil {
		return store.StoreName, nil
	}

	displayName := fmt.Sprintf("store-%d", userID)
	storeName, err := s.indexer.CreateFileSearchStore(ctx, displayName)
	if err != nil {
		return "", fmt.Errorf("create file search store failed: %w", err)
	}

	if err := s.stores.Create(&model.FileSearchStore{UserID: userID, StoreName: storeName}); err != nil {
		return "", err
	}
	return storeName, nil
}

// indexDocument pushes the extracted text through the upload endpoint and
// waits for the indexing operation, bounded by the configured timeout.
func (s *KnowledgeService) indexDocument(ctx context.Context, storeName string, input IngestFileInput) (string, error) {
	tmp, err := os.CreateTemp("", "brandreply-upload-*.txt")
	if err != nil {
		return "", fmt.Errorf("create temp file failed: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(input.Content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file failed: %w", err)
	}

	mimeType := input.MimeType
	if mimeType == "" {
		mimeType = "text/plain"
	}

	op, err := s.indexer.UploadToFileSearchStore(ctx, storeName, path, filepath.Base(input.Name), mimeType)
	if err != nil {
		return "", fmt.Errorf("upload to file search store failed: %w", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()
	final, err := s.indexer.WaitForOperation(waitCtx, op, s.pollInterval)
	if err != nil {
		return "", fmt.Errorf("index document failed: %w", err)
	}
	return final.DocumentName(), nil
}

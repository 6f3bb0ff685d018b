package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"brandreply/internal/model"
)

func newKnowledgeFixture() (*KnowledgeService, *fakeKnowledgeFiles, *fakeStores, *fakeIndexer) {
	files := newFakeKnowledgeFiles()
	stores := newFakeStores()
	indexer := &fakeIndexer{storeName: "fileSearchStores/new-store"}
	svc := NewKnowledgeService(files, stores, indexer, 10*time.Millisecond, time.Second)
	return svc, files, stores, indexer
}

func TestIngestCreatesStoreOnFirstUpload(t *testing.T) {
	svc, files, stores, indexer := newKnowledgeFixture()

	file, err := svc.Ingest(context.Background(), IngestFileInput{
		UserID:  1,
		Name:    "faq.txt",
		Content: "자주 묻는 질문과 답변",
		Size:    30,
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	store := stores.byUser[1]
	if store == nil || store.StoreName != "fileSearchStores/new-store" {
		t.Fatalf("store not recorded: %+v", store)
	}
	if file.GeminiStoreName != "fileSearchStores/new-store" {
		t.Errorf("file store name = %q", file.GeminiStoreName)
	}
	if file.GeminiDocumentName == "" {
		t.Error("document name not recorded after indexing")
	}
	if len(indexer.uploaded) != 1 || indexer.uploaded[0] != "faq.txt" {
		t.Errorf("uploaded = %v", indexer.uploaded)
	}
	if len(files.rows) != 1 {
		t.Errorf("expected 1 stored file, got %d", len(files.rows))
	}
}

func TestIngestReusesExistingStore(t *testing.T) {
	svc, _, stores, indexer := newKnowledgeFixture()
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/existing"}
	indexer.createErr = errors.New("must not create a second store")

	file, err := svc.Ingest(context.Background(), IngestFileInput{
		UserID:  1,
		Name:    "sizes.txt",
		Content: "사이즈표",
		Size:    10,
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if file.GeminiStoreName != "fileSearchStores/existing" {
		t.Errorf("store name = %q, want existing store", file.GeminiStoreName)
	}
}

func TestIngestRowSurvivesIndexFailure(t *testing.T) {
	svc, files, stores, indexer := newKnowledgeFixture()
	stores.byUser[1] = &model.FileSearchStore{UserID: 1, StoreName: "fileSearchStores/existing"}
	indexer.uploadErr = errors.New("upload rejected")

	_, err := svc.Ingest(context.Background(), IngestFileInput{
		UserID:  1,
		Name:    "faq.txt",
		Content: "내용",
		Size:    4,
	})
	if err == nil {
		t.Fatal("expected error when indexing fails")
	}
	// The row is created before indexing; it stays without gemini info.
	if len(files.rows) != 1 {
		t.Fatalf("expected row to survive, got %d rows", len(files.rows))
	}
	for _, f := range files.rows {
		if f.GeminiDocumentName != "" {
			t.Errorf("document name set despite failed indexing: %q", f.GeminiDocumentName)
		}
	}
}

func TestIngestRejectsEmptyInput(t *testing.T) {
	svc, _, _, _ := newKnowledgeFixture()

	for _, in := range []IngestFileInput{
		{Name: "a.txt", Content: "x"},
		{UserID: 1, Content: "x"},
		{UserID: 1, Name: "a.txt"},
	} {
		if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Ingest(%+v) err = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestGetAndDeleteScopedToOwner(t *testing.T) {
	svc, files, _, _ := newKnowledgeFixture()
	file := &model.KnowledgeFile{UserID: 1, Name: "faq.txt", Content: "x", Size: 1}
	_ = files.Create(file)

	if _, err := svc.GetByID(2, file.ID); !errors.Is(err, ErrKnowledgeNotFound) {
		t.Errorf("GetByID for other user err = %v, want ErrKnowledgeNotFound", err)
	}
	if err := svc.Delete(2, file.ID); !errors.Is(err, ErrKnowledgeNotFound) {
		t.Errorf("Delete for other user err = %v, want ErrKnowledgeNotFound", err)
	}

	got, err := svc.GetByID(1, file.ID)
	if err != nil || got == nil {
		t.Fatalf("owner GetByID failed: %v", err)
	}
	if err := svc.Delete(1, file.ID); err != nil {
		t.Fatalf("owner Delete failed: %v", err)
	}
	if len(files.rows) != 0 {
		t.Error("file not deleted")
	}
}

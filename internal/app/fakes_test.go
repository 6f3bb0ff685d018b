package app

import (
	"context"
	"sync"
	"time"

	"brandreply/internal/ai"
	"brandreply/internal/model"
	"brandreply/internal/platform/rabbitmq"
	"brandreply/internal/slack"
)

// In-memory fakes for the dependency interfaces in deps.go.

type fakeConfigs struct {
	byUser    map[uint]*model.UserEmailSlackConfig
	byAddress map[string]*model.UserEmailSlackConfig
	upsertErr error
}

func newFakeConfigs() *fakeConfigs {
	return &fakeConfigs{
		byUser:    map[uint]*model.UserEmailSlackConfig{},
		byAddress: map[string]*model.UserEmailSlackConfig{},
	}
}

func (f *fakeConfigs) add(cfg *model.UserEmailSlackConfig) {
	f.byUser[cfg.UserID] = cfg
	if cfg.InboundEmailAddress != nil {
		f.byAddress[*cfg.InboundEmailAddress] = cfg
	}
}

func (f *fakeConfigs) GetByUserID(userID uint) (*model.UserEmailSlackConfig, error) {
	return f.byUser[userID], nil
}

func (f *fakeConfigs) GetByInboundAddress(address string) (*model.UserEmailSlackConfig, error) {
	return f.byAddress[address], nil
}

func (f *fakeConfigs) Upsert(cfg *model.UserEmailSlackConfig) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.add(cfg)
	return nil
}

type fakeCache struct {
	entries map[string]*model.UserEmailSlackConfig
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*model.UserEmailSlackConfig{}}
}

func (f *fakeCache) GetByAddress(ctx context.Context, address string) (*model.UserEmailSlackConfig, bool, error) {
	cfg, ok := f.entries[address]
	return cfg, ok, nil
}

func (f *fakeCache) SetByAddress(ctx context.Context, address string, cfg *model.UserEmailSlackConfig) error {
	f.entries[address] = cfg
	return nil
}

func (f *fakeCache) DeleteByAddress(ctx context.Context, address string) error {
	delete(f.entries, address)
	f.deleted = append(f.deleted, address)
	return nil
}

type fakeEmails struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.InboundEmail
}

func newFakeEmails() *fakeEmails {
	return &fakeEmails{nextID: 1, rows: map[uint]*model.InboundEmail{}}
}

func (f *fakeEmails) Create(email *model.InboundEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email.ID = f.nextID
	f.nextID++
	copied := *email
	f.rows[email.ID] = &copied
	return nil
}

func (f *fakeEmails) GetByID(id uint) (*model.InboundEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeEmails) ListByUserID(userID uint) ([]model.InboundEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.InboundEmail
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeEmails) UpdateStatus(id uint, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].ProcessingStatus = status
	return nil
}

func (f *fakeEmails) MarkCompleted(id uint, questions []string, answers []model.QuestionAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id]
	row.SetQuestions(questions)
	row.SetAnswers(answers)
	row.ProcessingStatus = model.EmailStatusCompleted
	now := time.Now()
	row.ProcessedAt = &now
	return nil
}

func (f *fakeEmails) MarkFailed(id uint, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.rows[id]
	row.ProcessingStatus = model.EmailStatusFailed
	row.ErrorMessage = message
	return nil
}

func (f *fakeEmails) MarkSlackNotified(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	f.rows[id].SlackNotifiedAt = &now
	return nil
}

type fakeKnowledgeFiles struct {
	nextID uint
	rows   map[uint]*model.KnowledgeFile
}

func newFakeKnowledgeFiles() *fakeKnowledgeFiles {
	return &fakeKnowledgeFiles{nextID: 1, rows: map[uint]*model.KnowledgeFile{}}
}

func (f *fakeKnowledgeFiles) Create(file *model.KnowledgeFile) error {
	file.ID = f.nextID
	f.nextID++
	copied := *file
	f.rows[file.ID] = &copied
	return nil
}

func (f *fakeKnowledgeFiles) ListByUserID(userID uint) ([]model.KnowledgeFile, error) {
	var out []model.KnowledgeFile
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeKnowledgeFiles) GetByIDAndUserID(id, userID uint) (*model.KnowledgeFile, error) {
	row, ok := f.rows[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeKnowledgeFiles) DeleteByIDAndUserID(id, userID uint) error {
	row, ok := f.rows[id]
	if ok && row.UserID == userID {
		delete(f.rows, id)
	}
	return nil
}

func (f *fakeKnowledgeFiles) UpdateGeminiInfo(id uint, storeName, documentName string) error {
	row, ok := f.rows[id]
	if ok {
		row.GeminiStoreName = storeName
		row.GeminiDocumentName = documentName
	}
	return nil
}

type fakeStores struct {
	byUser    map[uint]*model.FileSearchStore
	createErr error
}

func newFakeStores() *fakeStores {
	return &fakeStores{byUser: map[uint]*model.FileSearchStore{}}
}

func (f *fakeStores) Create(store *model.FileSearchStore) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byUser[store.UserID] = store
	return nil
}

func (f *fakeStores) GetByUserID(userID uint) (*model.FileSearchStore, error) {
	return f.byUser[userID], nil
}

type fakeTones struct {
	nextID uint
	rows   map[uint]*model.BrandTone
}

func newFakeTones() *fakeTones {
	return &fakeTones{nextID: 1, rows: map[uint]*model.BrandTone{}}
}

func (f *fakeTones) Create(tone *model.BrandTone) error {
	tone.ID = f.nextID
	f.nextID++
	f.rows[tone.ID] = tone
	return nil
}

func (f *fakeTones) ListByUserID(userID uint) ([]model.BrandTone, error) {
	var out []model.BrandTone
	for _, t := range f.rows {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTones) GetByIDAndUserID(id, userID uint) (*model.BrandTone, error) {
	t, ok := f.rows[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return t, nil
}

func (f *fakeTones) GetDefaultByUserID(userID uint) (*model.BrandTone, error) {
	for _, t := range f.rows {
		if t.UserID == userID && t.IsDefault {
			return t, nil
		}
	}
	return nil, nil
}

func (f *fakeTones) DeleteByIDAndUserID(id, userID uint) error {
	delete(f.rows, id)
	return nil
}

type fakeGenerator struct {
	mu       sync.Mutex
	calls    []ai.GenerateInput
	generate func(in ai.GenerateInput) (string, error)
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, in ai.GenerateInput) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()
	return f.generate(in)
}

type fakeIndexer struct {
	storeName string
	createErr error
	uploadErr error
	waitErr   error
	uploaded  []string
}

func (f *fakeIndexer) CreateFileSearchStore(ctx context.Context, displayName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.storeName, nil
}

func (f *fakeIndexer) UploadToFileSearchStore(ctx context.Context, storeName, path, displayName, mimeType string) (ai.Operation, error) {
	if f.uploadErr != nil {
		return ai.Operation{}, f.uploadErr
	}
	f.uploaded = append(f.uploaded, displayName)
	return ai.Operation{
		Name: "operations/op-1",
		Done: true,
		Response: &struct {
			Name string `json:"name"`
		}{Name: storeName + "/documents/doc-1"},
	}, nil
}

func (f *fakeIndexer) WaitForOperation(ctx context.Context, op ai.Operation, interval time.Duration) (ai.Operation, error) {
	if f.waitErr != nil {
		return op, f.waitErr
	}
	return op, nil
}

type fakeNotifier struct {
	sendErr error
	sent    []slack.Notification
	urls    []string
}

func (f *fakeNotifier) Send(ctx context.Context, webhookURL string, n slack.Notification) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, n)
	f.urls = append(f.urls, webhookURL)
	return nil
}

type fakeQueue struct {
	publishErr error
	jobs       []rabbitmq.EmailJob
}

func (f *fakeQueue) Publish(ctx context.Context, job rabbitmq.EmailJob) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

type fakeResolver struct {
	configs map[string]*model.UserEmailSlackConfig
}

func (f *fakeResolver) ResolveByInboundAddress(ctx context.Context, address string) (*model.UserEmailSlackConfig, error) {
	return f.configs[address], nil
}

func strPtr(s string) *string { return &s }

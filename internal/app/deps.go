package app

import (
	"context"
	"time"

	"brandreply/internal/ai"
	"brandreply/internal/model"
	"brandreply/internal/platform/rabbitmq"
	"brandreply/internal/slack"
)

// Persistence and client dependencies of the services in this package.
// The gorm repositories and the platform clients satisfy these; tests plug
// in fakes.

type TenantConfigs interface {
	GetByUserID(userID uint) (*model.UserEmailSlackConfig, error)
	GetByInboundAddress(address string) (*model.UserEmailSlackConfig, error)
	Upsert(cfg *model.UserEmailSlackConfig) error
}

type ConfigCache interface {
	GetByAddress(ctx context.Context, address string) (*model.UserEmailSlackConfig, bool, error)
	SetByAddress(ctx context.Context, address string, cfg *model.UserEmailSlackConfig) error
	DeleteByAddress(ctx context.Context, address string) error
}

type InboundEmails interface {
	Create(email *model.InboundEmail) error
	GetByID(id uint) (*model.InboundEmail, error)
	ListByUserID(userID uint) ([]model.InboundEmail, error)
	UpdateStatus(id uint, status string) error
	MarkCompleted(id uint, questions []string, answers []model.QuestionAnswer) error
	MarkFailed(id uint, message string) error
	MarkSlackNotified(id uint) error
}

type KnowledgeFiles interface {
	Create(file *model.KnowledgeFile) error
	ListByUserID(userID uint) ([]model.KnowledgeFile, error)
	GetByIDAndUserID(id, userID uint) (*model.KnowledgeFile, error)
	DeleteByIDAndUserID(id, userID uint) error
	UpdateGeminiInfo(id uint, storeName, documentName string) error
}

type SearchStores interface {
	Create(store *model.FileSearchStore) error
	GetByUserID(userID uint) (*model.FileSearchStore, error)
}

type BrandTones interface {
	Create(tone *model.BrandTone) error
	ListByUserID(userID uint) ([]model.BrandTone, error)
	GetByIDAndUserID(id, userID uint) (*model.BrandTone, error)
	GetDefaultByUserID(userID uint) (*model.BrandTone, error)
	DeleteByIDAndUserID(id, userID uint) error
}

type ContentGenerator interface {
	GenerateContent(ctx context.Context, in ai.GenerateInput) (string, error)
}

type KnowledgeIndexer interface {
	CreateFileSearchStore(ctx context.Context, displayName string) (string, error)
	UploadToFileSearchStore(ctx context.Context, storeName, path, displayName, mimeType string) (ai.Operation, error)
	WaitForOperation(ctx context.Context, op ai.Operation, interval time.Duration) (ai.Operation, error)
}

type SlackNotifier interface {
	Send(ctx context.Context, webhookURL string, n slack.Notification) error
}

type EmailJobQueue interface {
	Publish(ctx context.Context, job rabbitmq.EmailJob) error
}

type TenantResolver interface {
	ResolveByInboundAddress(ctx context.Context, address string) (*model.UserEmailSlackConfig, error)
}

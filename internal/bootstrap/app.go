package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"brandreply/internal/ai"
	appsvc "brandreply/internal/app"
	"brandreply/internal/cache"
	"brandreply/internal/config"
	"brandreply/internal/model"
	mysqlClient "brandreply/internal/platform/mysql"
	rabbitmqClient "brandreply/internal/platform/rabbitmq"
	redisClient "brandreply/internal/platform/redis"
	"brandreply/internal/repository"
	"brandreply/internal/slack"
	"brandreply/internal/worker"
)

type App struct {
	Config      *config.Config
	MySQL       *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	Gemini      *ai.GeminiClient
	Slack       *slack.Notifier
	EmailWorker *worker.EmailProcessWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(
		&model.User{},
		&model.UserEmailSlackConfig{},
		&model.KnowledgeFile{},
		&model.FileSearchStore{},
		&model.BrandTone{},
		&model.InboundEmail{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	gemini := ai.NewGeminiClient(ai.GeminiConfig{
		BaseURL: cfg.Gemini.BaseURL,
		APIKey:  cfg.Gemini.APIKey,
	})
	notifier := slack.NewNotifier()

	app := &App{
		Config:    cfg,
		MySQL:     mysqlDB,
		Redis:     redisCli,
		MQConn:    mqConn,
		Gemini:    gemini,
		Slack:     notifier,
		StartedAt: time.Now(),
	}

	if err := app.startEmailWorker(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// startEmailWorker wires the queue consumer to the answer pipeline.
func (a *App) startEmailWorker(ctx context.Context) error {
	pipeline := a.NewPipelineService()
	emailWorker := worker.NewEmailProcessWorker(a.MQConn, pipeline, a.Config.RabbitMQ.InboundQueue)
	if err := emailWorker.Start(ctx); err != nil {
		return fmt.Errorf("start email worker failed: %w", err)
	}
	a.EmailWorker = emailWorker
	return nil
}

// NewConfigCache builds the redis-backed tenant-config cache.
func (a *App) NewConfigCache() *cache.ConfigCache {
	ttl := time.Duration(a.Config.Redis.ConfigTTLSeconds) * time.Second
	return cache.NewConfigCache(a.Redis, ttl)
}

// NewPipelineService assembles the email answer pipeline from the shared
// clients. Used by the queue worker; the router builds its own services.
func (a *App) NewPipelineService() *appsvc.PipelineService {
	return appsvc.NewPipelineService(
		repository.NewInboundEmailRepository(a.MySQL),
		repository.NewEmailSlackConfigRepository(a.MySQL),
		repository.NewFileSearchStoreRepository(a.MySQL),
		repository.NewBrandToneRepository(a.MySQL),
		a.Gemini,
		a.Slack,
		appsvc.PipelineModels{
			ExtractionModel: a.Config.Gemini.ExtractionModel,
			AnswerModel:     a.Config.Gemini.AnswerModel,
		},
	)
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EmailWorker != nil {
		a.EmailWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "brandreply/internal/app"
	"brandreply/internal/bootstrap"
	"brandreply/internal/platform/rabbitmq"
	"brandreply/internal/repository"
	"brandreply/internal/transport/http/handler"
	"brandreply/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	configRepo := repository.NewEmailSlackConfigRepository(app.MySQL)
	knowledgeRepo := repository.NewKnowledgeFileRepository(app.MySQL)
	storeRepo := repository.NewFileSearchStoreRepository(app.MySQL)
	toneRepo := repository.NewBrandToneRepository(app.MySQL)
	emailRepo := repository.NewInboundEmailRepository(app.MySQL)

	jwtExpiration := time.Duration(app.Config.Auth.JWTExpireMinute) * time.Minute
	authService := appsvc.NewAuthService(userRepo, app.Config.Auth.JWTSecret, jwtExpiration)
	configService := appsvc.NewConfigService(configRepo, app.NewConfigCache())
	knowledgeService := appsvc.NewKnowledgeService(
		knowledgeRepo,
		storeRepo,
		app.Gemini,
		time.Duration(app.Config.Gemini.IndexPollSeconds)*time.Second,
		time.Duration(app.Config.Gemini.IndexTimeoutSeconds)*time.Second,
	)
	toneService := appsvc.NewBrandToneService(toneRepo)
	qnaService := appsvc.NewQnAService(storeRepo, toneRepo, app.Gemini, app.Config.Gemini.AnswerModel)
	publisher := rabbitmq.NewEmailJobPublisher(app.MQConn, app.Config.RabbitMQ.InboundQueue)
	inboundService := appsvc.NewInboundEmailService(configService, emailRepo, publisher)

	cookieMaxAge := int(jwtExpiration.Seconds())
	cookieSecure := app.Config.App.Env == "prod"
	authHandler := handler.NewAuthHandler(authService, cookieMaxAge, cookieSecure)
	configHandler := handler.NewConfigHandler(configService)
	knowledgeHandler := handler.NewKnowledgeHandler(knowledgeService)
	toneHandler := handler.NewBrandToneHandler(toneService)
	qnaHandler := handler.NewQnAHandler(qnaService)
	inboundHandler := handler.NewInboundHandler(inboundService)

	v1 := router.Group("/api/v1")

	// Webhook endpoint for the mail provider; no session, no envelope.
	v1.POST("/inbound/email", inboundHandler.Receive)

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	protected := v1.Group("")
	protected.Use(middleware.AuthJWT(app.Config.Auth.JWTSecret))

	protected.GET("/email-slack/config", configHandler.Get)
	protected.POST("/email-slack/config", configHandler.Upsert)

	protected.POST("/knowledge/upload", knowledgeHandler.Upload)
	protected.POST("/knowledge/create", knowledgeHandler.Create)
	protected.GET("/knowledge/list", knowledgeHandler.List)
	protected.GET("/knowledge/view/:id", knowledgeHandler.Get)
	protected.DELETE("/knowledge/delete", knowledgeHandler.Delete)

	protected.POST("/brand-tones/upload", toneHandler.Upload)
	protected.POST("/brand-tones/create", toneHandler.Create)
	protected.GET("/brand-tones/list", toneHandler.List)
	protected.GET("/brand-tones/view/:id", toneHandler.Get)
	protected.DELETE("/brand-tones/delete", toneHandler.Delete)

	protected.GET("/emails", inboundHandler.List)
	protected.POST("/rag-qna-admin", qnaHandler.Ask)

	return router
}

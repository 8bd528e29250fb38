package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"youtube-learner/config"
	"youtube-learner/constant"
	jobHandler "youtube-learner/handler"
	"youtube-learner/pkg/ai"
	"youtube-learner/pkg/rabbitmq"
	"youtube-learner/pkg/youtube"
	"youtube-learner/repository"
	"youtube-learner/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("NewRabbitMQConn")
	}

	videoRepo := repository.NewRepo(cfg.DB)
	userRepo := repository.NewUserRepo(videoRepo)

	feed := service.NewFeed(videoRepo)
	gateway := ai.NewGateway(ai.NewChatClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model))
	insightService := service.NewService(videoRepo, gateway, feed, cfg)

	publisher := rabbitmq.NewPublisher(conn, cfg.Queue)
	videoService := service.NewVideoService(videoRepo, youtube.NewMetadataClient(), publisher, feed, cfg)
	authService := service.NewAuthService(userRepo, cfg)

	serviceDeps := jobHandler.ServiceDependencies{
		InsightService: insightService,
	}

	// Start insight generation consumer
	generateConsumer := rabbitmq.NewConsumer(conn, cfg.Queue, cfg.Server.Workers, jobHandler.GenerateHandler)
	go func() {
		err := generateConsumer.Consume(ctx, serviceDeps)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Generate consumer error")
		}
	}()

	r := gin.Default()
	addHealth(r)
	addRoutes(r, ctx, authService, videoService, feed)

	handler := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := handler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := handler.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func addRoutes(r *gin.Engine, baseCtx context.Context, authService service.AuthService, videoService service.VideoService, feed service.Feed) {
	authHandler := NewAuthHandler(authService)
	videoHandler := NewVideoHandler(videoService)
	feedHandler := NewFeedHandler(feed, authService)

	api := r.Group("/api")
	api.Use(loggerMiddleware(baseCtx))

	api.POST("/auth/signup", authHandler.SignUp)
	api.POST("/auth/signin", authHandler.SignIn)

	authed := api.Group("")
	authed.Use(authMiddleware(authService))
	authed.POST("/auth/signout", authHandler.SignOut)
	authed.GET("/videos", videoHandler.List)
	authed.POST("/videos", videoHandler.Submit)
	authed.GET("/videos/:id", videoHandler.Get)
	authed.DELETE("/videos/:id", videoHandler.Delete)
	authed.POST("/videos/:id/retry", videoHandler.Retry)
	authed.GET("/feed", feedHandler.Stream)
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Log to standard output
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}

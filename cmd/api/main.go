package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/yourusername/quiz-app/internal/config"
	"github.com/yourusername/quiz-app/internal/domain/repository"
	"github.com/yourusername/quiz-app/internal/handler"
	"github.com/yourusername/quiz-app/internal/middleware"
	"github.com/yourusername/quiz-app/internal/pkg/logger"
	memoryRepo "github.com/yourusername/quiz-app/internal/repository/memory"
	redisRepo "github.com/yourusername/quiz-app/internal/repository/redis"
	"github.com/yourusername/quiz-app/internal/service"
	"github.com/yourusername/quiz-app/internal/service/quizengine"
	ws "github.com/yourusername/quiz-app/internal/websocket"
	"github.com/yourusername/quiz-app/pkg/database"
)

const (
	redisConnectTimeout = 5 * time.Second
	shutdownTimeout     = 10 * time.Second
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(cfg.Log.Mode)
	if err != nil {
		log.Printf("Failed to initialize logger: %v", err)
		os.Exit(1)
	}
	defer appLogger.Sync()
	appLogger.Info("Configuration loaded", "path", configPath, "gin_mode", cfg.Server.Mode)

	gin.SetMode(cfg.Server.Mode)

	// Создаем контекст с отменой для корректного завершения работы горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis необязателен: без него кеш примера хранится в памяти, а лимитер выключен
	var (
		redisClient redis.UniversalClient
		cacheRepo   repository.CacheRepository
	)
	if cfg.Redis.Enabled {
		connectCtx, connectCancel := context.WithTimeout(ctx, redisConnectTimeout)
		redisClient, err = database.NewUniversalRedisClient(connectCtx, cfg.Redis)
		connectCancel()
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", "error", err)
		}
		appLogger.Info("Successfully connected to Redis", "mode", cfg.Redis.Mode)

		cacheRepo, err = redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			appLogger.Fatal("Failed to initialize CacheRepo", "error", err)
		}
	} else {
		cacheRepo = memoryRepo.NewCacheRepo()
	}

	// Сервисы викторины
	loader := service.NewQuizLoader(cfg.Quiz, &http.Client{}, cacheRepo, appLogger)
	session := service.NewQuizSession(quizengine.NewEngine(), loader, appLogger)

	// WebSocket
	wsHub := ws.NewHub(appLogger)
	go wsHub.Run(ctx)
	wsManager := ws.NewManager(wsHub, appLogger)

	// Обработчики
	quizHandler := handler.NewQuizHandler(session, cfg.Quiz.MaxUploadBytes, appLogger)
	wsHandler := handler.NewWSHandler(session, wsHub, wsManager, cfg.Server.AllowedOrigins, cfg.Quiz.MaxUploadBytes, appLogger)
	healthHandler := handler.NewHealthHandler(session, wsManager, redisClient)

	var uploadMiddleware []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(redisClient, appLogger)
		uploadMiddleware = append(uploadMiddleware,
			limiter.Limit(middleware.UploadRateLimitConfig(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())))
		appLogger.Info("Upload rate limiting enabled", "max_requests", cfg.RateLimit.MaxRequests, "window", cfg.RateLimit.Window())
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(appLogger))

	// В release-режиме не доверяем прокси-заголовкам (защита от IP spoofing)
	trustedProxies := []string{"127.0.0.1", "::1"}
	if gin.Mode() == gin.ReleaseMode {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		appLogger.Warn("Failed to set trusted proxies", "error", err)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}))

	// Фронтенд викторины
	if cfg.Server.StaticDir != "" {
		router.StaticFS("/app", http.Dir(cfg.Server.StaticDir))
		router.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/app/")
		})
	}

	api := router.Group("/api")
	quizHandler.RegisterRoutes(api, uploadMiddleware...)

	router.GET("/ws", wsHandler.HandleConnection)
	router.GET("/health", healthHandler.Health)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	// Останавливаем рассылку до закрытия соединений
	wsHandler.Close()
	cancel()
	wsHub.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			appLogger.Warn("Error closing Redis client", "error", err)
		}
	}

	appLogger.Info("Server exited properly")
}

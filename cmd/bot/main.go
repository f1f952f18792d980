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

	"github.com/yourusername/trivia-bot/internal/config"
	"github.com/yourusername/trivia-bot/internal/handler"
	pgRepo "github.com/yourusername/trivia-bot/internal/repository/postgres"
	redisRepo "github.com/yourusername/trivia-bot/internal/repository/redis"
	"github.com/yourusername/trivia-bot/internal/service"
	"github.com/yourusername/trivia-bot/internal/service/gamemanager"
	"github.com/yourusername/trivia-bot/internal/telegram"
	"github.com/yourusername/trivia-bot/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	gameRepo := pgRepo.NewGameRepo(db)
	userRepo := pgRepo.NewUserRepo(db)
	playerRepo := pgRepo.NewPlayerRepo(db)
	themeRepo := pgRepo.NewThemeRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	roundRepo := pgRepo.NewRoundRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Проверяем пригодность каталога до запуска игрового цикла:
	// слишком маленький каталог — ошибка конфигурации, а не рантайма
	catalogService := service.NewCatalogService(themeRepo, questionRepo)
	if err := catalogService.Validate(); err != nil {
		log.Printf("Catalog validation failed: %v", err)
		os.Exit(1)
	}

	// Клиент Telegram Bot API
	tgClient := telegram.NewClient(cfg.Telegram.APIURL, cfg.Telegram.Token, cfg.Telegram.PollTimeoutSec)

	// Конфигурация и зависимости игрового ядра
	gameConfig := &gamemanager.Config{
		MinPlayers:      cfg.Game.MinPlayers,
		RecruitWindow:   cfg.Game.RecruitWindow(),
		ThemeWindow:     cfg.Game.ThemeWindow(),
		AnswerWindow:    cfg.Game.AnswerWindow(),
		Rounds:          cfg.Game.Rounds,
		ThemeRetryLimit: cfg.Game.ThemeRetryLimit,
	}
	gameDeps := &gamemanager.Dependencies{
		GameRepo:     gameRepo,
		UserRepo:     userRepo,
		PlayerRepo:   playerRepo,
		ThemeRepo:    themeRepo,
		QuestionRepo: questionRepo,
		RoundRepo:    roundRepo,
		Sender:       tgClient,
	}

	gameManager := service.NewGameManager(gameConfig, gameDeps, tgClient, cacheRepo)

	// Контекст жизненного цикла: отмена останавливает игровой цикл,
	// начатый виток при этом доигрывается
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go gameManager.Run(ctx)

	// Операционный HTTP API
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	adminHandler := handler.NewAdminHandler(db, gameRepo, userRepo, themeRepo, questionRepo, roundRepo, catalogService)
	adminHandler.RegisterRoutes(router)

	port := cfg.Server.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Операционный API слушает на :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server error: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Получен сигнал завершения, останавливаемся...")

	// Останавливаем игровой цикл и дожидаемся конца текущего витка
	cancel()
	gameManager.Wait()

	// Гасим HTTP сервер
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Redis close error: %v", err)
	}
	log.Println("Остановка завершена")
}

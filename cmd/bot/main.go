package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tutormatch/internal/app"
	"tutormatch/internal/config"
	"tutormatch/internal/controller"
	"tutormatch/internal/parser"
	"tutormatch/internal/repository"
	"tutormatch/internal/service"
	"tutormatch/internal/subject"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting tutormatch bot",
		zap.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Подключаемся к базе
	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := pool.Ping(pingCtx); err != nil {
		cancel()
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	cancel()

	// Применяем миграции
	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Репозитории и сервисы
	userRepo := repository.NewUserRepository(pool)
	windowRepo := repository.NewTeacherWindowRepository(pool)
	store := service.NewPgStore(pool)

	normalizer := buildNormalizer(cfg, logger)

	userService := service.NewUserService(userRepo, logger)
	teacherService := service.NewTeacherService(windowRepo, logger)
	sessionService := service.NewSessionService(store, normalizer, cfg.Scheduling, logger)
	requestParser := parser.New(nil)

	// Телеграм-бот
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botController := controller.NewBotController(
		b,
		userService,
		sessionService,
		teacherService,
		requestParser,
		normalizer,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	// Фоновое завершение прошедших сессий
	scheduler := app.NewScheduler(sessionService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// buildNormalizer выбирает канонизацию предметов: LLM при наличии ключа,
// иначе только правила
func buildNormalizer(cfg *config.Config, logger *zap.Logger) subject.Normalizer {
	rules := subject.NewRuleNormalizer()
	if cfg.GroqAPIKey == "" {
		logger.Info("No LLM API key configured, using rule-based subject normalization")
		return rules
	}
	return subject.NewLLMNormalizer(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, rules, logger)
}

package main

import (
	"github.com/joho/godotenv"
	"github.com/simorghai/simorgh-bot/internal/ai"
	"github.com/simorghai/simorgh-bot/internal/bot"
	"github.com/simorghai/simorgh-bot/internal/quota"
	"github.com/simorghai/simorgh-bot/internal/site"
	"github.com/simorghai/simorgh-bot/pkg/config"
	"go.uber.org/zap"
)

func main() {
	// Pick up a local .env file if present
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration; the missing bot token is the only fatal gap
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize quota storage
	var store quota.Store
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory quota storage")
		store = quota.NewMemoryStore(cfg.Limits.DailyLimit)
	} else {
		logger.Info("Using PostgreSQL quota storage")
		store, err = quota.NewPostgresStore(quota.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		}, cfg.Limits.DailyLimit)
		if err != nil {
			logger.Fatal("Failed to initialize quota storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Pick the answer provider; without a key the feature degrades gracefully
	var provider ai.Provider
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIAPIKey != "" {
			provider = ai.NewOpenAIProvider(cfg.AI.OpenAIAPIKey, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Temperature, logger)
		}
	default:
		if cfg.AI.GeminiAPIKey != "" {
			provider = ai.NewGeminiProvider(cfg.AI.GeminiAPIKey, logger)
		}
	}
	if provider == nil {
		logger.Warn("AI answering is not configured, questions will get a configuration notice",
			zap.String("provider", cfg.AI.Provider))
	}
	answers := ai.NewService(provider)

	siteClient := site.NewClient(cfg.Site.SearchURL, cfg.Site.StatsURL, logger)
	if cfg.Site.SearchURL == "" {
		logger.Warn("Site search is not configured")
	}

	b, err := bot.New(cfg.Telegram.Token, store, answers, siteClient, bot.Settings{
		ChannelID:         cfg.Telegram.ChannelID,
		DailyLimit:        cfg.Limits.DailyLimit,
		MaxQuestionLength: cfg.Limits.MaxQuestionLength,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Simorgh AI bot started", zap.String("channel", cfg.Telegram.ChannelID))
	if err := b.Start(); err != nil {
		logger.Fatal("Bot error", zap.Error(err))
	}
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	AI       AIConfig       `mapstructure:"ai"`
	Site     SiteConfig     `mapstructure:"site"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Database DatabaseConfig `mapstructure:"database"`
}

type TelegramConfig struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

type AIConfig struct {
	Provider     string  `mapstructure:"provider"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string  `mapstructure:"openai_api_key"`
	Model        string  `mapstructure:"model"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
}

type SiteConfig struct {
	SearchURL string `mapstructure:"search_url"`
	StatsURL  string `mapstructure:"stats_url"`
}

type LimitsConfig struct {
	DailyLimit        int `mapstructure:"daily_limit"`
	MaxQuestionLength int `mapstructure:"max_question_length"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("telegram.channel_id", "@simorghAI")
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.max_tokens", 512)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("limits.daily_limit", 5)
	v.SetDefault("limits.max_question_length", 500)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file; the bot is env-first, so a missing file is fine
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
		config.Database.UseInMemory = false
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}
	if channel := v.GetString("CHANNEL_ID"); channel != "" {
		config.Telegram.ChannelID = channel
	}
	if provider := v.GetString("AI_PROVIDER"); provider != "" {
		config.AI.Provider = provider
	}
	if apiKey := v.GetString("GEMINI_API_KEY"); apiKey != "" {
		config.AI.GeminiAPIKey = apiKey
	}
	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAIAPIKey = apiKey
	}
	if searchURL := v.GetString("SEARCH_API_URL"); searchURL != "" {
		config.Site.SearchURL = searchURL
	}
	if statsURL := v.GetString("SITE_STATS_URL"); statsURL != "" {
		config.Site.StatsURL = statsURL
	}
	if raw := v.GetString("DAILY_LIMIT"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid DAILY_LIMIT: %q", raw)
		}
		config.Limits.DailyLimit = limit
	}
	if raw := v.GetString("MAX_QUESTION_LENGTH"); raw != "" {
		maxLen, err := strconv.Atoi(raw)
		if err != nil || maxLen <= 0 {
			return nil, fmt.Errorf("invalid MAX_QUESTION_LENGTH: %q", raw)
		}
		config.Limits.MaxQuestionLength = maxLen
	}

	if config.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not set (TELEGRAM_TOKEN)")
	}

	return &config, nil
}

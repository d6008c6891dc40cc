package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Database   DatabaseConfig   `yaml:"database"`
	OCR        OCRConfig        `yaml:"ocr"`
	Log        LogConfig        `yaml:"log"`
	Server     ServerConfig     `yaml:"server"`
	Session    SessionConfig    `yaml:"session"`
	Reminders  ReminderConfig   `yaml:"reminders"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
}

// TelegramConfig holds the bot credentials.
type TelegramConfig struct {
	Token string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	Debug bool   `yaml:"debug" env:"TELEGRAM_DEBUG" env-default:"false"`
}

// OpenAIConfig holds the language model settings.
type OpenAIConfig struct {
	APIKey  string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string        `yaml:"model"   env:"OPENAI_MODEL"   env-default:"gpt-4o-mini"`
	APIURL  string        `yaml:"api_url" env:"OPENAI_API_URL" env-default:"https://api.openai.com/v1/chat/completions"`
	Timeout time.Duration `yaml:"timeout" env:"OPENAI_TIMEOUT" env-default:"30s"`
}

// VocabularyConfig tunes bulk classification.
type VocabularyConfig struct {
	BatchSize   int `yaml:"batch_size"  env:"CLASSIFY_BATCH_SIZE"  env-default:"30"`
	Concurrency int `yaml:"concurrency" env:"CLASSIFY_CONCURRENCY" env-default:"1"`
}

// DatabaseConfig selects the storage driver.
type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DATABASE_DRIVER" env-default:"sqlite3"`
	URL    string `yaml:"url"    env:"DATABASE_URL"    env-default:"data/deutschbot.db"`
}

// OCRConfig selects the image text extraction backend.
type OCRConfig struct {
	Provider     string        `yaml:"provider"       env:"OCR_PROVIDER"   env-default:"none"`
	Endpoint     string        `yaml:"endpoint"       env:"OCR_ENDPOINT"`
	Timeout      time.Duration `yaml:"timeout"        env:"OCR_TIMEOUT"    env-default:"30s"`
	GeminiAPIKey string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	GeminiModel  string        `yaml:"gemini_model"   env:"GEMINI_MODEL"   env-default:"gemini-1.5-flash"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	Port        int    `yaml:"port"        env:"PORT"    env-default:"10000"`
	Environment string `yaml:"environment" env:"APP_ENV" env-default:"development"`
}

// SessionConfig bounds how long a multi-step conversation may stay idle.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"15m"`
}

// ReminderConfig controls the daily practice reminder.
type ReminderConfig struct {
	Enabled    bool   `yaml:"enabled"     env:"REMINDERS_ENABLED"     env-default:"false"`
	Time       string `yaml:"time"        env:"REMINDER_TIME"         env-default:"09:00"`
	ActiveDays int    `yaml:"active_days" env:"REMINDER_ACTIVE_DAYS"  env-default:"14"`
}

const (
	OCRProviderGemini = "gemini"
	OCRProviderHTTP   = "http"
	OCRProviderNone   = "none"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error

	if c.Telegram.Token == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required"))
	}
	if c.OpenAI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("openai.timeout must be > 0 (got %v)", c.OpenAI.Timeout))
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite3 or postgres (got %q)", c.Database.Driver))
	}

	if c.Vocabulary.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("vocabulary.batch_size must be > 0 (got %d)", c.Vocabulary.BatchSize))
	}
	if c.Vocabulary.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("vocabulary.concurrency must be > 0 (got %d)", c.Vocabulary.Concurrency))
	}

	c.OCR.Provider = strings.ToLower(strings.TrimSpace(c.OCR.Provider))
	switch c.OCR.Provider {
	case OCRProviderGemini:
		if c.OCR.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini OCR provider"))
		}
	case OCRProviderHTTP:
		if c.OCR.Endpoint == "" {
			errs = append(errs, errors.New("OCR_ENDPOINT is required for the http OCR provider"))
		}
	case OCRProviderNone:
	default:
		errs = append(errs, fmt.Errorf("ocr.provider must be gemini, http or none (got %q)", c.OCR.Provider))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range (got %d)", c.Server.Port))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be > 0 (got %v)", c.Session.TTL))
	}

	if c.Reminders.Enabled {
		if _, err := time.Parse("15:04", c.Reminders.Time); err != nil {
			errs = append(errs, fmt.Errorf("reminders.time must be HH:MM (got %q)", c.Reminders.Time))
		}
		if c.Reminders.ActiveDays <= 0 {
			errs = append(errs, fmt.Errorf("reminders.active_days must be > 0 (got %d)", c.Reminders.ActiveDays))
		}
	}

	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/jwebster45206/npc-engine/pkg/conversation"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel    slog.Level

	RedisURL     string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	CharacterTTL time.Duration `env:"CHARACTER_TTL" envDefault:"1h"`
	RosterPath   string        `env:"ROSTER_PATH"` // empty uses the embedded office
	WorkerID     string        `env:"WORKER_ID"`
	RandomSeed   int64         `env:"RANDOM_SEED"` // 0 seeds from the clock

	TopicShiftThreshold int           `env:"TOPIC_SHIFT_THRESHOLD" envDefault:"8"`
	EndThreshold        int           `env:"CONVERSATION_END_THRESHOLD" envDefault:"15"`
	TopicShiftChance    float64       `env:"TOPIC_SHIFT_CHANCE" envDefault:"0.3"`
	SignOffChance       float64       `env:"SIGN_OFF_CHANCE" envDefault:"0.2"`
	ConversationMaxAge  time.Duration `env:"CONVERSATION_MAX_AGE" envDefault:"1h"`

	ActionTimeout time.Duration `env:"ACTION_TIMEOUT" envDefault:"30s"`
	MaxQueueSize  int           `env:"MAX_QUEUE_SIZE" envDefault:"5"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1s"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.TopicShiftThreshold <= 0 {
		errs = append(errs, errors.New("TOPIC_SHIFT_THRESHOLD must be positive"))
	}
	if c.EndThreshold < c.TopicShiftThreshold {
		errs = append(errs, errors.New("CONVERSATION_END_THRESHOLD must not be below TOPIC_SHIFT_THRESHOLD"))
	}
	if c.TopicShiftChance < 0 || c.TopicShiftChance > 1 {
		errs = append(errs, errors.New("TOPIC_SHIFT_CHANCE must be between 0 and 1"))
	}
	if c.SignOffChance < 0 || c.SignOffChance > 1 {
		errs = append(errs, errors.New("SIGN_OFF_CHANCE must be between 0 and 1"))
	}
	if c.ActionTimeout <= 0 {
		errs = append(errs, errors.New("ACTION_TIMEOUT must be positive"))
	}
	if c.MaxQueueSize <= 0 {
		errs = append(errs, errors.New("MAX_QUEUE_SIZE must be positive"))
	}
	if c.CharacterTTL < 0 {
		errs = append(errs, errors.New("CHARACTER_TTL must not be negative"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Conversation returns the conversation thresholds.
func (c *Config) Conversation() conversation.Config {
	cc := conversation.DefaultConfig()
	cc.TopicShiftThreshold = c.TopicShiftThreshold
	cc.EndThreshold = c.EndThreshold
	cc.TopicShiftChance = c.TopicShiftChance
	cc.SignOffChance = c.SignOffChance
	return cc
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

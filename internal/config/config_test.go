package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development, got %q", cfg.Environment)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("expected info level, got %v", cfg.LogLevel)
	}
	if cfg.ActionTimeout != 30*time.Second {
		t.Errorf("expected 30s action timeout, got %v", cfg.ActionTimeout)
	}
	if cfg.Port != "8080" || cfg.CharacterTTL != time.Hour {
		t.Errorf("unexpected port %q or character ttl %v", cfg.Port, cfg.CharacterTTL)
	}
	conv := cfg.Conversation()
	if conv.TopicShiftThreshold != 8 || conv.EndThreshold != 15 {
		t.Errorf("unexpected conversation thresholds %+v", conv)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("TOPIC_SHIFT_THRESHOLD", "4")
	t.Setenv("CONVERSATION_END_THRESHOLD", "6")
	t.Setenv("ACTION_TIMEOUT", "45s")
	t.Setenv("RANDOM_SEED", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.LogLevel)
	}
	if cfg.Conversation().EndThreshold != 6 {
		t.Errorf("expected end threshold 6, got %d", cfg.Conversation().EndThreshold)
	}
	if cfg.ActionTimeout != 45*time.Second {
		t.Errorf("expected 45s, got %v", cfg.ActionTimeout)
	}
	if cfg.RandomSeed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.RandomSeed)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"end below shift", "CONVERSATION_END_THRESHOLD", "2"},
		{"chance above one", "TOPIC_SHIFT_CHANCE", "1.5"},
		{"zero queue", "MAX_QUEUE_SIZE", "0"},
		{"not a number", "MAX_QUEUE_SIZE", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q): expected %v, got %v", in, want, got)
		}
	}
}

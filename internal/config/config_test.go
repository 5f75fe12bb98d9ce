package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"STATETRACE_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("STATETRACE_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STATETRACE_DB", "STATETRACE_FORMAT", "STATETRACE_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "statetrace.db" {
		t.Errorf("DBPath = %q, want statetrace.db", cfg.DBPath)
	}
	if cfg.Format != FormatText {
		t.Errorf("Format = %q, want %q", cfg.Format, FormatText)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, slog.LevelInfo)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STATETRACE_DB", "/tmp/histories.db")
	t.Setenv("STATETRACE_FORMAT", "json")
	t.Setenv("STATETRACE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/histories.db" || cfg.Format != FormatJSON || cfg.LogLevel != slog.LevelDebug {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsFormat(t *testing.T) {
	t.Setenv("STATETRACE_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for xml format")
	}
}

func TestLoadRejectsLogLevel(t *testing.T) {
	t.Setenv("STATETRACE_LOG_LEVEL", "loud")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

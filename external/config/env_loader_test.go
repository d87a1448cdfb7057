package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Language1 != "ru" || cfg.Language2 != "en" || cfg.MaxMessages != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsuyaku.yaml")
	body := "language1: es\nlanguage2: fr\nmax_messages: 12\ntts_provider: google_cloud\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_MESSAGES", "40")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Language1 != "es" || cfg.Language2 != "fr" {
		t.Fatalf("expected languages from file, got %s/%s", cfg.Language1, cfg.Language2)
	}
	if cfg.MaxMessages != 40 {
		t.Fatalf("expected env to override file, got %d", cfg.MaxMessages)
	}
	if cfg.TTSProvider != "google_cloud" {
		t.Fatalf("unexpected provider: %s", cfg.TTSProvider)
	}
}

func TestLoad_MigratesDeprecatedModel(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ELEVENLABS_MODEL", "eleven_monolingual_v1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ElevenLabsModel != "eleven_turbo_v2" {
		t.Fatalf("expected migrated model, got %s", cfg.ElevenLabsModel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TTS_SPEED", "5")
	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

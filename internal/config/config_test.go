package config

import "testing"

func TestValidate_Default(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
}

func TestValidate_InvalidMaxMessages(t *testing.T) {
	cfg := Default()
	cfg.MaxMessages = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive max messages")
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := Default()
	cfg.TTSProvider = "espeak"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown tts provider")
	}
}

func TestValidate_SpeedRange(t *testing.T) {
	cfg := Default()
	cfg.TTSSpeed = 2.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out of range speed")
	}
}

func TestValidate_RelayNeedsToken(t *testing.T) {
	cfg := Default()
	cfg.DiscordRelayChannelID = "123"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when relay channel is set without token")
	}
}

func TestValidate_MissingRequired(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when required fields are missing")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := &Config{Env: "development"}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode")
	}
	cfg.Env = "production"
	if cfg.IsDevelopment() {
		t.Fatal("expected non-development mode")
	}
}

func TestMigrateDeprecatedModel(t *testing.T) {
	cfg := Default()
	cfg.ElevenLabsModel = "eleven_monolingual_v1"
	if !cfg.MigrateDeprecatedModel() || cfg.ElevenLabsModel != "eleven_turbo_v2" {
		t.Fatalf("expected migration to eleven_turbo_v2, got %s", cfg.ElevenLabsModel)
	}
	if cfg.MigrateDeprecatedModel() {
		t.Fatal("expected no migration for current model")
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"short":               "*****",
		"sk_1234567890abcdef": "sk_1***********cdef",
	}
	for in, want := range cases {
		if got := MaskSecret(in); got != want {
			t.Fatalf("MaskSecret(%q): expected %q, got %q", in, want, got)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", "")
	os.Setenv("LLM_BASE_URL", "")
	os.Setenv("LLM_MODEL", "")
	os.Setenv("TTS_PROVIDER", "")
	os.Setenv("TTS_MODEL", "")
	cfg := Load()
	if cfg.HTTPAddress == "" {
		t.Fatalf("expected default http address")
	}
	if cfg.LLMBaseURL == "" || cfg.LLMModel == "" {
		t.Fatalf("expected default llm endpoint and model")
	}
	if cfg.TTSProvider != "minimax" {
		t.Fatalf("expected default tts provider, got %q", cfg.TTSProvider)
	}
	if cfg.TTSModel == "" {
		t.Fatalf("expected default tts model")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", ":9999")
	os.Setenv("TTS_PROVIDER", "deepgram")
	defer os.Unsetenv("HTTP_ADDRESS")
	defer os.Unsetenv("TTS_PROVIDER")
	cfg := Load()
	if cfg.HTTPAddress != ":9999" {
		t.Fatalf("expected override, got %q", cfg.HTTPAddress)
	}
	if cfg.TTSProvider != "deepgram" {
		t.Fatalf("expected deepgram provider, got %q", cfg.TTSProvider)
	}
}

func TestLoadVoices(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "voices.yaml")
	data := "default: narrator-voice\nvoices:\n  Aoi: aoi-voice-01\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	book, err := LoadVoices(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := book.Resolve("Aoi"); got != "aoi-voice-01" {
		t.Fatalf("expected preset voice, got %q", got)
	}
	if got := book.Resolve("raw-voice-id"); got != "raw-voice-id" {
		t.Fatalf("expected pass-through, got %q", got)
	}
	if got := book.Resolve(""); got != "narrator-voice" {
		t.Fatalf("expected default voice, got %q", got)
	}
}

func TestLoadVoices_EmptyPathAndErrors(t *testing.T) {
	book, err := LoadVoices("")
	if err != nil {
		t.Fatalf("empty path should not error: %v", err)
	}
	if got := book.Resolve("anything"); got != "anything" {
		t.Fatalf("empty book should pass names through, got %q", got)
	}
	if _, err := LoadVoices(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte(":\n\t- broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVoices(bad); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

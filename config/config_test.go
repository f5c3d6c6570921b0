package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WEBASSIST_PROVIDER", "WEBASSIST_HOST", "WEBASSIST_MODEL", "WEBASSIST_DATA_DIR", "WEBASSIST_DEBUG",
		"OLLAMA_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromCreatesTemplate(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("WEBASSIST_DATA_DIR", filepath.Join(dir, "data"))
	path := filepath.Join(dir, "conf", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config perms = %o, want 600", info.Mode().Perm())
	}

	dataInfo, err := os.Stat(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
	if dataInfo.Mode().Perm() != 0700 {
		t.Errorf("data dir perms = %o, want 700", dataInfo.Mode().Perm())
	}

	if cfg.Provider.Model != "qwen3:4b" || cfg.Storage.Backend != BackendFile {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	// The template must decode to the same defaults.
	again, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("reloading template: %v", err)
	}
	if again.Provider != cfg.Provider || again.Assistant != cfg.Assistant || again.Storage != cfg.Storage {
		t.Errorf("template drifted from defaults:\n got %+v\nwant %+v", again, cfg)
	}
}

func TestLoadFromOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `data_directory = "` + filepath.Join(dir, "data") + `"

[provider]
type = "openai"
model = "gpt-4o"

[assistant]
request_timeout = "90s"
web_search_default = false

[storage]
backend = "redis"
redis_url = "redis://localhost:6379/2"
session_ttl = "24h"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEBASSIST_MODEL", "gpt-4.1-mini")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Provider.Model != "gpt-4.1-mini" {
		t.Errorf("env override ignored: model = %q", cfg.Provider.Model)
	}
	if cfg.APIKey() != "sk-test" {
		t.Errorf("APIKey() = %q", cfg.APIKey())
	}
	if cfg.Assistant.WebSearchDefault {
		t.Error("web_search_default should be false")
	}
	if cfg.Assistant.MaxToolRounds != DefaultMaxToolRounds {
		t.Errorf("unset field lost default: max_tool_rounds = %d", cfg.Assistant.MaxToolRounds)
	}
	if cfg.RequestTimeout() != 90*time.Second {
		t.Errorf("RequestTimeout() = %v", cfg.RequestTimeout())
	}
	if cfg.SessionTTL() != 24*time.Hour {
		t.Errorf("SessionTTL() = %v", cfg.SessionTTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[provider\ntype = "), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr error
	}{
		{
			name:   "defaults with cloud key",
			mutate: func(c *Config) { c.OllamaAPIKey = "k" },
		},
		{
			name:    "cloud host without key",
			mutate:  func(c *Config) {},
			field:   "api_key",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:   "local ollama needs no key",
			mutate: func(c *Config) { c.Provider.Host = "http://localhost:11434" },
		},
		{
			name:    "anthropic without key",
			mutate:  func(c *Config) { c.Provider.Type = "anthropic"; c.OllamaAPIKey = "k" },
			field:   "api_key",
			wantErr: ErrMissingAPIKey,
		},
		{
			name:    "empty model",
			mutate:  func(c *Config) { c.OllamaAPIKey = "k"; c.Provider.Model = " " },
			field:   "provider.model",
			wantErr: ErrMissingModel,
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider.Type = "gemini" },
			field:   "provider.type",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "redis without url",
			mutate:  func(c *Config) { c.OllamaAPIKey = "k"; c.Storage.Backend = BackendRedis },
			field:   "storage.redis_url",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "bad timeout",
			mutate:  func(c *Config) { c.OllamaAPIKey = "k"; c.Assistant.RequestTimeout = "soon" },
			field:   "assistant.request_timeout",
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}

			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v in chain, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("WA_TEST_DIR", "/srv/wa")

	tests := map[string]string{
		"":                      "",
		"~/data":                "/home/tester/data",
		"$WA_TEST_DIR/state":    "/srv/wa/state",
		"/tmp/../var/webassist": "/var/webassist",
	}
	for in, want := range tests {
		if got := ExpandPath(in); got != want {
			t.Errorf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitDebugLog(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEBASSIST_DEBUG", "1")
	defer func() { DebugLog = nil; Debug = false }()

	InitDebugLog(dir)
	if DebugLog == nil {
		t.Fatal("expected DebugLog to be set")
	}
	if !FileExists(filepath.Join(dir, "debug.log")) {
		t.Error("debug.log not created")
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Provider.Model = "llama3.2"
	cfg.Storage.Backend = BackendMemory
	cfg.OllamaAPIKey = "secret-key"

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config permissions = %v, want 0600", info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(data, []byte("secret-key")) {
		t.Error("API key written to config file")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Provider.Model != "llama3.2" || loaded.Storage.Backend != BackendMemory {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

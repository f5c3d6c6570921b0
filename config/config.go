package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type ProviderConfig struct {
	Type  string `toml:"type"`
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

type AssistantConfig struct {
	WebSearchDefault     bool   `toml:"web_search_default"`
	ShowReasoningDefault bool   `toml:"show_reasoning_default"`
	Think                bool   `toml:"think"`
	RequestTimeout       string `toml:"request_timeout"`
	MaxToolRounds        int    `toml:"max_tool_rounds"`
	SearchMaxResults     int    `toml:"search_max_results"`
	SystemPrompt         string `toml:"system_prompt,omitempty"`
}

type StorageConfig struct {
	Backend    string `toml:"backend"`
	RedisURL   string `toml:"redis_url"`
	SessionTTL string `toml:"session_ttl"`
	Journal    bool   `toml:"journal"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Config is the decoded config.toml plus values that only come from the
// environment.
type Config struct {
	DataDirectory string          `toml:"data_directory"`
	Provider      ProviderConfig  `toml:"provider"`
	Assistant     AssistantConfig `toml:"assistant"`
	Storage       StorageConfig   `toml:"storage"`
	Server        ServerConfig    `toml:"server"`

	OllamaAPIKey     string `toml:"-"`
	OpenAIAPIKey     string `toml:"-"`
	AnthropicAPIKey  string `toml:"-"`
	OpenRouterAPIKey string `toml:"-"`
}

const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var Debug = false
var DebugLog *log.Logger

var (
	ErrMissingModel  = errors.New("no model configured")
	ErrMissingAPIKey = errors.New("missing API key")
	ErrInvalidValue  = errors.New("invalid value")
)

// Error is a configuration fault. It is reported before any session exists
// and is fatal at startup.
type Error struct {
	Field string
	Err   error
	Hint  string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Assistant.RequestTimeout)
	if err != nil || d <= 0 {
		return DefaultRequestTimeout
	}
	return d
}

func (c *Config) SessionTTL() time.Duration {
	if c.Storage.SessionTTL == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Storage.SessionTTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch c.Provider.Type {
	case "openai":
		return c.OpenAIAPIKey
	case "openrouter":
		return c.OpenRouterAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return c.OllamaAPIKey
	}
}

// UsesOllamaCloud reports whether the Ollama provider points at ollama.com,
// which requires an API key.
func (c *Config) UsesOllamaCloud() bool {
	if c.Provider.Type != "ollama" {
		return false
	}
	u, err := url.Parse(c.Provider.Host)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "ollama.com" || strings.HasSuffix(host, ".ollama.com")
}

// WebToolsAvailable reports whether web_search and web_fetch can be offered.
// Both endpoints live on ollama.com and need an Ollama API key.
func (c *Config) WebToolsAvailable() bool {
	return c.OllamaAPIKey != ""
}

func (c *Config) applyEnvOverrides() {
	if p := os.Getenv("WEBASSIST_PROVIDER"); p != "" {
		c.Provider.Type = strings.ToLower(p)
	}
	if host := os.Getenv("WEBASSIST_HOST"); host != "" {
		c.Provider.Host = host
	}
	if model := os.Getenv("WEBASSIST_MODEL"); model != "" {
		c.Provider.Model = model
	}
	if dataDir := os.Getenv("WEBASSIST_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}

	c.OllamaAPIKey = os.Getenv("OLLAMA_API_KEY")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenRouterAPIKey = os.Getenv("OPENROUTER_API_KEY")
}

// Validate checks the settings needed before any session can start.
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case "ollama", "openai", "openrouter", "anthropic":
	default:
		return &Error{Field: "provider.type", Err: fmt.Errorf("%w: %q", ErrInvalidValue, c.Provider.Type), Hint: "use ollama, openai, openrouter or anthropic"}
	}

	if strings.TrimSpace(c.Provider.Model) == "" {
		return &Error{Field: "provider.model", Err: ErrMissingModel, Hint: "set model in config.toml or WEBASSIST_MODEL"}
	}

	if c.Provider.Type != "ollama" || c.UsesOllamaCloud() {
		if c.APIKey() == "" {
			return &Error{Field: "api_key", Err: ErrMissingAPIKey, Hint: "set " + apiKeyEnvVar(c.Provider.Type) + " in the environment or .env"}
		}
	}

	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return &Error{Field: "storage.redis_url", Err: fmt.Errorf("%w: required for the redis backend", ErrInvalidValue)}
		}
	default:
		return &Error{Field: "storage.backend", Err: fmt.Errorf("%w: %q", ErrInvalidValue, c.Storage.Backend), Hint: "use file, redis or memory"}
	}

	if c.Assistant.RequestTimeout != "" {
		if d, err := time.ParseDuration(c.Assistant.RequestTimeout); err != nil || d <= 0 {
			return &Error{Field: "assistant.request_timeout", Err: fmt.Errorf("%w: %q", ErrInvalidValue, c.Assistant.RequestTimeout)}
		}
	}
	if c.Storage.SessionTTL != "" {
		if d, err := time.ParseDuration(c.Storage.SessionTTL); err != nil || d < 0 {
			return &Error{Field: "storage.session_ttl", Err: fmt.Errorf("%w: %q", ErrInvalidValue, c.Storage.SessionTTL)}
		}
	}

	return nil
}

func apiKeyEnvVar(providerType string) string {
	switch providerType {
	case "openai":
		return "OPENAI_API_KEY"
	case "openrouter":
		return "OPENROUTER_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OLLAMA_API_KEY"
	}
}

func CheckDebug() bool {
	debug := os.Getenv("WEBASSIST_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - may contain conversation text
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (WEBASSIST_DEBUG=%s) ===", os.Getenv("WEBASSIST_DEBUG"))
	DebugLog.Printf("Log path: %s", logPath)
}

// Load reads the config file at the default location, creating it from the
// template on first run.
func Load() (*Config, error) {
	return LoadFrom(GetConfigFilePath())
}

// LoadFrom reads a config file, applies environment overrides and prepares
// the data directory.
func LoadFrom(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	return cfg, nil
}

package config

import (
	"time"

	"webassist/ollama"
)

const (
	DefaultRequestTimeout   = 60 * time.Second
	DefaultMaxToolRounds    = 5
	DefaultSearchMaxResults = 3
	DefaultServerAddr       = "127.0.0.1:8080"
)

func DefaultConfig() *Config {
	return &Config{
		DataDirectory: "~/.local/share/webassist",
		Provider: ProviderConfig{
			Type:  "ollama",
			Host:  ollama.DefaultHost,
			Model: ollama.DefaultModel,
		},
		Assistant: AssistantConfig{
			WebSearchDefault:     true,
			ShowReasoningDefault: false,
			Think:                true,
			RequestTimeout:       "60s",
			MaxToolRounds:        DefaultMaxToolRounds,
			SearchMaxResults:     DefaultSearchMaxResults,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Journal: true,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

func GenerateConfigTemplate() string {
	return `# webassist configuration
# Location: ~/.config/webassist/config.toml
# This file uses TOML format: https://toml.io
#
# API keys are never stored here. Set OLLAMA_API_KEY (also used for web
# search and fetch), OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY
# in the environment or in a .env file.

# Directory where sessions and the turn journal are stored
data_directory = "~/.local/share/webassist"

[provider]
# ollama, openai, openrouter or anthropic
type = "ollama"
host = "https://ollama.com"
model = "qwen3:4b"

[assistant]
# Initial value of the web search toggle for new sessions
web_search_default = true
# Initial value of the show reasoning toggle for new sessions
show_reasoning_default = false
# Ask thinking-capable models for their reasoning
think = true
request_timeout = "60s"
max_tool_rounds = 5
search_max_results = 3
# Appended to the system prompt (optional)
# system_prompt = "Answer concisely."

[storage]
# file, redis or memory
backend = "file"
# redis_url = "redis://localhost:6379/0"
# Expiry for sessions in redis, empty for none
session_ttl = ""
# Record per-turn statistics in journal.db
journal = true

[server]
addr = "127.0.0.1:8080"
`
}

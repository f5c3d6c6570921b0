package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"webassist/assistant"
	"webassist/config"
	"webassist/model"
	"webassist/provider"
	"webassist/server"
	"webassist/session"
	"webassist/storage"
	"webassist/tools"
	"webassist/ui"
)

const Version = "v0.1.0"

func main() {
	var (
		serve      = pflag.Bool("serve", false, "run the HTTP API instead of the terminal UI")
		addr       = pflag.String("addr", "", "listen address for --serve (default from config)")
		configPath = pflag.String("config", config.GetConfigFilePath(), "path to config.toml")
		envFile    = pflag.String("env-file", ".env", "load API keys from this file if it exists")
		check      = pflag.Bool("check", false, "validate the configuration, ping the model service and exit")
		models     = pflag.Bool("models", false, "list the models the provider offers and exit")
		exportID   = pflag.String("export", "", "write the given session as Markdown to ~/Downloads and exit")
		saveConfig = pflag.Bool("write-config", false, "write the effective configuration, env overrides included, to --config and exit")
		version    = pflag.Bool("version", false, "print version and exit")
	)
	pflag.Parse()

	if *version {
		fmt.Printf("webassist %s\n", Version)
		return
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", *envFile, err)
	}

	cfg, err := config.LoadFrom(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		reportConfigError(err, !*serve && !*check)
		os.Exit(1)
	}

	if *saveConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	config.InitDebugLog(cfg.DataDir())
	if config.DebugLog != nil {
		config.DebugLog.Printf("Provider %s at %s, model %s", cfg.Provider.Type, cfg.Provider.Host, cfg.Provider.Model)
	}

	backend, err := provider.NewProvider(provider.Config{
		Type:    provider.MapProviderIDToType(cfg.Provider.Type),
		BaseURL: cfg.Provider.Host,
		Model:   cfg.Provider.Model,
		APIKey:  cfg.APIKey(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create provider: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *check:
		os.Exit(runCheck(cfg, backend, *configPath))
	case *models:
		os.Exit(runModels(backend))
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session storage: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	if *exportID != "" {
		os.Exit(runExport(store, *exportID))
	}

	sessionCfg := session.Config{
		Responder: newResponder(cfg, backend),
		Store:     store,
		Model:     backend.GetModel(),
		Timeout:   cfg.RequestTimeout(),
	}
	if cfg.Storage.Journal {
		journal, err := storage.NewJournal(cfg.DataDir())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: turn journal disabled: %v\n", err)
		} else {
			defer journal.Close()
			sessionCfg.Journal = journal
		}
	}

	registry := session.NewRegistry(sessionCfg, session.Options{
		WebSearch:     cfg.Assistant.WebSearchDefault,
		ShowReasoning: cfg.Assistant.ShowReasoningDefault,
	})

	if *serve {
		listen := *addr
		if listen == "" {
			listen = cfg.Server.Addr
		}
		if listen == "" {
			listen = config.DefaultServerAddr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("webassist %s listening on %s\n", Version, listen)
		if err := server.New(registry, backend).ListenAndServe(ctx, listen); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runTUI(cfg, backend, registry)
}

func runTUI(cfg *config.Config, backend model.Provider, registry *session.Registry) {
	lock := storage.NewInstanceLock(cfg.DataDir())
	if err := lock.Acquire(); err != nil {
		if errors.Is(err, storage.ErrLocked) {
			showErrorModal("webassist is already running",
				fmt.Sprintf("Another instance is using %s.\n%v", cfg.DataDir(), err),
				"Close the other instance, or use --serve for shared access.")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Failed to lock data directory: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := lock.Release(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to release instance lock: %v", err)
		}
	}()

	m, err := registry.Resume(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start session: %v\n", err)
		os.Exit(1)
	}

	app := ui.NewApp(m, ui.AppInfo{
		Provider:       cfg.Provider.Type,
		Model:          backend.GetModel(),
		ToolsAvailable: cfg.WebToolsAvailable(),
		Version:        Version,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running webassist: %v\n", err)
		os.Exit(1)
	}
}

// newResponder wires the web tools only when an Ollama API key is present;
// without one every turn is answered without tools.
func newResponder(cfg *config.Config, backend model.Provider) *assistant.Service {
	opts := assistant.Options{
		SystemPrompt:  cfg.Assistant.SystemPrompt,
		Think:         cfg.Assistant.Think,
		MaxToolRounds: cfg.Assistant.MaxToolRounds,
	}
	if !cfg.WebToolsAvailable() {
		return assistant.New(backend, nil, opts)
	}
	web := tools.NewWebClient("", cfg.OllamaAPIKey)
	return assistant.New(backend, tools.NewExecutor(web, cfg.Assistant.SearchMaxResults), opts)
}

func openStore(cfg *config.Config) (session.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), func() {}, nil

	case config.BackendRedis:
		rdb, err := storage.NewRedisClient(cfg.Storage.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewRedisStore(rdb, cfg.SessionTTL())
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("redis unreachable: %w", err)
		}
		return store, func() { store.Close() }, nil

	default:
		store, err := storage.NewFileStore(cfg.DataDir())
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func runCheck(cfg *config.Config, backend model.Provider, configPath string) int {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	fmt.Printf("Config:     %s\n", configPath)
	fmt.Printf("Provider:   %s (%s)\n", cfg.Provider.Type, cfg.Provider.Host)
	fmt.Printf("Model:      %s\n", backend.GetModel())
	fmt.Printf("Storage:    %s\n", cfg.Storage.Backend)
	if cfg.WebToolsAvailable() {
		fmt.Println("Web tools:  available")
	} else {
		fmt.Println("Web tools:  unavailable (set OLLAMA_API_KEY)")
	}

	if err := backend.Ping(ctx); err != nil {
		fmt.Printf("Service:    unreachable: %s\n", model.AsFault("ping", err).Diagnostic())
		return 1
	}
	fmt.Println("Service:    ok")
	return 0
}

func runModels(backend model.Provider) int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := backend.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list models: %s\n", model.AsFault("list models", err).Diagnostic())
		return 1
	}
	for _, m := range models {
		marker := " "
		if m.Name == backend.GetModel() {
			marker = "*"
		}
		if m.Size > 0 {
			fmt.Printf("%s %-40s %6.1f GB\n", marker, m.Name, float64(m.Size)/1e9)
		} else {
			fmt.Printf("%s %s\n", marker, m.Name)
		}
	}
	return 0
}

func runExport(store session.Store, id string) int {
	snap, err := store.Load(context.Background(), id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load session %s: %v\n", id, err)
		return 1
	}
	path := storage.GenerateExportPath(snap.Name, "md", time.Now())
	if err := storage.ExportMarkdown(snap, path); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		return 1
	}
	fmt.Println(path)
	return 0
}

// reportConfigError prints the problem, or shows it in a modal when the
// terminal UI was requested.
func reportConfigError(err error, modal bool) {
	var cfgErr *config.Error
	if !modal || !errors.As(err, &cfgErr) {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return
	}
	showErrorModal("Configuration Error",
		fmt.Sprintf("%s: %v\n\nConfig file: %s", cfgErr.Field, cfgErr.Err, config.GetConfigFilePath()),
		cfgErr.Hint)
}

func showErrorModal(title, message, hint string) {
	p := tea.NewProgram(ui.NewErrorModal(title, message, hint), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	}
}

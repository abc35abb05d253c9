package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"agentone/internal/agent"
	"agentone/internal/config"
	agenterrors "agentone/internal/errors"
	"agentone/internal/llm"
	"agentone/internal/logging"
	"agentone/internal/mcp"
	"agentone/internal/observability"
	"agentone/internal/webui"
)

func newServeCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	serveCmd.Flags().String("host", "", "Bind address (overrides config)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides config)")
	serveCmd.Flags().String("model", "", "Ollama model (overrides config)")
	serveCmd.Flags().String("ollama-url", "", "Ollama base URL (overrides config)")
	_ = viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("model", serveCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("ollama_url", serveCmd.Flags().Lookup("ollama-url"))

	return serveCmd
}

func runServe() error {
	if viper.GetBool("debug") {
		logging.SetLevel(logging.DEBUG)
	}
	logger := logging.NewComponentLogger("serve")

	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	client := llm.NewRetryClient(
		llm.NewOllamaClient(cfg.Ollama.Model, llm.Config{
			BaseURL: cfg.Ollama.BaseURL,
			Timeout: cfg.Ollama.Timeout,
		}),
		agenterrors.DefaultRetryConfig(),
	)

	manager, err := buildAgents(cfg, registry, client)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go manager.RunMetricsLoop(ctx, cfg.MetricsInterval)

	server := webui.NewServer(manager, registry,
		&webui.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			EnableCORS:   cfg.Server.EnableCORS,
			Debug:        cfg.Server.Debug,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		webui.WithModelName(cfg.Ollama.Model),
		webui.WithServerLogger(logging.NewComponentLogger("webui")),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("agentone %s serving on %s:%d with model %s",
		version, cfg.Server.Host, cfg.Server.Port, cfg.Ollama.Model)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return server.Stop()
	}
}

func applyFlagOverrides(cfg *config.Config) {
	if host := viper.GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port := viper.GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	if model := viper.GetString("model"); model != "" {
		cfg.Ollama.Model = model
	}
	if url := viper.GetString("ollama_url"); url != "" {
		cfg.Ollama.BaseURL = url
	}
	if viper.GetBool("debug") {
		cfg.Server.Debug = true
	}
}

func buildRegistry(cfg *config.Config) (*mcp.Registry, error) {
	registry := mcp.NewRegistry(
		mcp.WithLogger(logging.NewComponentLogger("mcp")),
		mcp.WithCache(mcp.DefaultCacheConfig()),
	)

	for _, domain := range cfg.Domains {
		adapter, err := buildAdapter(domain)
		if err != nil {
			return nil, err
		}
		rec := mcp.DomainRecord{
			ID:       domain.ID,
			Name:     domain.Name,
			Priority: domain.Priority,
			Status:   mcp.StatusActive,
			Adapter:  adapter,
		}
		if err := registry.Register(rec); err != nil {
			return nil, fmt.Errorf("register domain %s: %w", domain.ID, err)
		}
	}
	return registry, nil
}

func buildAdapter(domain config.DomainConfig) (mcp.Adapter, error) {
	switch domain.Kind {
	case config.DomainKindWikipedia:
		var opts []mcp.WikipediaOption
		if domain.BaseURL != "" {
			opts = append(opts, mcp.WithWikipediaBaseURL(domain.BaseURL))
		}
		return mcp.NewWikipediaAdapter(opts...), nil
	case config.DomainKindArxiv:
		var opts []mcp.ArxivOption
		if domain.BaseURL != "" {
			opts = append(opts, mcp.WithArxivBaseURL(domain.BaseURL))
		}
		return mcp.NewArxivAdapter(opts...), nil
	default:
		return nil, fmt.Errorf("domain %s: unknown kind %q", domain.ID, domain.Kind)
	}
}

func buildAgents(cfg *config.Config, registry *mcp.Registry, client llm.Client) (*agent.Manager, error) {
	runtimes := make([]*agent.Runtime, 0, len(agent.Variants))
	for _, variant := range agent.Variants {
		policy, err := agent.PolicyFor(variant)
		if err != nil {
			return nil, err
		}
		if override := cfg.OverrideFor(variant); override != nil {
			policy.DefaultConfig = *override
		}

		runtime, err := agent.NewRuntime(string(variant), policy, registry, client,
			agent.WithCompletionTimeout(cfg.CompletionTimeout),
			agent.WithRuntimeLogger(logging.NewComponentLogger("agent."+string(variant))),
			agent.WithHistoryLimit(cfg.HistoryLimit),
			agent.WithMetrics(observability.Default()),
		)
		if err != nil {
			return nil, fmt.Errorf("create agent %s: %w", variant, err)
		}
		runtimes = append(runtimes, runtime)
	}
	return agent.NewManager(runtimes...), nil
}

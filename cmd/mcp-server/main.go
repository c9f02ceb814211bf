package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"nlb-mcp/internal/config"
	"nlb-mcp/internal/logging"
	mcpserver "nlb-mcp/internal/mcp/server"
	"nlb-mcp/internal/service"
)

// flagBindings maps command-line flags onto the environment keys Load reads,
// so a flag wins over the variable of the same meaning.
var flagBindings = map[string]string{
	"transport": config.EnvTransport,
	"host":      config.EnvHost,
	"port":      config.EnvPort,
	"log-level": config.EnvLogLevel,
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath, envFile string

	cmd := &cobra.Command{
		Use:   "nlb-mcp-server",
		Short: "MCP server for the NLB library catalogue",
		Long: `MCP server exposing the National Library Board catalogue as tools.

Tools: health_check, search_titles, search_titles_advanced,
availability_by_title, availability_at_branch, list_branches.

Credentials are read from NLB_API_KEY and NLB_APP_CODE (or a .env file).

Examples:
  # Serve over stdio for a desktop MCP client
  nlb-mcp-server

  # Serve over SSE on port 8090
  nlb-mcp-server --transport sse --port 8090`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.LoadOptions{ConfigPath: configPath, EnvFile: envFile, Viper: v})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to YAML or JSON configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "environment file to load")
	flags.String("transport", "stdio", "transport type (stdio, sse)")
	flags.String("host", "localhost", "listen host for sse transport")
	flags.Int("port", config.DefaultConfig().MCPServer.Transport.Port, "listen port for sse transport")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	for name, key := range flagBindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
	return cmd
}

func serve(ctx context.Context, opts config.LoadOptions) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	svc, err := service.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	serverConfig := mcpserver.NewConfigFromUnified(cfg)
	mcpServer, _, err := mcpserver.New(serverConfig, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info("starting MCP server",
		logging.String("name", serverConfig.Name),
		logging.String("version", serverConfig.Version),
		logging.String("transport", serverConfig.Transport.Type),
		logging.String("base_url", cfg.Catalogue.BaseURL),
	)

	transport := mcpserver.NewTransportManager(serverConfig, mcpServer, logger)
	if err := transport.StartTransport(ctx); err != nil {
		logger.Error("transport stopped", err)
		return err
	}

	logger.Info("MCP server shutdown complete")
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

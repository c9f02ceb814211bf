package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"nlb-mcp/internal/logging"
)

// TransportManager manages different transport types for MCP communication
type TransportManager struct {
	config *Config
	server *server.MCPServer
	logger logging.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewTransportManager creates a new transport manager
func NewTransportManager(config *Config, mcpServer *server.MCPServer, logger logging.Logger) *TransportManager {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &TransportManager{
		config: config,
		server: mcpServer,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
}

// StartTransport serves the configured transport until ctx is cancelled or
// the peer goes away.
func (tm *TransportManager) StartTransport(ctx context.Context) error {
	switch tm.config.Transport.Type {
	case "stdio", "":
		return tm.startStdioTransport(ctx)
	case "sse":
		return tm.startSSETransport(ctx)
	default:
		return fmt.Errorf("unsupported transport type: %s", tm.config.Transport.Type)
	}
}

// startStdioTransport speaks JSON-RPC over stdin/stdout
func (tm *TransportManager) startStdioTransport(ctx context.Context) error {
	stdio := server.NewStdioServer(tm.server)
	stdio.SetErrorLogger(stdlog.New(io.Discard, "", 0))

	tm.logger.Info("serving MCP over stdio")
	err := stdio.Listen(ctx, tm.stdin, tm.stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	return nil
}

// startSSETransport serves the SSE endpoints on host:port and shuts down
// gracefully when ctx is cancelled
func (tm *TransportManager) startSSETransport(ctx context.Context) error {
	addr := tm.config.Transport.Addr()
	sse := server.NewSSEServer(tm.server, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()
	tm.logger.Info("serving MCP over SSE", logging.String("addr", addr))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("sse transport failed on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := tm.config.Transport.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tm.logger.Info("shutting down SSE transport")
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sse shutdown: %w", err)
	}
	return nil
}

// GetTransportInfo returns information about the current transport configuration
func (tm *TransportManager) GetTransportInfo() map[string]interface{} {
	info := map[string]interface{}{
		"type": tm.config.Transport.Type,
	}
	if tm.config.Transport.Type == "sse" {
		info["host"] = tm.config.Transport.Host
		info["port"] = tm.config.Transport.Port
		info["sse_endpoint"] = "http://" + tm.config.Transport.Addr() + "/sse"
	}
	return info
}

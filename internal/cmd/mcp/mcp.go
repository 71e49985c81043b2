// Package mcp parses MCP command flags and serves the game tools on stdio or
// HTTP.
package mcp

import (
	"context"
	"flag"

	platformcmd "github.com/louisbranch/sho/internal/platform/cmd"
	mcpservice "github.com/louisbranch/sho/internal/services/mcp/service"
	"github.com/louisbranch/sho/internal/services/sho/bootstrap"
)

// Config holds MCP command configuration.
type Config struct {
	Table bootstrap.Config
	MCP   mcpservice.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	cfg.Table.BindFlags(fs)
	fs.StringVar(&cfg.MCP.HTTPAddr, "http-addr", cfg.MCP.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.Func("transport", "Transport type: stdio or http", func(value string) error {
		cfg.MCP.Transport = mcpservice.TransportKind(value)
		return nil
	})
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP server and blocks until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceMCP, func(ctx context.Context) error {
		runtime, err := bootstrap.Open(ctx, cfg.Table, platformcmd.ServiceMCP)
		if err != nil {
			return err
		}
		defer runtime.Close()
		return mcpservice.Run(ctx, cfg.MCP, runtime.Table)
	})
}

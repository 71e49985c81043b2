// Package server runs the HTTP observation API with the MCP tools mounted at
// /mcp.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"

	platformcmd "github.com/louisbranch/sho/internal/platform/cmd"
	"github.com/louisbranch/sho/internal/platform/timeouts"
	mcpservice "github.com/louisbranch/sho/internal/services/mcp/service"
	"github.com/louisbranch/sho/internal/services/sho/api/httpapi"
	"github.com/louisbranch/sho/internal/services/sho/bootstrap"
)

// Config holds server command configuration.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:"localhost:8080"`
	Table    bootstrap.Config
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	cfg.Table.BindFlags(fs)
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewHandler wires the observation API and the MCP tools for runtime.
func NewHandler(runtime *bootstrap.Runtime) (http.Handler, error) {
	if runtime == nil || runtime.Table == nil {
		return nil, errors.New("table is required")
	}
	mcpServer, err := mcpservice.New(runtime.Table)
	if err != nil {
		return nil, err
	}
	return httpapi.NewRouter(runtime.Table, mcpServer.Handler()), nil
}

// Run serves HTTP until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceServer, func(ctx context.Context) error {
		runtime, err := bootstrap.Open(ctx, cfg.Table, platformcmd.ServiceServer)
		if err != nil {
			return err
		}
		defer runtime.Close()

		handler, err := NewHandler(runtime)
		if err != nil {
			return err
		}
		return serve(ctx, cfg.HTTPAddr, handler)
	})
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("listening on http://%s", addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	}
}

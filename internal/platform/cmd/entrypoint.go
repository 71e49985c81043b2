// Package cmd holds the startup plumbing shared by every command: config
// loading from env and flags, and the telemetry-wrapped run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/louisbranch/sho/internal/platform/config"
	"github.com/louisbranch/sho/internal/platform/otel"
	"github.com/louisbranch/sho/internal/platform/timeouts"
)

// Service identifiers used as telemetry service names and broker client names.
const (
	ServiceMCP           = "mcp"
	ServiceServer        = "server"
	ServiceScenario      = "scenario"
	ServiceJournalExport = "journal-export"
)

// ParseConfig loads SHO_ environment defaults into cfg. Flags registered
// afterwards use the loaded values as their defaults.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry installs tracing for service, runs the loop and flushes
// spans once it returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := otel.Setup(ctx, "sho-"+service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
	}()
	return run(ctx)
}

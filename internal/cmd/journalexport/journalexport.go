// Package journalexport writes a game journal to a Parquet file.
package journalexport

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	platformcmd "github.com/louisbranch/sho/internal/platform/cmd"
	"github.com/louisbranch/sho/internal/services/sho/storage/sqlite"
	"github.com/louisbranch/sho/internal/tools/journalexport"
)

// Config holds export command configuration.
type Config struct {
	JournalPath string `env:"JOURNAL_PATH"`
	Output      string `env:"EXPORT_OUTPUT" envDefault:"journal.parquet"`
	Filter      string `env:"EXPORT_FILTER"`
	// Games is a comma separated list of game ids.
	Games    string `env:"EXPORT_GAMES"`
	Parallel int64  `env:"EXPORT_PARALLEL" envDefault:"4"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.JournalPath, "journal", cfg.JournalPath, "SQLite journal path")
	fs.StringVar(&cfg.Output, "out", cfg.Output, "Parquet output path")
	fs.StringVar(&cfg.Filter, "filter", cfg.Filter, "AIP-160 filter over journal entries")
	fs.StringVar(&cfg.Games, "games", cfg.Games, "comma separated game ids (default: all)")
	fs.Int64Var(&cfg.Parallel, "parallel", cfg.Parallel, "Parquet writer parallelism")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run exports the journal and prints a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceJournalExport, func(ctx context.Context) error {
		return export(ctx, cfg, out)
	})
}

func export(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if strings.TrimSpace(cfg.JournalPath) == "" {
		return errors.New("journal path is required")
	}

	store, err := sqlite.Open(ctx, cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	written, err := journalexport.Export(ctx, store, cfg.Output, journalexport.Options{
		GameIDs:  splitGames(cfg.Games),
		Filter:   cfg.Filter,
		Parallel: cfg.Parallel,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d entries to %s\n", written, cfg.Output)
	return nil
}

func splitGames(value string) []string {
	var games []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			games = append(games, part)
		}
	}
	return games
}

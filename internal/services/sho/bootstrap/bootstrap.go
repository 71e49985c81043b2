// Package bootstrap builds a game table and its sinks from command
// configuration.
package bootstrap

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/louisbranch/sho/internal/services/sho/app"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
	"github.com/louisbranch/sho/internal/services/sho/notify"
	"github.com/louisbranch/sho/internal/services/sho/storage/sqlite"
)

// Config selects the table's sinks and defaults.
type Config struct {
	// JournalPath is the SQLite journal file. No journal is kept when empty.
	JournalPath string `env:"JOURNAL_PATH"`
	// NATSURL enables broker events when set.
	NATSURL   string `env:"NATS_URL"`
	Locale    string `env:"LOCALE"     envDefault:"en-US"`
	NinerMode bool   `env:"NINER_MODE"`
}

// BindFlags registers flag overrides for cfg on fs.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.JournalPath, "journal", c.JournalPath, "SQLite journal path (empty disables the journal)")
	fs.StringVar(&c.NATSURL, "nats-url", c.NATSURL, "NATS URL for game events (empty disables publishing)")
	fs.StringVar(&c.Locale, "locale", c.Locale, "locale for alert messages")
	fs.BoolVar(&c.NinerMode, "niner", c.NinerMode, "enable niner mode for every new game")
}

// Runtime owns a table and the sinks it writes to.
type Runtime struct {
	Table   *app.Table
	closers []func() error
}

// Open builds the table described by cfg. service names the broker
// connection.
func Open(ctx context.Context, cfg Config, service string) (*Runtime, error) {
	runtime := &Runtime{}
	tableCfg := app.Config{
		Locale:   cfg.Locale,
		Defaults: engine.Options{NinerMode: cfg.NinerMode},
	}

	if path := strings.TrimSpace(cfg.JournalPath); path != "" {
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		runtime.closers = append(runtime.closers, store.Close)
		tableCfg.Journal = store
		log.Printf("journal at %s", path)
	}

	if url := strings.TrimSpace(cfg.NATSURL); url != "" {
		publisher, err := notify.ConnectNATS(notify.NATSConfig{URL: url, Name: "sho-" + service})
		if err != nil {
			_ = runtime.Close()
			return nil, err
		}
		runtime.closers = append(runtime.closers, publisher.Close)
		tableCfg.Publisher = publisher
		log.Printf("publishing game events to %s", url)
	}

	runtime.Table = app.NewTable(tableCfg)
	return runtime, nil
}

// Close releases the sinks in reverse order of opening.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/sho/internal/platform/timeouts"
	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/nats-io/nats.go"
)

// natsConn is the slice of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSConfig configures the broker connection.
type NATSConfig struct {
	URL  string
	Name string
	// FlushTimeout bounds the final flush on Close.
	FlushTimeout time.Duration
}

// NATS publishes entries as JSON on the entry's game subject.
type NATS struct {
	conn         natsConn
	flushTimeout time.Duration
}

// ConnectNATS dials the broker with reconnect settings.
func ConnectNATS(cfg NATSConfig) (*NATS, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		url = nats.DefaultURL
	}
	name := cfg.Name
	if name == "" {
		name = "sho"
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.Timeout(10*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(5),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return newNATS(conn, cfg.FlushTimeout), nil
}

func newNATS(conn natsConn, flushTimeout time.Duration) *NATS {
	if flushTimeout <= 0 {
		flushTimeout = timeouts.BrokerFlush
	}
	return &NATS{conn: conn, flushTimeout: flushTimeout}
}

// Publish implements Publisher.
func (n *NATS) Publish(ctx context.Context, entry storage.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	subject := Subject(entry.GameID, entry.Kind)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (n *NATS) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	err := n.conn.FlushTimeout(n.flushTimeout)
	n.conn.Close()
	if err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}

// Package notify broadcasts journal entries to observers over a broker.
package notify

import (
	"context"
	"strings"
	"sync"

	"github.com/louisbranch/sho/internal/services/sho/storage"
)

// SubjectPrefix roots every game subject.
const SubjectPrefix = "sho.games"

// Publisher sends one entry to observers.
type Publisher interface {
	Publish(ctx context.Context, entry storage.Entry) error
	Close() error
}

// Subject returns the broker subject for an entry: sho.games.<game>.<kind>.
// Dots and wildcards in the game id are replaced so the id stays one token.
func Subject(gameID string, kind storage.Kind) string {
	token := strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(gameID)
	return SubjectPrefix + "." + token + "." + string(kind)
}

// Nop discards every entry.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, storage.Entry) error { return nil }

// Close implements Publisher.
func (Nop) Close() error { return nil }

// Memory keeps published entries in order. It backs tests and the scenario
// runner's verbose output.
type Memory struct {
	mu      sync.Mutex
	entries []storage.Entry
}

// Publish implements Publisher.
func (m *Memory) Publish(_ context.Context, entry storage.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Close implements Publisher.
func (m *Memory) Close() error { return nil }

// Entries returns a copy of what was published.
func (m *Memory) Entries() []storage.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storage.Entry(nil), m.entries...)
}

// Kinds returns the kinds published, in order.
func (m *Memory) Kinds() []storage.Kind {
	entries := m.Entries()
	kinds := make([]storage.Kind, 0, len(entries))
	for _, entry := range entries {
		kinds = append(kinds, entry.Kind)
	}
	return kinds
}

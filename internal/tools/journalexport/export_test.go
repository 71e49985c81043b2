package journalexport

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/louisbranch/sho/internal/services/sho/storage/sqlite"
)

func seedJournal(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []storage.Entry{
		{GameID: "a", Kind: storage.KindStarted, Seat: 1, Turn: 1, Phase: "ROLLING", At: at},
		{GameID: "a", Kind: storage.KindRolled, Seat: 1, Turn: 1, Die1: 3, Die2: 4, Pool: []int{7}, Phase: "MOVING", At: at},
		{GameID: "a", Kind: storage.KindMoved, Seat: 1, Turn: 1, Source: 0, Target: 7, MoveType: "PLACE", Phase: "ROLLING", At: at},
		{GameID: "b", Kind: storage.KindStarted, Seat: 1, Turn: 1, Phase: "ROLLING", At: at},
	}
	for _, entry := range entries {
		if _, err := store.Append(ctx, entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func TestExportWritesEveryGame(t *testing.T) {
	store := seedJournal(t)
	path := filepath.Join(t.TempDir(), "journal.parquet")

	written, err := Export(context.Background(), store, path, Options{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if written != 4 {
		t.Fatalf("written = %d, want 4", written)
	}

	records, err := ReadFile(path, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4", len(records))
	}
	rolled := records[1]
	if rolled.GameID != "a" || rolled.Seq != 2 || rolled.Kind != "rolled" || rolled.Die1 != 3 || rolled.Die2 != 4 {
		t.Fatalf("rolled record = %+v", rolled)
	}
	if len(rolled.Pool) != 1 || rolled.Pool[0] != 7 {
		t.Fatalf("rolled pool = %v", rolled.Pool)
	}
	if !rolled.At().Equal(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("at = %s", rolled.At())
	}
	if records[3].GameID != "b" {
		t.Fatalf("last record game = %q, want b", records[3].GameID)
	}
}

func TestExportFiltersAndSelectsGames(t *testing.T) {
	store := seedJournal(t)
	path := filepath.Join(t.TempDir(), "moves.parquet")

	written, err := Export(context.Background(), store, path, Options{
		GameIDs: []string{"a"},
		Filter:  `kind = "moved"`,
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if written != 1 {
		t.Fatalf("written = %d, want 1", written)
	}
	records, err := ReadFile(path, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 1 || records[0].MoveType != "PLACE" || records[0].Target != 7 {
		t.Fatalf("records = %+v", records)
	}
}

func TestExportErrors(t *testing.T) {
	store := seedJournal(t)
	dir := t.TempDir()

	if _, err := Export(context.Background(), nil, filepath.Join(dir, "x.parquet"), Options{}); err == nil {
		t.Fatal("expected error without journal")
	}
	if _, err := Export(context.Background(), store, "", Options{}); err == nil {
		t.Fatal("expected error without path")
	}
	if _, err := Export(context.Background(), store, filepath.Join(dir, "bad.parquet"), Options{Filter: "color = 3"}); err == nil {
		t.Fatal("expected error for bad filter")
	}
}

func TestNewRecordKeepsEmptyPool(t *testing.T) {
	record := NewRecord(storage.Entry{GameID: "g", Kind: storage.KindSkipped})
	if record.Pool == nil || len(record.Pool) != 0 {
		t.Fatalf("pool = %#v, want empty", record.Pool)
	}
}

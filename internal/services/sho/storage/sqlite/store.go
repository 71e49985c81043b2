package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/platform/id"
	"github.com/louisbranch/sho/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/louisbranch/sho/internal/services/sho/storage/filter"
	"github.com/louisbranch/sho/internal/services/sho/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Store is the SQLite journal.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Journal = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source for entries without one.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens the journal at path and applies pending migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	// Appends read MAX(seq) before inserting, so write transactions must take
	// the write lock up front or concurrent games hit SQLITE_BUSY_SNAPSHOT.
	dsn := filepath.Clean(path) + "?_txlock=immediate&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.JournalFS, "journal"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Close closes the database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Append stores entry with the next sequence for its game.
func (s *Store) Append(ctx context.Context, entry storage.Entry) (storage.Entry, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Entry{}, apperrors.New(apperrors.CodeJournalUnavailable, "journal store is not configured")
	}
	if strings.TrimSpace(entry.GameID) == "" {
		return storage.Entry{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "game id is required", map[string]string{"Field": "game_id"})
	}
	if entry.ID == "" {
		entryID, err := id.NewID()
		if err != nil {
			return storage.Entry{}, err
		}
		entry.ID = entryID
	}
	if entry.At.IsZero() {
		entry.At = s.now()
	}
	entry.At = entry.At.UTC().Truncate(time.Millisecond)

	pool, err := json.Marshal(poolOrEmpty(entry.Pool))
	if err != nil {
		return storage.Entry{}, fmt.Errorf("encode pool: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("begin append: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM entries WHERE game_id = ?",
		entry.GameID,
	).Scan(&entry.Seq); err != nil {
		return storage.Entry{}, fmt.Errorf("next seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO entries (
    id, game_id, seq, kind, seat, turn, die1, die2, source, target,
    move_type, pool_json, phase, code, detail, at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.GameID, entry.Seq, string(entry.Kind), entry.Seat, entry.Turn,
		entry.Die1, entry.Die2, entry.Source, entry.Target,
		entry.MoveType, string(pool), entry.Phase, entry.Code, entry.Detail, toMillis(entry.At),
	); err != nil {
		return storage.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Entry{}, fmt.Errorf("commit append: %w", err)
	}
	return entry, nil
}

// ListEntries returns one page of a game's entries in sequence order.
func (s *Store) ListEntries(ctx context.Context, req storage.ListRequest) (storage.Page, error) {
	if s == nil || s.sqlDB == nil {
		return storage.Page{}, apperrors.New(apperrors.CodeJournalUnavailable, "journal store is not configured")
	}
	if strings.TrimSpace(req.GameID) == "" {
		return storage.Page{}, apperrors.WithMetadata(apperrors.CodeInvalidArgument, "game id is required", map[string]string{"Field": "game_id"})
	}
	cond, err := filter.Parse(req.Filter)
	if err != nil {
		return storage.Page{}, err
	}
	afterSeq, err := storage.DecodePageToken(req.PageToken, req.Filter)
	if err != nil {
		return storage.Page{}, err
	}

	plan := buildListEntriesPlan(req.GameID, afterSeq, storage.ClampPageSize(req.PageSize), cond)

	var total int
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE "+plan.countWhereClause,
		plan.countParams...,
	).Scan(&total); err != nil {
		return storage.Page{}, fmt.Errorf("count entries: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `SELECT
    id, game_id, seq, kind, seat, turn, die1, die2, source, target,
    move_type, pool_json, phase, code, detail, at_ms
FROM entries WHERE `+plan.whereClause+" ORDER BY seq ASC "+plan.limitClause,
		plan.params...,
	)
	if err != nil {
		return storage.Page{}, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]storage.Entry, 0, plan.pageSize)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return storage.Page{}, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return storage.Page{}, fmt.Errorf("read entries: %w", err)
	}

	page := storage.Page{TotalSize: total}
	if len(entries) > plan.pageSize {
		entries = entries[:plan.pageSize]
		token, err := storage.EncodePageToken(entries[len(entries)-1].Seq, req.Filter)
		if err != nil {
			return storage.Page{}, err
		}
		page.NextPageToken = token
	}
	page.Entries = entries
	return page, nil
}

// ListGames returns game ids in order of their first entry.
func (s *Store) ListGames(ctx context.Context) ([]string, error) {
	if s == nil || s.sqlDB == nil {
		return nil, apperrors.New(apperrors.CodeJournalUnavailable, "journal store is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT game_id FROM entries GROUP BY game_id ORDER BY MIN(at_ms), game_id")
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []string
	for rows.Next() {
		var gameID string
		if err := rows.Scan(&gameID); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, gameID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read games: %w", err)
	}
	return games, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (storage.Entry, error) {
	var (
		entry    storage.Entry
		kind     string
		poolJSON string
		atMillis int64
	)
	if err := row.Scan(
		&entry.ID, &entry.GameID, &entry.Seq, &kind, &entry.Seat, &entry.Turn,
		&entry.Die1, &entry.Die2, &entry.Source, &entry.Target,
		&entry.MoveType, &poolJSON, &entry.Phase, &entry.Code, &entry.Detail, &atMillis,
	); err != nil {
		return storage.Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	entry.Kind = storage.Kind(kind)
	entry.At = fromMillis(atMillis)
	if err := json.Unmarshal([]byte(poolJSON), &entry.Pool); err != nil {
		return storage.Entry{}, fmt.Errorf("decode pool for entry %s: %w", entry.ID, err)
	}
	if len(entry.Pool) == 0 {
		entry.Pool = nil
	}
	return entry, nil
}

func poolOrEmpty(pool []int) []int {
	if pool == nil {
		return []int{}
	}
	return pool
}

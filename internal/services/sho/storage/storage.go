// Package storage defines the game journal contract.
//
// The journal is an append-only observation log of what happened at each
// table: rolls, moves, skips, rejections and wins. It is not a save format;
// games are never rebuilt from it.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Kind names one journal entry type.
type Kind string

const (
	KindStarted  Kind = "started"
	KindRolled   Kind = "rolled"
	KindPaRa     Kind = "pa_ra"
	KindMoved    Kind = "moved"
	KindSkipped  Kind = "skipped"
	KindRejected Kind = "rejected"
	KindWon      Kind = "won"
)

// Kinds lists every entry kind in lifecycle order.
func Kinds() []Kind {
	return []Kind{KindStarted, KindRolled, KindPaRa, KindMoved, KindSkipped, KindRejected, KindWon}
}

// Entry is one journal line.
type Entry struct {
	ID     string `json:"id"`
	GameID string `json:"game_id"`
	// Seq is assigned by the journal, starting at 1 for each game.
	Seq      int64     `json:"seq"`
	Kind     Kind      `json:"kind"`
	Seat     int       `json:"seat"`
	Turn     int       `json:"turn"`
	Die1     int       `json:"die1,omitempty"`
	Die2     int       `json:"die2,omitempty"`
	Source   int       `json:"source,omitempty"`
	Target   int       `json:"target,omitempty"`
	MoveType string    `json:"move_type,omitempty"`
	Pool     []int     `json:"pool,omitempty"`
	Phase    string    `json:"phase"`
	Code     string    `json:"code,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// ListRequest selects one page of a game's entries.
type ListRequest struct {
	GameID string
	// Filter is an AIP-160 expression over the journal fields.
	Filter    string
	PageSize  int
	PageToken string
}

// Page is one page of entries in ascending sequence order.
type Page struct {
	Entries       []Entry `json:"entries"`
	NextPageToken string  `json:"next_page_token,omitempty"`
	TotalSize     int     `json:"total_size"`
}

// Journal records and lists entries.
type Journal interface {
	// Append stores entry and returns it with its sequence assigned.
	Append(ctx context.Context, entry Entry) (Entry, error)
	// ListEntries returns one filtered page for a game.
	ListEntries(ctx context.Context, req ListRequest) (Page, error)
	// ListGames returns the ids of every game with at least one entry.
	ListGames(ctx context.Context) ([]string, error)
	Close() error
}

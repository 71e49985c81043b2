package domain

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// JournalListInput represents the MCP tool input for listing journal entries.
type JournalListInput struct {
	GameID    string `json:"game_id" jsonschema:"game identifier"`
	Filter    string `json:"filter,omitempty" jsonschema:"AIP-160 filter, for example kind = \"moved\" AND seat = 1"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum entries to return (default 50, max 500)"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// JournalEntryResult is one journal entry.
type JournalEntryResult struct {
	Seq      int64  `json:"seq" jsonschema:"sequence number within the game"`
	Kind     string `json:"kind" jsonschema:"entry kind"`
	Seat     int    `json:"seat" jsonschema:"seat the entry concerns"`
	Turn     int    `json:"turn" jsonschema:"turn number"`
	Die1     int    `json:"die1,omitempty" jsonschema:"first die for rolls"`
	Die2     int    `json:"die2,omitempty" jsonschema:"second die for rolls"`
	Source   int    `json:"source,omitempty" jsonschema:"move source"`
	Target   int    `json:"target,omitempty" jsonschema:"move target"`
	MoveType string `json:"move_type,omitempty" jsonschema:"move type"`
	Pool     []int  `json:"pool" jsonschema:"pool after the entry"`
	Phase    string `json:"phase" jsonschema:"phase after the entry"`
	Code     string `json:"code,omitempty" jsonschema:"rejection code"`
	Detail   string `json:"detail,omitempty" jsonschema:"rejection detail"`
	At       string `json:"at" jsonschema:"RFC3339 timestamp"`
}

// JournalListResult represents the MCP tool output for journal listings.
type JournalListResult struct {
	Entries       []JournalEntryResult `json:"entries" jsonschema:"entries in sequence order"`
	NextPageToken string               `json:"next_page_token,omitempty" jsonschema:"token for the next page"`
	TotalSize     int                  `json:"total_size" jsonschema:"entries matching the filter"`
}

// JournalListTool defines the MCP tool schema for listing journal entries.
func JournalListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "journal_list",
		Description: "Lists a game's recorded rolls, moves and rejections",
	}
}

// JournalListHandler executes a journal list request.
func JournalListHandler(table Table) mcp.ToolHandlerFor[JournalListInput, JournalListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input JournalListInput) (*mcp.CallToolResult, JournalListResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, JournalListResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, JournalListResult{}, err
		}
		journal := table.Journal()
		if journal == nil {
			return nil, JournalListResult{}, toolError("journal list", apperrors.New(apperrors.CodeJournalUnavailable, "journal is not configured"))
		}
		page, err := journal.ListEntries(ctx, storage.ListRequest{
			GameID:    gameID,
			Filter:    input.Filter,
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
		})
		if err != nil {
			return nil, JournalListResult{}, toolError("journal list", err)
		}

		result := JournalListResult{
			Entries:       make([]JournalEntryResult, 0, len(page.Entries)),
			NextPageToken: page.NextPageToken,
			TotalSize:     page.TotalSize,
		}
		for _, entry := range page.Entries {
			result.Entries = append(result.Entries, journalEntryResult(entry))
		}
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

func journalEntryResult(entry storage.Entry) JournalEntryResult {
	pool := entry.Pool
	if pool == nil {
		pool = []int{}
	}
	return JournalEntryResult{
		Seq:      entry.Seq,
		Kind:     string(entry.Kind),
		Seat:     entry.Seat,
		Turn:     entry.Turn,
		Die1:     entry.Die1,
		Die2:     entry.Die2,
		Source:   entry.Source,
		Target:   entry.Target,
		MoveType: entry.MoveType,
		Pool:     pool,
		Phase:    entry.Phase,
		Code:     entry.Code,
		Detail:   entry.Detail,
		At:       entry.At.UTC().Format(time.RFC3339Nano),
	}
}

package domain

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/sho/internal/platform/errors"
	"github.com/louisbranch/sho/internal/services/sho/app"
	"github.com/louisbranch/sho/internal/services/sho/domain/dice"
	"github.com/louisbranch/sho/internal/services/sho/domain/engine"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
	"github.com/louisbranch/sho/internal/services/sho/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Table is the game host the tools drive.
type Table interface {
	Create(ctx context.Context, opts app.CreateOptions) (app.GameView, error)
	Get(ctx context.Context, gameID string) (app.GameView, error)
	Roll(ctx context.Context, gameID string) (app.GameView, dice.Roll, error)
	Moves(ctx context.Context, gameID string) ([]rules.Move, error)
	ApplyMove(ctx context.Context, gameID string, source, target int) (app.GameView, error)
	Skip(ctx context.Context, gameID string) (app.GameView, error)
	Restart(ctx context.Context, gameID string, options engine.Options) (app.GameView, error)
	Explain(ctx context.Context, gameID string, source, target int) (rules.BlockReason, error)
	Journal() storage.Journal
}

// GameCreateInput represents the MCP tool input for starting a game.
type GameCreateInput struct {
	ID        string `json:"id,omitempty" jsonschema:"optional game id; generated when empty"`
	NinerMode bool   `json:"niner_mode,omitempty" jsonschema:"allow stacks of exactly nine coins"`
	Seed      *int64 `json:"seed,omitempty" jsonschema:"optional dice seed to replay a previous game"`
}

// GameIDInput represents MCP tool input addressing one game.
type GameIDInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier"`
}

// GameRestartInput represents the MCP tool input for restarting a finished game.
type GameRestartInput struct {
	GameID    string `json:"game_id" jsonschema:"game identifier"`
	NinerMode bool   `json:"niner_mode,omitempty" jsonschema:"allow stacks of exactly nine coins"`
}

// GameResult represents MCP tool output carrying a game view.
type GameResult struct {
	Game app.GameView `json:"game" jsonschema:"current game state"`
}

// DiceRollResult represents the MCP tool output for a roll.
type DiceRollResult struct {
	Die1  int          `json:"die1" jsonschema:"first die face"`
	Die2  int          `json:"die2" jsonschema:"second die face"`
	PaRa  bool         `json:"pa_ra" jsonschema:"true when both dice show one"`
	Total int          `json:"total" jsonschema:"sum of both dice"`
	Game  app.GameView `json:"game" jsonschema:"game state after the roll"`
}

// MoveResult is one legal move.
type MoveResult struct {
	Source   int    `json:"source" jsonschema:"source shell index, 0 for the hand"`
	Target   int    `json:"target" jsonschema:"target shell index"`
	Consumed []int  `json:"consumed" jsonschema:"pool values the move consumes"`
	Type     string `json:"type" jsonschema:"PLACE, STACK, KILL or FINISH"`
}

// MovesListResult represents the MCP tool output for legal moves.
type MovesListResult struct {
	Pool  []int        `json:"pool" jsonschema:"pending dice values"`
	Moves []MoveResult `json:"moves" jsonschema:"legal moves for the active seat"`
}

// MoveApplyInput represents the MCP tool input for playing a move.
type MoveApplyInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier"`
	Source int    `json:"source" jsonschema:"source shell index, 0 for the hand"`
	Target int    `json:"target" jsonschema:"target shell index"`
}

// MoveApplyResult represents the MCP tool output for a played move.
type MoveApplyResult struct {
	Move MoveResult   `json:"move" jsonschema:"the move that was played"`
	Game app.GameView `json:"game" jsonschema:"game state after the move"`
}

// GameCreateTool defines the MCP tool schema for starting a game.
func GameCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_create",
		Description: "Starts a new Sho game with seat 1 to roll",
	}
}

// GameStateTool defines the MCP tool schema for reading a game.
func GameStateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_state",
		Description: "Returns the board, pool and coin counts of a game",
	}
}

// GameRestartTool defines the MCP tool schema for restarting a finished game.
func GameRestartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "game_restart",
		Description: "Starts a finished game over with the same dice",
	}
}

// DiceRollTool defines the MCP tool schema for rolling.
func DiceRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll",
		Description: "Rolls both dice for the active seat",
	}
}

// MovesListTool defines the MCP tool schema for listing legal moves.
func MovesListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "moves_list",
		Description: "Lists the legal moves for the pending dice pool",
	}
}

// MoveApplyTool defines the MCP tool schema for playing a move.
func MoveApplyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "move_apply",
		Description: "Moves coins from a source to a target shell",
	}
}

// TurnSkipTool defines the MCP tool schema for skipping a blocked turn.
func TurnSkipTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "turn_skip",
		Description: "Passes the turn when no legal move exists",
	}
}

// GameCreateHandler executes a game create request.
func GameCreateHandler(table Table, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[GameCreateInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameCreateInput) (*mcp.CallToolResult, GameResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		view, err := table.Create(ctx, app.CreateOptions{
			ID:      strings.TrimSpace(input.ID),
			Options: engine.Options{NinerMode: input.NinerMode},
			Seed:    input.Seed,
		})
		if err != nil {
			return nil, GameResult{}, toolError("game create", err)
		}
		NotifyResourceUpdates(ctx, notify, GameURI(view.ID))
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: view.ID}
		return CallToolResultWithMetadata(meta), GameResult{Game: view}, nil
	}
}

// GameStateHandler executes a game state request.
func GameStateHandler(table Table) mcp.ToolHandlerFor[GameIDInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameIDInput) (*mcp.CallToolResult, GameResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, GameResult{}, err
		}
		view, err := table.Get(ctx, gameID)
		if err != nil {
			return nil, GameResult{}, toolError("game state", err)
		}
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), GameResult{Game: view}, nil
	}
}

// GameRestartHandler executes a game restart request.
func GameRestartHandler(table Table, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[GameRestartInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameRestartInput) (*mcp.CallToolResult, GameResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, GameResult{}, err
		}
		view, err := table.Restart(ctx, gameID, engine.Options{NinerMode: input.NinerMode})
		if err != nil {
			return nil, GameResult{}, toolError("game restart", err)
		}
		NotifyResourceUpdates(ctx, notify, GameURI(gameID))
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), GameResult{Game: view}, nil
	}
}

// DiceRollHandler executes a dice roll request.
func DiceRollHandler(table Table, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[GameIDInput, DiceRollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameIDInput) (*mcp.CallToolResult, DiceRollResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, DiceRollResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, DiceRollResult{}, err
		}
		view, roll, err := table.Roll(ctx, gameID)
		if err != nil {
			return nil, DiceRollResult{}, toolError("dice roll", err)
		}
		result := DiceRollResult{
			Die1:  roll.Die1,
			Die2:  roll.Die2,
			PaRa:  roll.IsPaRa(),
			Total: roll.Total(),
			Game:  view,
		}
		NotifyResourceUpdates(ctx, notify, GameURI(gameID))
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

// MovesListHandler executes a legal moves request.
func MovesListHandler(table Table) mcp.ToolHandlerFor[GameIDInput, MovesListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameIDInput) (*mcp.CallToolResult, MovesListResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, MovesListResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, MovesListResult{}, err
		}
		view, err := table.Get(ctx, gameID)
		if err != nil {
			return nil, MovesListResult{}, toolError("moves list", err)
		}
		moves, err := table.Moves(ctx, gameID)
		if err != nil {
			return nil, MovesListResult{}, toolError("moves list", err)
		}
		result := MovesListResult{Pool: view.Pool, Moves: make([]MoveResult, 0, len(moves))}
		for _, move := range moves {
			result.Moves = append(result.Moves, moveResult(move))
		}
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

// MoveApplyHandler executes a move request.
func MoveApplyHandler(table Table, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[MoveApplyInput, MoveApplyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input MoveApplyInput) (*mcp.CallToolResult, MoveApplyResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, MoveApplyResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, MoveApplyResult{}, err
		}
		view, err := table.ApplyMove(ctx, gameID, input.Source, input.Target)
		if err != nil {
			return nil, MoveApplyResult{}, toolError("move apply", err)
		}
		result := MoveApplyResult{Game: view}
		if view.LastMove != nil {
			result.Move = moveResult(*view.LastMove)
		}
		NotifyResourceUpdates(ctx, notify, GameURI(gameID))
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

// TurnSkipHandler executes a skip request.
func TurnSkipHandler(table Table, notify ResourceUpdateNotifier) mcp.ToolHandlerFor[GameIDInput, GameResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GameIDInput) (*mcp.CallToolResult, GameResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, GameResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, GameResult{}, err
		}
		view, err := table.Skip(ctx, gameID)
		if err != nil {
			return nil, GameResult{}, toolError("turn skip", err)
		}
		NotifyResourceUpdates(ctx, notify, GameURI(gameID))
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), GameResult{Game: view}, nil
	}
}

func moveResult(move rules.Move) MoveResult {
	consumed := append([]int{}, move.ConsumedValues...)
	return MoveResult{
		Source:   move.SourceIndex,
		Target:   move.TargetIndex,
		Consumed: consumed,
		Type:     string(move.Type),
	}
}

func requireGameID(gameID string) (string, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return "", fmt.Errorf("game_id is required")
	}
	return gameID, nil
}

// toolError keeps the machine code visible in the text MCP clients receive.
func toolError(action string, err error) error {
	code := apperrors.CodeOf(err)
	if appErr, ok := apperrors.As(err); ok {
		return fmt.Errorf("%s failed: %s: %s: %w", action, code, appErr.Localize(""), err)
	}
	return fmt.Errorf("%s failed: %w", action, err)
}

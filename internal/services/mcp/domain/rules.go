package domain

import (
	"context"
	"fmt"

	i18ncatalog "github.com/louisbranch/sho/internal/platform/i18n/catalog"
	"github.com/louisbranch/sho/internal/services/sho/domain/rules"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RulesExplainBlockInput represents the MCP tool input for explaining a move.
type RulesExplainBlockInput struct {
	GameID string `json:"game_id" jsonschema:"game identifier"`
	Source int    `json:"source" jsonschema:"source shell index, 0 for the hand"`
	Target int    `json:"target" jsonschema:"target shell index"`
	Locale string `json:"locale,omitempty" jsonschema:"locale for the explanation, for example pt-BR"`
}

// RulesExplainBlockResult represents the MCP tool output for a move explanation.
type RulesExplainBlockResult struct {
	Legal   bool   `json:"legal" jsonschema:"true when the move is legal"`
	Reason  string `json:"reason" jsonschema:"NONE, NO_SOURCE, NO_DISTANCE, STACK_TOO_SMALL or NINER_LIMIT"`
	Message string `json:"message" jsonschema:"localized explanation"`
}

// RulesExplainBlockTool defines the MCP tool schema for move explanations.
func RulesExplainBlockTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "rules_explain_block",
		Description: "Explains why a move is blocked for the active seat",
	}
}

// RulesExplainBlockHandler executes a move explanation request.
func RulesExplainBlockHandler(table Table) mcp.ToolHandlerFor[RulesExplainBlockInput, RulesExplainBlockResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RulesExplainBlockInput) (*mcp.CallToolResult, RulesExplainBlockResult, error) {
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, RulesExplainBlockResult{}, fmt.Errorf("generate invocation id: %w", err)
		}
		gameID, err := requireGameID(input.GameID)
		if err != nil {
			return nil, RulesExplainBlockResult{}, err
		}
		reason, err := table.Explain(ctx, gameID, input.Source, input.Target)
		if err != nil {
			return nil, RulesExplainBlockResult{}, toolError("rules explain", err)
		}
		bundle := i18ncatalog.Default()
		message, _ := bundle.Message(bundle.ResolveLocale(input.Locale), "game.block."+string(reason))
		result := RulesExplainBlockResult{
			Legal:   reason == rules.BlockNone,
			Reason:  string(reason),
			Message: message,
		}
		meta := ToolCallMetadata{InvocationID: invocationID, GameID: gameID}
		return CallToolResultWithMetadata(meta), result, nil
	}
}

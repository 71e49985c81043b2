package service

import (
	"fmt"

	"github.com/louisbranch/sho/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// toolBinding pairs a tool definition with its typed handler.
type toolBinding struct {
	group   string
	tool    *mcp.Tool
	handler any
}

// toolBindings lists every tool the server exposes, grouped for error reporting.
func toolBindings(table domain.Table, notify domain.ResourceUpdateNotifier) []toolBinding {
	return []toolBinding{
		{group: "game", tool: domain.GameCreateTool(), handler: domain.GameCreateHandler(table, notify)},
		{group: "game", tool: domain.GameStateTool(), handler: domain.GameStateHandler(table)},
		{group: "game", tool: domain.GameRestartTool(), handler: domain.GameRestartHandler(table, notify)},
		{group: "turn", tool: domain.DiceRollTool(), handler: domain.DiceRollHandler(table, notify)},
		{group: "turn", tool: domain.MovesListTool(), handler: domain.MovesListHandler(table)},
		{group: "turn", tool: domain.MoveApplyTool(), handler: domain.MoveApplyHandler(table, notify)},
		{group: "turn", tool: domain.TurnSkipTool(), handler: domain.TurnSkipHandler(table, notify)},
		{group: "rules", tool: domain.RulesExplainBlockTool(), handler: domain.RulesExplainBlockHandler(table)},
		{group: "journal", tool: domain.JournalListTool(), handler: domain.JournalListHandler(table)},
	}
}

// toolAdder registers one concrete ToolHandlerFor instantiation.
type toolAdder func(*mcp.Server, *mcp.Tool, any) bool

func adderFor[I any, O any]() toolAdder {
	return func(server *mcp.Server, tool *mcp.Tool, handler any) bool {
		typed, ok := handler.(mcp.ToolHandlerFor[I, O])
		if !ok {
			return false
		}
		mcp.AddTool(server, tool, typed)
		return true
	}
}

// mcp.AddTool is generic, so each input/output pair in use needs an entry.
var toolAdders = []toolAdder{
	adderFor[domain.GameCreateInput, domain.GameResult](),
	adderFor[domain.GameIDInput, domain.GameResult](),
	adderFor[domain.GameRestartInput, domain.GameResult](),
	adderFor[domain.GameIDInput, domain.DiceRollResult](),
	adderFor[domain.GameIDInput, domain.MovesListResult](),
	adderFor[domain.MoveApplyInput, domain.MoveApplyResult](),
	adderFor[domain.RulesExplainBlockInput, domain.RulesExplainBlockResult](),
	adderFor[domain.JournalListInput, domain.JournalListResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, add := range toolAdders {
		if add(server, tool, handler) {
			return nil
		}
	}
	name := "<nil>"
	if tool != nil {
		name = tool.Name
	}
	return fmt.Errorf("unsupported handler type %T for tool %q", handler, name)
}

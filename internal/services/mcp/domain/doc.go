// Package domain translates MCP tool calls into Sho table operations.
//
// Each tool maps one protocol message onto one Table call and returns a
// structured result MCP clients can render:
// - game_create, game_state and turn tools drive a hosted game,
// - moves_list and rules_explain_block inspect the pending pool,
// - journal_list pages through the recorded history.
package domain

package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const gameURIPrefix = "sho://games/"

// GameURI returns the resource URI of a game.
func GameURI(gameID string) string {
	if strings.TrimSpace(gameID) == "" {
		return ""
	}
	return gameURIPrefix + gameID
}

// GameResourceTemplate defines the readable game resource.
func GameResourceTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		Name:        "game",
		Title:       "Game",
		Description: "Readable state of one game. URI format: sho://games/{game_id}",
		MIMEType:    "application/json",
		URITemplate: "sho://games/{game_id}",
	}
}

// GameResourceHandler returns a readable single game resource.
func GameResourceHandler(table Table) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if req == nil || req.Params == nil || req.Params.URI == "" {
			return nil, fmt.Errorf("game ID is required; use URI format sho://games/{game_id}")
		}
		uri := req.Params.URI
		gameID, err := parseGameIDFromURI(uri)
		if err != nil {
			return nil, fmt.Errorf("parse game ID from URI: %w", err)
		}

		view, err := table.Get(ctx, gameID)
		if err != nil {
			return nil, toolError("get game", err)
		}
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal game: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

func parseGameIDFromURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, gameURIPrefix) {
		return "", fmt.Errorf("URI must start with %q", gameURIPrefix)
	}
	gameID := strings.TrimPrefix(uri, gameURIPrefix)
	if gameID == "" || strings.Contains(gameID, "/") {
		return "", fmt.Errorf("game ID is required in URI")
	}
	return gameID, nil
}

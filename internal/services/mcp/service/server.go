package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/louisbranch/sho/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "Sho MCP"
	serverVersion = "0.1.0"
)

// Server hosts the MCP tools and resources for one game table.
type Server struct {
	mcpServer *mcp.Server
}

// New creates an MCP server whose tools drive table.
func New(table domain.Table) (*Server, error) {
	if table == nil {
		return nil, errors.New("game table is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		SubscribeHandler:   subscribeHandler,
		UnsubscribeHandler: unsubscribeHandler,
	})

	updated := func(ctx context.Context, uri string) {
		if strings.TrimSpace(uri) == "" {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.Printf("mcp resource updated: uri=%s err=%v", uri, err)
		}
	}

	for _, binding := range toolBindings(table, updated) {
		if err := addMCPTool(mcpServer, binding.tool, binding.handler); err != nil {
			return nil, fmt.Errorf("register %s tools: %w", binding.group, err)
		}
	}
	mcpServer.AddResourceTemplate(domain.GameResourceTemplate(), domain.GameResourceHandler(table))
	return &Server{mcpServer: mcpServer}, nil
}

// Handler serves the MCP server over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

func subscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil {
		return requireResourceURI("")
	}
	return requireResourceURI(req.Params.URI)
}

func unsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil {
		return requireResourceURI("")
	}
	return requireResourceURI(req.Params.URI)
}

func requireResourceURI(uri string) error {
	if strings.TrimSpace(uri) == "" {
		return errors.New("resource uri is required")
	}
	return nil
}

// serveWithTransport runs the MCP server on transport until ctx ends.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return errors.New("mcp server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	default:
		return fmt.Errorf("serve mcp: %w", err)
	}
}

package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			"smartermcp://tenants",
			"Tenant List",
			mcplib.WithResourceDescription("All registered tenants and their subscription state"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleTenantsResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			"smartermcp://updates",
			"Release Updates",
			mcplib.WithResourceDescription("Latest upstream releases of the tracked services"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleUpdatesResource,
	)
}

func (s *Server) handleTenantsResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Tenants == nil {
		return textResource(req.Params.URI, `{"error":"tenant service not configured"}`), nil
	}
	tenants, err := s.deps.Tenants.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tenants)
	if err != nil {
		return nil, err
	}
	return textResource(req.Params.URI, string(data)), nil
}

func (s *Server) handleUpdatesResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Updates == nil {
		return textResource(req.Params.URI, `{"error":"update checker not configured"}`), nil
	}
	infos := s.deps.Updates.CheckAll(ctx)
	data, err := json.Marshal(infos)
	if err != nil {
		return nil, err
	}
	return textResource(req.Params.URI, string(data)), nil
}

func textResource(uri, text string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		},
	}
}

// Package mcp exposes the gateway's gated operations as Model Context
// Protocol tools over streamable HTTP.
package mcp

import (
	"context"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/smarterbot/smartermcp/internal/adapter/odoo"
	"github.com/smarterbot/smartermcp/internal/service"
)

// ServerConfig configures the MCP server identity.
type ServerConfig struct {
	Name    string
	Version string
	APIKey  string
}

// ServerDeps are the services MCP tools call into. Tools go through the
// same gates as the HTTP surface; nil deps disable the matching tools.
type ServerDeps struct {
	Dispatcher *service.Dispatcher
	Tenants    *service.TenantService
	TenantGate *service.TenantGate
	Updates    *service.UpdateService
	Connector  *odoo.Client
	SecretGate SecretGate
}

// SecretGate answers whether a provider's secrets are configured.
type SecretGate interface {
	HasSecrets(provider string) bool
}

// Server wraps an MCP server and its streamable HTTP transport.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
	transport *mcpserver.StreamableHTTPServer
}

// NewServer creates the MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(true, true),
		),
	}
	s.registerTools()
	s.registerResources()
	s.transport = mcpserver.NewStreamableHTTPServer(s.mcpServer)
	return s
}

// MCPServer returns the underlying MCP server, used in tests.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the streamable HTTP handler for mounting, wrapped in the
// API-key middleware when a key is configured.
func (s *Server) Handler() http.Handler {
	return AuthMiddleware(s.cfg.APIKey, s.transport)
}

// Shutdown stops the streamable HTTP transport.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.transport.Shutdown(ctx)
}

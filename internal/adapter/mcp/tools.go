package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	adodoo "github.com/smarterbot/smartermcp/internal/adapter/odoo"
	"github.com/smarterbot/smartermcp/internal/domain/action"
)

// registerTools registers all MCP tools on the server.
func (s *Server) registerTools() {
	s.mcpServer.AddTools(
		s.executeActionTool(),
		s.odooTool("odoo_search_read", adodoo.OpSearchRead,
			"Query records from an Odoo model for a tenant",
			mcplib.WithArray("domain", mcplib.Description("Odoo domain filter, e.g. [[\"active\",\"=\",true]]")),
			mcplib.WithArray("fields", mcplib.Description("Field names to return; empty for all")),
			mcplib.WithNumber("limit", mcplib.Description("Maximum records to return (default 80)")),
			mcplib.WithString("order", mcplib.Description("Sort expression, e.g. \"name asc\"")),
		),
		s.odooTool("odoo_create", adodoo.OpCreate,
			"Create a record in an Odoo model for a tenant",
			mcplib.WithObject("values", mcplib.Required(), mcplib.Description("Field values for the new record")),
		),
		s.odooTool("odoo_update", adodoo.OpUpdate,
			"Update a record in an Odoo model for a tenant",
			mcplib.WithNumber("id", mcplib.Required(), mcplib.Description("Record id to update")),
			mcplib.WithObject("values", mcplib.Required(), mcplib.Description("Field values to write")),
		),
		s.odooTool("odoo_delete", adodoo.OpDelete,
			"Delete a record from an Odoo model for a tenant",
			mcplib.WithNumber("id", mcplib.Required(), mcplib.Description("Record id to delete")),
		),
		s.odooTool("odoo_get_model_fields", adodoo.OpGetModelFields,
			"Introspect the fields of an Odoo model for a tenant",
		),
		s.checkUpdatesTool(),
		s.listTenantsTool(),
	)
}

func (s *Server) executeActionTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("execute_action",
		mcplib.WithDescription("Execute a gated provisioning action for a tenant"),
		mcplib.WithString("tenant", mcplib.Required(), mcplib.Description("Tenant name")),
		mcplib.WithString("action", mcplib.Required(), mcplib.Description("Action name, e.g. odoo.create_tenant")),
		mcplib.WithObject("context", mcplib.Description("Action parameters")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleExecuteAction}
}

func (s *Server) odooTool(name, op, description string, opts ...mcplib.ToolOption) mcpserver.ServerTool {
	base := []mcplib.ToolOption{
		mcplib.WithDescription(description),
		mcplib.WithString("tenant", mcplib.Required(), mcplib.Description("Tenant name")),
		mcplib.WithString("model", mcplib.Required(), mcplib.Description("Odoo model, e.g. res.partner")),
	}
	tool := mcplib.NewTool(name, append(base, opts...)...)
	return mcpserver.ServerTool{
		Tool: tool,
		Handler: func(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
			return s.handleOdooOperation(ctx, op, req)
		},
	}
}

func (s *Server) checkUpdatesTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("check_updates",
		mcplib.WithDescription("Check tracked services for newer upstream releases"),
		mcplib.WithString("service", mcplib.Description("Service name; omit to check all")),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleCheckUpdates}
}

func (s *Server) listTenantsTool() mcpserver.ServerTool {
	tool := mcplib.NewTool("list_tenants",
		mcplib.WithDescription("List all registered tenants"),
	)
	return mcpserver.ServerTool{Tool: tool, Handler: s.handleListTenants}
}

func (s *Server) handleExecuteAction(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Dispatcher == nil {
		return mcplib.NewToolResultError("dispatcher not configured"), nil
	}
	args := req.GetArguments()
	tenantName, _ := args["tenant"].(string)
	actionName, _ := args["action"].(string)
	if tenantName == "" || actionName == "" {
		return mcplib.NewToolResultError("tenant and action are required"), nil
	}

	var rawCtx json.RawMessage
	if c, ok := args["context"]; ok {
		data, err := json.Marshal(c)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr("invalid context", err), nil
		}
		rawCtx = data
	}

	// The envelope carries the outcome for every gate result; the error
	// return only distinguishes 404/validation at the HTTP boundary.
	res, _ := s.deps.Dispatcher.Dispatch(ctx, action.Request{
		Tenant:  tenantName,
		Action:  actionName,
		Context: rawCtx,
	})
	return marshalResult(res)
}

func (s *Server) handleOdooOperation(ctx context.Context, op string, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Connector == nil || s.deps.TenantGate == nil || s.deps.SecretGate == nil {
		return mcplib.NewToolResultError("odoo connector not configured"), nil
	}
	args := req.GetArguments()
	tenantName, _ := args["tenant"].(string)
	if tenantName == "" {
		return mcplib.NewToolResultError("tenant is required"), nil
	}

	status, err := s.deps.TenantGate.CheckActive(ctx, tenantName)
	if err != nil {
		return mcplib.NewToolResultError("tenant lookup failed"), nil
	}
	if !status.Found {
		return marshalResult(action.Blocked(fmt.Sprintf("tenant %q not found", tenantName)))
	}
	if !status.Active {
		return marshalResult(action.Blocked(fmt.Sprintf("tenant %q has no active subscription", tenantName)))
	}
	if !s.deps.SecretGate.HasSecrets("odoo") {
		return marshalResult(action.Blocked(`provider "odoo" is not configured`))
	}

	params := make(map[string]any, len(args))
	for k, v := range args {
		if k != "tenant" {
			params[k] = v
		}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("invalid parameters", err), nil
	}

	res, ok := s.deps.Connector.Run(ctx, op, raw)
	if !ok {
		return marshalResult(action.Blocked(fmt.Sprintf("unsupported operation %q", op)))
	}
	data, err := json.Marshal(res)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("marshal result", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleCheckUpdates(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Updates == nil {
		return mcplib.NewToolResultError("update checker not configured"), nil
	}
	args := req.GetArguments()
	if name, _ := args["service"].(string); name != "" {
		info, err := s.deps.Updates.Check(ctx, name)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr(fmt.Sprintf("check %s", name), err), nil
		}
		data, err := json.Marshal(info)
		if err != nil {
			return mcplib.NewToolResultErrorFromErr("marshal info", err), nil
		}
		return toolResultJSON(string(data)), nil
	}

	infos := s.deps.Updates.CheckAll(ctx)
	data, err := json.Marshal(infos)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("marshal infos", err), nil
	}
	return toolResultJSON(string(data)), nil
}

func (s *Server) handleListTenants(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) { //nolint:gocritic // hugeParam: mcp-go handler signature
	if s.deps.Tenants == nil {
		return mcplib.NewToolResultError("tenant service not configured"), nil
	}
	tenants, err := s.deps.Tenants.List(ctx)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to list tenants", err), nil
	}
	data, err := json.Marshal(tenants)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("failed to marshal tenants", err), nil
	}
	return toolResultJSON(string(data)), nil
}

// marshalResult renders a dispatch envelope as a JSON tool result.
func marshalResult(res action.Result) (*mcplib.CallToolResult, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return mcplib.NewToolResultErrorFromErr("marshal result", err), nil
	}
	return toolResultJSON(string(data)), nil
}

// toolResultJSON wraps a JSON document as a text tool result.
func toolResultJSON(s string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(s)
}

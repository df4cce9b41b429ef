// Package odoo provides a stateless JSON-RPC client for the Odoo ERP
// external API, plus the tenant database provisioner built on it.
package odoo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/smarterbot/smartermcp/internal/config"
	"github.com/smarterbot/smartermcp/internal/resilience"
)

// Client talks to an Odoo instance over JSON-RPC. The credential tuple is
// fixed at construction; there is no per-call override and no retry.
type Client struct {
	host       string
	database   string
	username   string
	password   string
	httpClient *http.Client
	breaker    *resilience.Breaker
}

// NewClient creates an Odoo client from config. The HTTP timeout bounds
// every remote call.
func NewClient(cfg config.Odoo) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		host:     cfg.Host,
		database: cfg.Database,
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing RPC calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int64     `json:"id"`
}

type rpcParams struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Args    []any  `json:"args"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("odoo error %d: %s", e.Code, e.Message)
}

// call issues one JSON-RPC request against the /jsonrpc endpoint.
func (c *Client) call(ctx context.Context, service, method string, args []any) (json.RawMessage, error) {
	var result json.RawMessage
	do := func() error {
		body, err := json.Marshal(rpcRequest{
			JSONRPC: "2.0",
			Method:  "call",
			Params:  rpcParams{Service: service, Method: method, Args: args},
			ID:      rand.Int64N(1_000_000_000),
		})
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/jsonrpc", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("odoo endpoint returned %d: %s", resp.StatusCode, data)
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(data, &rpcResp); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
		if rpcResp.Error != nil {
			return rpcResp.Error
		}

		result = rpcResp.Result
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(do); err != nil {
			return nil, err
		}
		return result, nil
	}
	if err := do(); err != nil {
		return nil, err
	}
	return result, nil
}

// executeKw invokes model.method via the object service with the fixed
// credential tuple.
func (c *Client) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return c.call(ctx, "object", "execute_kw",
		[]any{c.database, c.username, c.password, model, method, args, kwargs})
}

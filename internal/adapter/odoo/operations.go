package odoo

import (
	"context"
	"encoding/json"
)

// defaultSearchLimit caps search_read result sets when the caller sets none.
const defaultSearchLimit = 80

// fieldAttributes is the fixed projection requested from fields_get.
var fieldAttributes = []string{"string", "help", "type", "required", "readonly"}

// Operation names accepted by Run.
const (
	OpSearchRead     = "search_read"
	OpCreate         = "create"
	OpUpdate         = "update"
	OpDelete         = "delete"
	OpExecuteCustom  = "execute_custom"
	OpGetModelFields = "get_model_fields"
)

// SearchReadParams selects records from a model. Domain and Fields default
// to empty (no filter, all fields); Order is a raw pass-through expression.
type SearchReadParams struct {
	Model  string   `json:"model"`
	Domain []any    `json:"domain"`
	Fields []string `json:"fields"`
	Limit  int      `json:"limit"`
	Order  string   `json:"order"`
}

// SearchReadResult is the envelope for search_read.
type SearchReadResult struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data,omitempty"`
	Count   int              `json:"count"`
	Error   string           `json:"error,omitempty"`
}

// SearchRead fetches records. Validation failures and remote errors are
// returned inside the envelope, never as a Go error.
func (c *Client) SearchRead(ctx context.Context, p SearchReadParams) SearchReadResult {
	if p.Model == "" {
		return SearchReadResult{Error: "model name is required"}
	}

	domain := p.Domain
	if domain == nil {
		domain = []any{}
	}
	fields := p.Fields
	if fields == nil {
		fields = []string{}
	}
	limit := p.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	raw, err := c.executeKw(ctx, p.Model, "search_read", []any{domain}, map[string]any{
		"fields": fields,
		"offset": 0,
		"limit":  limit,
		"order":  p.Order,
	})
	if err != nil {
		return SearchReadResult{Error: err.Error()}
	}

	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return SearchReadResult{Error: "decode records: " + err.Error()}
	}
	return SearchReadResult{Success: true, Data: records, Count: len(records)}
}

// CreateParams inserts one record.
type CreateParams struct {
	Model  string         `json:"model"`
	Values map[string]any `json:"values"`
}

// CreateResult is the envelope for create.
type CreateResult struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Create inserts a record and returns its id. When the remote call returns
// a sequence of created ids, the first element is used.
func (c *Client) Create(ctx context.Context, p CreateParams) CreateResult {
	if p.Model == "" || p.Values == nil {
		return CreateResult{Error: "model name and values are required"}
	}

	raw, err := c.executeKw(ctx, p.Model, "create", []any{p.Values}, nil)
	if err != nil {
		return CreateResult{Error: err.Error()}
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err == nil {
		if len(ids) == 0 {
			return CreateResult{Error: "remote call returned no id"}
		}
		return CreateResult{Success: true, ID: ids[0]}
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return CreateResult{Error: "decode id: " + err.Error()}
	}
	return CreateResult{Success: true, ID: id}
}

// UpdateParams rewrites fields of one record.
type UpdateParams struct {
	Model  string         `json:"model"`
	ID     int64          `json:"id"`
	Values map[string]any `json:"values"`
}

// UpdateResult is the envelope for update.
type UpdateResult struct {
	Success bool   `json:"success"`
	Updated bool   `json:"updated"`
	Error   string `json:"error,omitempty"`
}

// Update writes values onto a record.
func (c *Client) Update(ctx context.Context, p UpdateParams) UpdateResult {
	if p.Model == "" || p.ID == 0 || p.Values == nil {
		return UpdateResult{Error: "model name, id, and values are required"}
	}

	raw, err := c.executeKw(ctx, p.Model, "write", []any{[]int64{p.ID}, p.Values}, nil)
	if err != nil {
		return UpdateResult{Error: err.Error()}
	}

	var updated bool
	if err := json.Unmarshal(raw, &updated); err != nil {
		return UpdateResult{Error: "decode result: " + err.Error()}
	}
	return UpdateResult{Success: true, Updated: updated}
}

// DeleteParams removes one record.
type DeleteParams struct {
	Model string `json:"model"`
	ID    int64  `json:"id"`
}

// DeleteResult is the envelope for delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}

// Delete unlinks a record.
func (c *Client) Delete(ctx context.Context, p DeleteParams) DeleteResult {
	if p.Model == "" || p.ID == 0 {
		return DeleteResult{Error: "model name and id are required"}
	}

	raw, err := c.executeKw(ctx, p.Model, "unlink", []any{[]int64{p.ID}}, nil)
	if err != nil {
		return DeleteResult{Error: err.Error()}
	}

	var deleted bool
	if err := json.Unmarshal(raw, &deleted); err != nil {
		return DeleteResult{Error: "decode result: " + err.Error()}
	}
	return DeleteResult{Success: true, Deleted: deleted}
}

// ExecuteCustomParams invokes an arbitrary model method. Least safe
// operation; intended for trusted internal callers only.
type ExecuteCustomParams struct {
	Model  string         `json:"model"`
	Method string         `json:"method"`
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// ExecuteCustomResult is the envelope for execute_custom.
type ExecuteCustomResult struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ExecuteCustom passes a named method through to the remote model.
func (c *Client) ExecuteCustom(ctx context.Context, p ExecuteCustomParams) ExecuteCustomResult {
	if p.Model == "" || p.Method == "" {
		return ExecuteCustomResult{Error: "model name and method are required"}
	}

	args := p.Args
	if args == nil {
		args = []any{}
	}
	raw, err := c.executeKw(ctx, p.Model, p.Method, args, p.Kwargs)
	if err != nil {
		return ExecuteCustomResult{Error: err.Error()}
	}
	return ExecuteCustomResult{Success: true, Result: raw}
}

// GetModelFieldsParams introspects a model.
type GetModelFieldsParams struct {
	Model string `json:"model"`
}

// GetModelFieldsResult is the envelope for get_model_fields.
type GetModelFieldsResult struct {
	Success bool                      `json:"success"`
	Fields  map[string]map[string]any `json:"fields,omitempty"`
	Error   string                    `json:"error,omitempty"`
}

// GetModelFields returns the model's field definitions with a fixed
// attribute projection.
func (c *Client) GetModelFields(ctx context.Context, p GetModelFieldsParams) GetModelFieldsResult {
	if p.Model == "" {
		return GetModelFieldsResult{Error: "model name is required"}
	}

	raw, err := c.executeKw(ctx, p.Model, "fields_get", []any{}, map[string]any{
		"attributes": fieldAttributes,
	})
	if err != nil {
		return GetModelFieldsResult{Error: err.Error()}
	}

	var fields map[string]map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return GetModelFieldsResult{Error: "decode fields: " + err.Error()}
	}
	return GetModelFieldsResult{Success: true, Fields: fields}
}

// Run dispatches one of the six named operations, decoding params from the
// raw request context. The second return is false for unknown operations.
func (c *Client) Run(ctx context.Context, operation string, params json.RawMessage) (any, bool) {
	if params == nil {
		params = json.RawMessage("{}")
	}
	switch operation {
	case OpSearchRead:
		var p SearchReadParams
		if err := json.Unmarshal(params, &p); err != nil {
			return SearchReadResult{Error: "invalid context: " + err.Error()}, true
		}
		return c.SearchRead(ctx, p), true
	case OpCreate:
		var p CreateParams
		if err := json.Unmarshal(params, &p); err != nil {
			return CreateResult{Error: "invalid context: " + err.Error()}, true
		}
		return c.Create(ctx, p), true
	case OpUpdate:
		var p UpdateParams
		if err := json.Unmarshal(params, &p); err != nil {
			return UpdateResult{Error: "invalid context: " + err.Error()}, true
		}
		return c.Update(ctx, p), true
	case OpDelete:
		var p DeleteParams
		if err := json.Unmarshal(params, &p); err != nil {
			return DeleteResult{Error: "invalid context: " + err.Error()}, true
		}
		return c.Delete(ctx, p), true
	case OpExecuteCustom:
		var p ExecuteCustomParams
		if err := json.Unmarshal(params, &p); err != nil {
			return ExecuteCustomResult{Error: "invalid context: " + err.Error()}, true
		}
		return c.ExecuteCustom(ctx, p), true
	case OpGetModelFields:
		var p GetModelFieldsParams
		if err := json.Unmarshal(params, &p); err != nil {
			return GetModelFieldsResult{Error: "invalid context: " + err.Error()}, true
		}
		return c.GetModelFields(ctx, p), true
	}
	return nil, false
}

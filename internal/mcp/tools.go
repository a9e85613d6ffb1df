package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/zx06/minke/internal/errors"
	"github.com/zx06/minke/internal/registry"
)

// Source 是 MCP 工具读取的只读视图，*registry.Registry 即满足。
type Source interface {
	Servers() []registry.Server
	Get(ip string) (registry.Server, bool)
	Tags() []string
}

// ServerListInput represents the input for the server_list tool
type ServerListInput struct {
	Tag string `json:"tag,omitempty"`
}

// ServerShowInput represents the input for the server_show tool
type ServerShowInput struct {
	IP string `json:"ip"`
}

// ToolHandler manages MCP tools. Every tool is read-only and never returns
// a password.
type ToolHandler struct {
	source Source
}

func NewToolHandler(src Source) *ToolHandler {
	return &ToolHandler{source: src}
}

func (h *ToolHandler) RegisterTools(server *mcp.Server) {
	tagEnums := make([]any, 0)
	for _, t := range h.source.Tags() {
		tagEnums = append(tagEnums, t)
	}
	tagSchema := &jsonschema.Schema{
		Type:        "string",
		Description: "Only servers carrying this tag",
	}
	if len(tagEnums) > 0 {
		tagSchema.Enum = tagEnums
	}
	server.AddTool(&mcp.Tool{
		Name:        "server_list",
		Description: "List registered servers (passwords redacted)",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"tag": tagSchema},
		},
	}, h.serverListHandler)

	server.AddTool(&mcp.Tool{
		Name:        "server_show",
		Description: "Show one server by ip (password redacted)",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"ip"},
			Properties: map[string]*jsonschema.Schema{
				"ip": {Type: "string", Description: "Server ip (exact match)"},
			},
		},
	}, h.serverShowHandler)

	mcp.AddTool[struct{}, any](server, &mcp.Tool{
		Name:        "tag_list",
		Description: "List known tags",
	}, h.TagList)
}

func (h *ToolHandler) serverListHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ServerListInput
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
			return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
		}
	}
	result, _, err := h.ServerList(ctx, req, input)
	return result, err
}

func (h *ToolHandler) serverShowHandler(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input ServerShowInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return h.errorResult(errors.Wrap(errors.CodeCfgInvalid, "invalid input", nil, err)), nil
	}
	result, _, err := h.ServerShow(ctx, req, input)
	return result, err
}

// ServerList lists servers in listing order.
func (h *ToolHandler) ServerList(ctx context.Context, req *mcp.CallToolRequest, input ServerListInput) (*mcp.CallToolResult, any, error) {
	servers := registry.FilterByTag(h.source.Servers(), input.Tag)
	redacted := make([]registry.Server, len(servers))
	for i, s := range servers {
		redacted[i] = s.Redacted()
	}
	return h.okResult(map[string]any{"servers": redacted}), nil, nil
}

// ServerShow shows one server.
func (h *ToolHandler) ServerShow(ctx context.Context, req *mcp.CallToolRequest, input ServerShowInput) (*mcp.CallToolResult, any, error) {
	if input.IP == "" {
		return h.errorResult(errors.New(errors.CodeCfgInvalid, "ip is required", nil)), nil, nil
	}
	s, ok := h.source.Get(input.IP)
	if !ok {
		return h.errorResult(errors.New(errors.CodeServerNotFound, "server not found", map[string]any{"ip": input.IP})), nil, nil
	}
	return h.okResult(s.Redacted()), nil, nil
}

// TagList lists the tag set.
func (h *ToolHandler) TagList(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	return h.okResult(map[string]any{"tags": h.source.Tags()}), nil, nil
}

func (h *ToolHandler) okResult(data any) *mcp.CallToolResult {
	out := map[string]any{
		"ok":             true,
		"schema_version": 1,
		"data":           data,
	}
	jsonData, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return h.errorResult(errors.Wrap(errors.CodeInternal, "failed to marshal result", nil, err))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonData)}},
	}
}

func (h *ToolHandler) errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: h.formatError(err)}},
	}
}

// formatError formats an error as JSON
func (h *ToolHandler) formatError(err error) string {
	var xe *errors.XError
	if err != nil {
		xe = errors.AsOrWrap(err)
	} else {
		xe = errors.New(errors.CodeInternal, "unknown error", nil)
	}
	out := map[string]any{
		"ok":             false,
		"schema_version": 1,
		"error": map[string]any{
			"code":    xe.Code,
			"message": xe.Message,
			"details": xe.Details,
		},
	}
	jsonData, _ := json.MarshalIndent(out, "", "  ")
	return string(jsonData)
}

// CreateServer creates a new MCP server backed by src.
func CreateServer(version string, src Source) (*mcp.Server, error) {
	if src == nil {
		return nil, errors.New(errors.CodeInternal, "mcp source is nil", nil)
	}
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "minke",
		Version: version,
	}, nil)

	NewToolHandler(src).RegisterTools(server)
	return server, nil
}

// CLAUDE:SUMMARY Registers selreg MCP tools — list pages, get entry, publish set, pin active version.
package selreg

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/cartwatch/kit"
)

// MCP exposes registry operations as MCP tools. Catalog may be nil for
// in-memory-only registries.
type MCP struct {
	Registry *Registry
	Catalog  *Catalog
}

// RegisterMCP registers selreg tools on an MCP server.
func (m *MCP) RegisterMCP(srv *mcp.Server) {
	m.registerListPagesTool(srv)
	m.registerGetEntryTool(srv)
	m.registerPublishTool(srv)
	m.registerPinTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- list_pages ---

func (m *MCP) registerListPagesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "selreg_list_pages",
		Description: "List registered logical pages with their published selector-set versions.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		type page struct {
			Page     string `json:"page"`
			Versions []int  `json:"versions"`
		}
		var out []page
		for _, id := range m.Registry.Pages() {
			versions, err := m.Registry.Versions(id)
			if err != nil {
				return nil, err
			}
			out = append(out, page{Page: id, Versions: versions})
		}
		return out, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- get_entry ---

type getEntryRequest struct {
	Page string `json:"page"`
	Name string `json:"name"`
}

func (m *MCP) registerGetEntryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "selreg_get_entry",
		Description: "Get a named selector entry (primary strategy plus ranked fallbacks) from a page's active set.",
		InputSchema: inputSchema(map[string]any{
			"page": map[string]any{"type": "string", "description": "Logical page id (e.g. cart, order_detail)"},
			"name": map[string]any{"type": "string", "description": "Entry name (e.g. cart_list)"},
		}, []string{"page", "name"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		rr := req.(*getEntryRequest)
		return m.Registry.Entry(rr.Page, rr.Name)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr getEntryRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- publish_set ---

type publishSetRequest struct {
	Definition  json.RawMessage `json:"definition"`
	PublishedBy string          `json:"published_by,omitempty"`
}

func (m *MCP) registerPublishTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "selreg_publish_set",
		Description: "Publish a new selector-set version for a page. Versions are append-only; corrections are new versions.",
		InputSchema: inputSchema(map[string]any{
			"definition":   map[string]any{"type": "object", "description": "Selector-definition file JSON (schema_version, page, version, url_pattern, selectors)"},
			"published_by": map[string]any{"type": "string", "description": "Identity of the publisher, for the catalog log"},
		}, []string{"definition"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*publishSetRequest)
		ps, err := ParsePageSet(rr.Definition)
		if err != nil {
			return nil, err
		}
		if m.Catalog != nil {
			err = m.Catalog.Publish(ctx, m.Registry, ps, rr.PublishedBy)
		} else {
			err = m.Registry.Register(ps)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"page": ps.PageID, "version": ps.Version}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr publishSetRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- pin_active ---

type pinActiveRequest struct {
	Page    string `json:"page"`
	Version int    `json:"version"`
}

func (m *MCP) registerPinTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "selreg_pin_active",
		Description: "Pin the active selector-set version for a page. Unpinned pages expose their highest version.",
		InputSchema: inputSchema(map[string]any{
			"page":    map[string]any{"type": "string", "description": "Logical page id"},
			"version": map[string]any{"type": "integer", "description": "Published version to pin"},
		}, []string{"page", "version"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		rr := req.(*pinActiveRequest)
		var err error
		if m.Catalog != nil {
			err = m.Catalog.PinActive(ctx, m.Registry, rr.Page, rr.Version)
		} else {
			err = m.Registry.Pin(rr.Page, rr.Version)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"page": rr.Page, "active": rr.Version}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr pinActiveRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// CLAUDE:SUMMARY Registers the cart diff MCP tool for reconciling two serialized snapshots.
package cartdiff

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/cartwatch/kit"
)

// RegisterMCP registers the diff tool on an MCP server. Calls that omit
// priceThreshold fall back to defaultPriceThreshold.
func RegisterMCP(srv *mcp.Server, defaultPriceThreshold float64) {
	tool := &mcp.Tool{
		Name:        "cartdiff_diff",
		Description: "Reconcile a baseline order snapshot against the current cart and categorize every change.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"baseline":       map[string]any{"type": "array", "description": "Order items (productId, name, quantity, unitPrice, lineTotal)"},
				"current":        map[string]any{"type": "array", "description": "Cart items (productId, name, quantity, price, availability)"},
				"priceThreshold": map[string]any{"type": "number", "description": "Absolute price delta above which the diff requires attention"},
				"warnings":       map[string]any{"type": "array", "description": "Extraction warnings to carry through to the response"},
			},
			"required": []string{"baseline", "current"},
		},
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		return Compute(req.(*DiffRequest)), nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr DiffRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		if rr.PriceThreshold <= 0 {
			rr.PriceThreshold = defaultPriceThreshold
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

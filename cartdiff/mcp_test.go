package cartdiff

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var testMCPImpl = &mcp.Implementation{Name: "cartdiff-test", Version: "0.1.0"}

func mcpSession(t *testing.T) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	RegisterMCP(srv, 10.00)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestMCP_Diff(t *testing.T) {
	session := mcpSession(t)

	args := map[string]any{
		"baseline": []map[string]any{
			{"productId": "A", "name": "Arroz", "quantity": 2, "unitPrice": 1.00, "lineTotal": 2.00},
		},
		"current": []map[string]any{
			{"productId": "A", "name": "Arroz", "quantity": 3, "price": 1.00, "availability": "available"},
			{"productId": "B", "name": "Feijão", "quantity": 1, "price": 3.50, "availability": "available"},
		},
	}

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "cartdiff_diff",
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("tool error: %v", err)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}

	var resp DiffResponse
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.HasChanges {
		t.Error("expected changes")
	}
	if resp.Diff.Summary.AddedCount != 1 || resp.Diff.Summary.QuantityChangedCount != 1 {
		t.Errorf("summary: %+v", resp.Diff.Summary)
	}
	if resp.Diff.Summary.PriceDifference != 4.50 {
		t.Errorf("price difference: got %v, want 4.50", resp.Diff.Summary.PriceDifference)
	}
}

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/taskify/pkg/tools/toolbox"
)

func echoTool(name string) toolbox.Tool {
	return toolbox.Tool{
		Name:        name,
		Description: "Test tool: " + name,
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(_ context.Context, input json.RawMessage) (string, error) {
			return string(input), nil
		},
	}
}

// connect runs s on in-memory transports and returns a client session.
func connect(t *testing.T, s *MCPServer) *mcp.ClientSession {
	t.Helper()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, serverTransport) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	tb := toolbox.New()
	tb.Register(echoTool("echo"), toolbox.Tool{Name: "bare", Description: "No schema", Handler: echoTool("x").Handler})

	s := New("taskify-test", "1.0.0")
	s.RegisterBox(tb)

	res, err := connect(t, s).ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Tools, 2)

	byName := map[string]*mcp.Tool{}
	for _, tool := range res.Tools {
		byName[tool.Name] = tool
	}
	assert.Equal(t, "Test tool: echo", byName["echo"].Description)
	assert.Equal(t, "No schema", byName["bare"].Description)
}

func TestCallTool(t *testing.T) {
	s := New("taskify-test", "1.0.0")
	s.Register(echoTool("echo"))

	res, err := connect(t, s).CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"msg": "hello"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"msg":"hello"}`, textOf(t, res))
}

func TestCallTool_HandlerError(t *testing.T) {
	s := New("taskify-test", "1.0.0")
	s.Register(toolbox.Tool{
		Name:        "fail",
		InputSchema: json.RawMessage(`{"type":"object"}`),
		Handler: func(context.Context, json.RawMessage) (string, error) {
			return "", errors.New("tool failed")
		},
	})

	res, err := connect(t, s).CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "fail",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "tool failed", textOf(t, res))
}

func TestCallTool_NotFound(t *testing.T) {
	s := New("taskify-test", "1.0.0")

	_, err := connect(t, s).CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "missing",
		Arguments: map[string]any{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestRun_Cancelled(t *testing.T) {
	s := New("taskify-test", "1.0.0")
	serverTransport, _ := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Run(ctx, serverTransport), context.Canceled)
}

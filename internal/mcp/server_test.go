package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/hookfang/internal/config"
	"github.com/Sumatoshi-tech/hookfang/internal/mcp"
)

func testConfig() *config.Config {
	return &config.Config{Hooks: config.KnownHooks()}
}

func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-serverDone
	})

	return session
}

func TestServer_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testConfig(), mcp.ServerDeps{})

	assert.Equal(t, []string{"copyright_check", "imports_check", "version_bump_check"}, srv.ListToolNames())

	session := connect(t, srv)

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 3)

	for _, tool := range toolsResult.Tools {
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}
}

func TestServer_CallImportsCheck(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testConfig(), mcp.ServerDeps{})
	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: "imports_check",
		Arguments: map[string]any{
			"content": "def f():\n    import json\n",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	text := contentText(t, result)

	var outcome map[string]any

	require.NoError(t, json.Unmarshal([]byte(text), &outcome))
	assert.Equal(t, "violations", outcome["kind"])
}

func TestServer_CallImportsCheckSkipModules(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testConfig(), mcp.ServerDeps{})
	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: "imports_check",
		Arguments: map[string]any{
			"content":      "def f():\n    import json\n",
			"skip_modules": []string{"json"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var outcome map[string]any

	require.NoError(t, json.Unmarshal([]byte(contentText(t, result)), &outcome))
	assert.Equal(t, "clean", outcome["kind"])
}

func TestServer_CallImportsCheckNoInput(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testConfig(), mcp.ServerDeps{})
	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      "imports_check",
		Arguments: map[string]any{},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_CallCopyrightCheckValidation(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(testConfig(), mcp.ServerDeps{})
	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: "copyright_check",
		Arguments: map[string]any{
			"path": "some/file.py",
		},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func contentText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgdnvk/hrassist/internal/agent"
)

func callTool(t *testing.T, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = askToolName
	req.Params.Arguments = args
	res, err := askToolHandler(agent.New(nil))(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestAskTool(t *testing.T) {
	res := callTool(t, map[string]interface{}{"question": "leave balance", "role": "admin"})
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	var out toolAnswer
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	assert.Equal(t, "leave", out.Intent)
	assert.Equal(t, 0.99, out.Confidence)
	assert.Contains(t, out.Answer, "Team Balances")
}

func TestAskToolRequiresQuestion(t *testing.T) {
	res := callTool(t, map[string]interface{}{"role": "employee"})
	assert.True(t, res.IsError)
}

func TestNewMCPServer(t *testing.T) {
	assert.NotNil(t, NewMCPServer(agent.New(nil), "test"))
}

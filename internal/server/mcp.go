package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/bgdnvk/hrassist/internal/agent"
)

const askToolName = "ask_hr_assistant"

// NewMCPServer exposes the engine as a single MCP tool. Tool callers have no
// identity, so conversations are keyed by the optional user_id argument.
func NewMCPServer(engine *agent.Engine, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("hrassist", version, mcpserver.WithToolCapabilities(false))

	tool := mcp.NewTool(askToolName,
		mcp.WithDescription("Answer an HR question about leave, attendance, payslips, holidays, policies, profile, documents or approvals."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The employee's question")),
		mcp.WithString("role", mcp.Description("Portal role of the asker, e.g. employee, hr, admin, ceo")),
		mcp.WithString("user_id", mcp.Description("Employee id used to keep conversation state between calls")),
	)
	s.AddTool(tool, askToolHandler(engine))
	return s
}

type toolAnswer struct {
	Answer     string   `json:"answer"`
	Intent     string   `json:"intent"`
	SubIntent  string   `json:"subIntent,omitempty"`
	Confidence float64  `json:"confidence"`
	Labels     []string `json:"labels"`
	Link       *string  `json:"link,omitempty"`
}

func askToolHandler(engine *agent.Engine) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		res := engine.Ask(ctx, agent.Request{
			Question: question,
			UserID:   req.GetString("user_id", ""),
			Role:     req.GetString("role", "employee"),
		})

		out, err := json.Marshal(toolAnswer{
			Answer:     res.Answer.Text,
			Intent:     res.Match.Intent,
			SubIntent:  res.Match.Subtype,
			Confidence: res.Match.Confidence,
			Labels:     res.Labels,
			Link:       res.Answer.Link,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode answer: %w", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

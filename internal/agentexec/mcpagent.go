package agentexec

import (
	"context"
	"fmt"

	"github.com/manavgup/ragcore/internal/mcpgateway"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPAgent adapts a remote MCP tool into an Agent: running it calls the tool through
// the circuit-broken gateway client and folds the tool's structured result back into
// the stage-appropriate Output field, so an MCP tool can act as a pre-search query
// rewriter, a post-search enrichment step, or a response-time artifact generator
// depending only on how it's registered.
type MCPAgent struct {
	cfg      AgentConfig
	client   *mcpgateway.Client
	tool     string
	toArgs   func(Context) map[string]any
	toOutput func(Stage, Context, map[string]any) Output
}

func NewMCPAgent(cfg AgentConfig, client *mcpgateway.Client, tool string,
	toArgs func(Context) map[string]any, toOutput func(Stage, Context, map[string]any) Output) *MCPAgent {
	return &MCPAgent{cfg: cfg, client: client, tool: tool, toArgs: toArgs, toOutput: toOutput}
}

func (a *MCPAgent) Config() AgentConfig { return a.cfg }

func (a *MCPAgent) Run(ctx context.Context, agentCtx Context) (Output, error) {
	args := a.toArgs(agentCtx)
	result, err := a.client.CallTool(ctx, a.tool, args)
	if err != nil {
		return Output{}, err
	}
	if result.IsError {
		return Output{}, fmt.Errorf("mcp tool %q returned an error result", a.tool)
	}

	payload := make(map[string]any, len(result.Content))
	for i, item := range result.Content {
		if tc, ok := item.(mcp.TextContent); ok {
			payload[fmt.Sprintf("content_%d", i)] = tc.Text
		}
	}
	return a.toOutput(a.cfg.Stage, agentCtx, payload), nil
}

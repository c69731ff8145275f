package mcpgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/manavgup/ragcore/internal/errors"
	"github.com/manavgup/ragcore/internal/logger"
	"github.com/mark3labs/mcp-go/mcp"
)

// Config controls the gateway client's timeouts and breaker thresholds.
type Config struct {
	BaseURL          string
	PerToolTimeout   time.Duration
	AggregateTimeout time.Duration
	FailureThreshold int
	RecoveryTimeout  time.Duration
}

// Client dispatches tool calls to an MCP gateway over HTTP, guarding each named tool
// behind its own circuit breaker so one misbehaving tool cannot block the others.
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.Mutex
	breakers map[string]*CircuitBreaker
}

func NewClient(cfg Config) *Client {
	if cfg.PerToolTimeout <= 0 {
		cfg.PerToolTimeout = 10 * time.Second
	}
	if cfg.AggregateTimeout <= 0 {
		cfg.AggregateTimeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.PerToolTimeout},
		breakers:   make(map[string]*CircuitBreaker),
	}
}

func (c *Client) breakerFor(tool string) *CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[tool]
	if !ok {
		b = NewCircuitBreaker(c.cfg.FailureThreshold, c.cfg.RecoveryTimeout)
		c.breakers[tool] = b
	}
	return b
}

// ToolResult pairs a tool's name with its outcome, used by CallTools' fan-out so a
// caller can tell which calls succeeded, failed, or were skipped by an open breaker.
type ToolResult struct {
	Tool   string
	Result *mcp.CallToolResult
	Err    error
}

// CallTool invokes a single tool, respecting its circuit breaker and the per-tool
// timeout; failures (including timeouts) are recorded against the breaker.
func (c *Client) CallTool(ctx context.Context, tool string, args map[string]any) (*mcp.CallToolResult, error) {
	breaker := c.breakerFor(tool)
	if err := breaker.CanExecute(); err != nil {
		return nil, errors.NewCircuitOpenError(fmt.Sprintf("tool %q: %v", tool, err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.PerToolTimeout)
	defer cancel()

	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	result, err := c.doCall(ctx, req)
	if err != nil {
		breaker.RecordFailure()
		return nil, err
	}
	breaker.RecordSuccess()
	return result, nil
}

func (c *Client) doCall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.NewProviderError("marshal mcp tool request: " + err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tools/call", bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewProviderError("build mcp gateway request: " + err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewTimeoutError("mcp tool call timed out: " + req.Params.Name)
		}
		return nil, errors.NewProviderError("mcp gateway request failed: " + err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewProviderError(fmt.Sprintf("mcp gateway returned status %d for tool %q", resp.StatusCode, req.Params.Name))
	}

	var result mcp.CallToolResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewProviderError("decode mcp tool result: " + err.Error())
	}
	return &result, nil
}

// CallTools fans out a batch of tool calls concurrently, bounded by the client's
// aggregate timeout, and collects every result (success, error, or circuit-open skip)
// without letting one slow or failing tool block the others.
func (c *Client) CallTools(ctx context.Context, calls map[string]map[string]any) []ToolResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AggregateTimeout)
	defer cancel()

	results := make([]ToolResult, len(calls))
	var wg sync.WaitGroup
	i := 0
	for tool, args := range calls {
		i := i
		tool, args := tool, args
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.CallTool(ctx, tool, args)
			if err != nil {
				logger.GetLogger(ctx).Warnf("mcp tool %q failed: %v", tool, err)
			}
			results[i] = ToolResult{Tool: tool, Result: res, Err: err}
		}()
		i++
	}
	wg.Wait()
	return results
}

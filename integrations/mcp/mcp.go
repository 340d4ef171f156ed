// Package mcp governs tools served over the Model Context Protocol. Each
// wrapped tool invocation flows through a session's tool.call evaluation
// before the real handler runs, so an MCP-hosted agent cannot bypass policy
// by calling tools directly.
package mcp

import (
	"context"
	"encoding/json"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	agentwarden "github.com/agentwarden/agentwarden-go"
)

// ToolHandler mirrors the go-sdk typed tool handler signature.
type ToolHandler[In, Out any] func(ctx context.Context, req *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, Out, error)

// outcome bundles a handler's two result values through the execution
// adapter, which carries a single value.
type outcome[Out any] struct {
	result *mcpsdk.CallToolResult
	out    Out
}

// Govern wraps handler so every invocation is evaluated on session first.
// The tool's input struct is serialized into the evaluation params. A denial
// or pending approval surfaces as the governance error itself, which the MCP
// server reports to the model as a tool error; the handler never runs.
func Govern[In, Out any](session *agentwarden.Session, toolName string, handler ToolHandler[In, Out]) ToolHandler[In, Out] {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, Out, error) {
		var zero Out

		res, err := session.Tool(ctx, toolName, paramsFrom(in),
			agentwarden.WithExec(agentwarden.DoCtx(func(ctx context.Context) (any, error) {
				result, out, err := handler(ctx, req, in)
				if err != nil {
					return nil, err
				}
				return outcome[Out]{result: result, out: out}, nil
			})),
		)
		if err != nil {
			var denied *agentwarden.DeniedError
			var pending *agentwarden.ApprovalPendingError
			if errors.As(err, &denied) || errors.As(err, &pending) {
				return &mcpsdk.CallToolResult{IsError: true}, zero, err
			}
			return nil, zero, err
		}

		oc := res.(outcome[Out])
		return oc.result, oc.out, nil
	}
}

// AddGovernedTool registers tool on server with its handler wrapped by
// Govern. The evaluation uses the tool's registered name.
func AddGovernedTool[In, Out any](server *mcpsdk.Server, session *agentwarden.Session, tool *mcpsdk.Tool, handler ToolHandler[In, Out]) {
	mcpsdk.AddTool(server, tool, mcpsdk.ToolHandlerFor[In, Out](Govern(session, tool.Name, handler)))
}

// Serve runs an MCP server on stdio inside a managed session: the session
// starts before serving and ends when the server stops, even on failure.
// build receives the active session so tool registrations can wrap their
// handlers with Govern.
func Serve(ctx context.Context, client *agentwarden.Client, agentID string, build func(s *agentwarden.Session) *mcpsdk.Server, opts ...agentwarden.SessionOption) error {
	return client.Run(ctx, agentID, func(ctx context.Context, s *agentwarden.Session) error {
		return build(s).Run(ctx, &mcpsdk.StdioTransport{})
	}, opts...)
}

// paramsFrom flattens a tool input struct into evaluation params via its
// JSON encoding. Non-object inputs land under a single "input" key.
func paramsFrom(in any) map[string]any {
	raw, err := json.Marshal(in)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{"input": string(raw)}
	}
	return m
}

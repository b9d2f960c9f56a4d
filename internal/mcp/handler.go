package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"workboardmcp/server/internal/jsonrpc"
	"workboardmcp/server/internal/modules"
)

// serverInstructions primes the client on how to use the tool surface.
const serverInstructions = "Secure MCP server for WorkBoard OKR and strategy execution platform. " +
	"WorkBoard tracks Objectives (goals) and Key Results (metrics). " +
	"When users ask about 'my objectives' or 'my OKRs', use get_my_objectives " +
	"with no arguments. It auto-discovers objectives from the user's key results. " +
	"To update OKR progress, first use get_my_key_results to find metric IDs, " +
	"then use update_key_result to check in. " +
	"To identify the current user, call get_user with no arguments. " +
	"\n\n" +
	"DISPLAY FORMAT: When showing objectives and key results, always use a tree structure. " +
	"Show each objective as a top-level item with its progress, then indent its key results " +
	"beneath it. Example:\n" +
	"- Objective Name (progress%)\n" +
	"  - Key Result 1: current of target\n" +
	"  - Key Result 2: current of target\n" +
	"For key result lists without objectives, use a flat bulleted list with name, progress, " +
	"and target date."

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ProcessRequest routes a JSON-RPC request to the appropriate handler.
// Called by the transport middleware.
func (h *Handler) ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req), nil
	case "initialized", "notifications/initialized":
		return nil, nil
	case "tools/list":
		return h.handleToolsList(ctx)
	case "tools/call":
		return h.handleToolCall(ctx, req)
	default:
		return nil, &jsonrpc.Error{Code: MethodNotFound, Message: "Method not found"}
	}
}

func (h *Handler) handleInitialize(req *jsonrpc.Request) *InitializeResult {
	var params InitializeParams
	if raw, err := json.Marshal(req.Params); err == nil {
		if err := json.Unmarshal(raw, &params); err == nil && params.ClientInfo.Name != "" {
			log.Printf("MCP client: %s %s (protocol %s)",
				params.ClientInfo.Name, params.ClientInfo.Version, params.ProtocolVersion)
		}
	}

	return &InitializeResult{
		ProtocolVersion: "2025-03-26",
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    "workboard-mcp",
			Version: "0.4.0",
		},
		Instructions: serverInstructions,
	}
}

func (h *Handler) handleToolsList(ctx context.Context) (*ToolsListResult, *jsonrpc.Error) {
	return &ToolsListResult{Tools: modules.AllTools()}, nil
}

func (h *Handler) handleToolCall(ctx context.Context, req *jsonrpc.Request) (*ToolCallResult, *jsonrpc.Error) {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params"}
	}

	var params ToolCallParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params structure"}
	}

	if params.Name == "" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "name is required"}
	}

	moduleName, ok := modules.ModuleForTool(params.Name)
	if !ok {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: fmt.Sprintf("Unknown tool: %s", params.Name)}
	}

	args := params.Arguments
	if args == nil {
		args = make(map[string]interface{})
	}

	result, err := modules.Run(ctx, moduleName, params.Name, args)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InternalError, Message: err.Error()}
	}

	// Apply compact format unless format=json is explicitly requested
	if !result.IsError {
		if f, _ := args["format"].(string); f != "json" {
			result.Content[0].Text = modules.ApplyCompact(moduleName, params.Name, result.Content[0].Text)
		}
	}

	return result, nil
}

package mcp

import (
	"context"
	"strings"
	"testing"

	"workboardmcp/server/internal/jsonrpc"
)

func TestHandleInitialize(t *testing.T) {
	h := NewHandler()
	req := &jsonrpc.Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "initialize",
		Params: map[string]interface{}{
			"protocolVersion": "2025-03-26",
			"clientInfo":      map[string]interface{}{"name": "test-client", "version": "1.0"},
		},
	}

	result := h.handleInitialize(req)
	if result.ProtocolVersion != "2025-03-26" {
		t.Errorf("protocolVersion = %q, want %q", result.ProtocolVersion, "2025-03-26")
	}
	if result.ServerInfo.Name != "workboard-mcp" {
		t.Errorf("serverInfo.name = %q, want %q", result.ServerInfo.Name, "workboard-mcp")
	}
	if result.Capabilities.Tools == nil {
		t.Error("expected tools capability to be non-nil")
	}
	if !strings.Contains(result.Instructions, "get_my_objectives") {
		t.Error("expected instructions to mention get_my_objectives")
	}
}

func TestHandleInitializeWithoutParams(t *testing.T) {
	h := NewHandler()
	result := h.handleInitialize(&jsonrpc.Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	if result == nil || result.ServerInfo.Name != "workboard-mcp" {
		t.Fatal("initialize must succeed without client params")
	}
}

func TestProcessRequestMethodNotFound(t *testing.T) {
	h := NewHandler()
	req := &jsonrpc.Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "nonexistent/method",
	}

	_, rpcErr := h.ProcessRequest(context.TODO(), req)
	if rpcErr == nil {
		t.Fatal("expected error for unknown method")
	}
	if rpcErr.Code != MethodNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, MethodNotFound)
	}
}

func TestProcessRequestInitialized(t *testing.T) {
	h := NewHandler()
	req := &jsonrpc.Request{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "initialized",
	}

	result, rpcErr := h.ProcessRequest(context.TODO(), req)
	if rpcErr != nil {
		t.Errorf("unexpected error: %v", rpcErr.Message)
	}
	if result != nil {
		t.Errorf("expected nil result for initialized, got %v", result)
	}
}

func TestHandleToolCallUnknownTool(t *testing.T) {
	h := NewHandler()
	req := &jsonrpc.Request{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "tools/call",
		Params:  map[string]interface{}{"name": "no_such_tool"},
	}

	_, rpcErr := h.ProcessRequest(context.TODO(), req)
	if rpcErr == nil {
		t.Fatal("expected error for unknown tool")
	}
	if rpcErr.Code != InvalidParams {
		t.Errorf("code = %d, want %d", rpcErr.Code, InvalidParams)
	}
}

func TestHandleToolCallMissingName(t *testing.T) {
	h := NewHandler()
	req := &jsonrpc.Request{
		JSONRPC: "2.0",
		ID:      4,
		Method:  "tools/call",
		Params:  map[string]interface{}{},
	}

	_, rpcErr := h.ProcessRequest(context.TODO(), req)
	if rpcErr == nil {
		t.Fatal("expected error for missing tool name")
	}
	if rpcErr.Code != InvalidParams {
		t.Errorf("code = %d, want %d", rpcErr.Code, InvalidParams)
	}
}

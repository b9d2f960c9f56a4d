package modules

import (
	"context"
	"fmt"
	"time"

	"workboardmcp/server/internal/middleware"
	"workboardmcp/server/internal/observability"
)

// =============================================================================
// Registry
// =============================================================================

// registry holds all registered modules
var registry = make(map[string]Module)

// RegisterModule adds a module to the registry
func RegisterModule(m Module) {
	registry[m.Name()] = m
}

// GetModule returns a module by name
func GetModule(name string) (Module, bool) {
	m, ok := registry[name]
	return m, ok
}

// ListModules returns all registered module names
func ListModules() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// AllTools returns the tool definitions of every registered module.
func AllTools() []Tool {
	var tools []Tool
	for _, m := range registry {
		tools = append(tools, m.Tools()...)
	}
	return tools
}

// ModuleForTool returns the name of the registered module exposing the given
// tool. Tool names are unique across modules.
func ModuleForTool(toolName string) (string, bool) {
	for name, m := range registry {
		if _, found := findTool(m.Tools(), toolName); found {
			return name, true
		}
	}
	return "", false
}

// =============================================================================
// Tool Execution
// =============================================================================

// toolTimeout is the maximum duration for a single tool execution.
const toolTimeout = 30 * time.Second

// Run executes a single tool in a module
func Run(ctx context.Context, moduleName, toolName string, params map[string]interface{}) (*ToolCallResult, error) {
	start := time.Now()

	m, ok := registry[moduleName]
	if !ok {
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Unknown module: %s", moduleName)}},
			IsError: true,
		}, nil
	}

	// Validate params against tool's InputSchema
	if tool, found := findTool(m.Tools(), toolName); found {
		validated, err := ValidateParams(tool.InputSchema, params)
		if err != nil {
			return &ToolCallResult{
				Content: []ContentBlock{{Type: "text", Text: err.Error()}},
				IsError: true,
			}, nil
		}
		params = validated
	}

	// Apply timeout to prevent external API calls from hanging indefinitely
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	ctx, span := observability.StartToolSpan(ctx, moduleName, toolName)
	defer span.End()

	result, err := m.ExecuteTool(ctx, toolName, params)
	durationMs := time.Since(start).Milliseconds()
	requestID := middleware.GetRequestID(ctx)

	if err != nil {
		errMsg := err.Error()
		if ctx.Err() == context.DeadlineExceeded {
			errMsg = fmt.Sprintf("Request to %s timed out after %s. The external service did not respond in time.", moduleName, toolTimeout)
		}
		observability.LogToolCall(requestID, moduleName, toolName, durationMs, "error", errMsg)
		observability.RecordToolCall(ctx, moduleName, toolName, "error", float64(durationMs))
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: errMsg}},
			IsError: true,
		}, nil
	}

	observability.LogToolCall(requestID, moduleName, toolName, durationMs, "success", "")
	observability.RecordToolCall(ctx, moduleName, toolName, "success", float64(durationMs))
	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: result}},
	}, nil
}

// ApplyCompact converts a JSON result to compact format for a given module and
// tool. Returns the original JSON if the module has no CompactConverter.
func ApplyCompact(moduleName, toolName, jsonResult string) string {
	m, ok := registry[moduleName]
	if !ok {
		return jsonResult
	}
	if converter, ok := m.(CompactConverter); ok {
		return converter.ToCompact(toolName, jsonResult)
	}
	return jsonResult
}

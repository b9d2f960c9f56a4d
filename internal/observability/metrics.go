package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// OTel instrumentation for tool execution. The global providers are no-ops
// unless the operator wires an SDK; instruments are still safe to call.
var (
	meter  = otel.Meter("workboardmcp/server")
	tracer = otel.Tracer("workboardmcp/server")

	toolCalls    metric.Int64Counter
	toolDuration metric.Float64Histogram
)

func init() {
	toolCalls, _ = meter.Int64Counter("mcp.tool.calls",
		metric.WithDescription("Number of tool calls processed"))
	toolDuration, _ = meter.Float64Histogram("mcp.tool.duration",
		metric.WithDescription("Tool call duration"),
		metric.WithUnit("ms"))
}

// RecordToolCall records one tool execution on the global meter.
func RecordToolCall(ctx context.Context, module, tool, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("tool", tool),
		attribute.String("status", status),
	)
	toolCalls.Add(ctx, 1, attrs)
	toolDuration.Record(ctx, durationMs, attrs)
}

// StartToolSpan opens a span covering one tool execution.
func StartToolSpan(ctx context.Context, module, tool string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tools/call",
		trace.WithAttributes(
			attribute.String("module", module),
			attribute.String("tool", tool),
		))
}

// Tracing instrumentation for the executor.
package executor

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/vinayprograms/agentloop/internal/executor"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// startAgentSpan starts a span for one agent activation.
func (e *Engine) startAgentSpan(ctx context.Context, name, model string, depth int) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "agent."+name)
	span.SetAttributes(
		attribute.String("agent.name", name),
		attribute.String("agent.model", model),
		attribute.Int("agent.depth", depth),
	)
	return ctx, span
}

// endAgentSpan ends the activation span with result info.
func (e *Engine) endAgentSpan(span trace.Span, result string, err error) {
	span.SetAttributes(attribute.String("agent.result", truncateForLog(result, 2000)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// startStepSpan starts a span for one generate, parse, act cycle.
func (e *Engine) startStepSpan(ctx context.Context, agent, stepID string) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "step")
	span.SetAttributes(
		attribute.String("step.id", stepID),
		attribute.String("step.agent", agent),
	)
	return ctx, span
}

// endStepSpan ends the step span.
func (e *Engine) endStepSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// startToolSpan starts a span for a tool dispatch.
func (e *Engine) startToolSpan(ctx context.Context, tool string) (context.Context, trace.Span) {
	ctx, span := tracer().Start(ctx, "tool."+tool)
	span.SetAttributes(attribute.String("tool.name", tool))
	return ctx, span
}

// endToolSpan ends the tool span.
func (e *Engine) endToolSpan(span trace.Span, result string) {
	span.SetAttributes(attribute.Int("tool.result_len", len(result)))
	span.End()
}

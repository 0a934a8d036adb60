// Package telemetry bridges the machine's trace hook to OpenTelemetry: every
// lifecycle step becomes a span carrying the machine id and the names of the
// elements involved. Without a configured tracer provider the spans are
// no-ops, so the bridge is safe to leave installed.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	fsa "github.com/stateforward/go-fsa"
	"github.com/stateforward/go-fsa/embedded"
)

const scope = "github.com/stateforward/go-fsa"

type Option func(*bridge)

// WithTracer substitutes the tracer; the default comes from the global
// provider under this module's scope.
func WithTracer(tracer trace.Tracer) Option {
	return func(b *bridge) { b.tracer = tracer }
}

type bridge struct {
	ctx    context.Context
	tracer trace.Tracer
}

// Trace returns a trace hook for fsa.WithTrace. Spans are parented to ctx.
func Trace(ctx context.Context, options ...Option) fsa.Trace {
	b := &bridge{ctx: ctx, tracer: otel.Tracer(scope)}
	for _, option := range options {
		option(b)
	}
	return func(step string, elements ...embedded.Element) func(...any) {
		_, span := b.tracer.Start(b.ctx, step, trace.WithAttributes(attributes(elements)...))
		return func(...any) { span.End() }
	}
}

func attributes(elements []embedded.Element) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(elements)+1)
	for i, element := range elements {
		if machine, ok := element.(embedded.Machine); ok {
			attrs = append(attrs, attribute.String("fsa.machine.id", machine.Id()))
		}
		attrs = append(attrs, attribute.String(fmt.Sprintf("fsa.element.%d", i), element.Name()))
	}
	return attrs
}

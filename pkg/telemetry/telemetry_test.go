package telemetry_test

import (
	"context"
	"slices"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	fsa "github.com/stateforward/go-fsa"
	"github.com/stateforward/go-fsa/pkg/telemetry"
)

type recordedSpan struct {
	name  string
	attrs []attribute.KeyValue
}

type recordingTracer struct {
	embedded.Tracer
	spans []recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	t.spans = append(t.spans, recordedSpan{name: name, attrs: cfg.Attributes()})
	return ctx, noop.Span{}
}

func (t *recordingTracer) names() []string {
	names := make([]string, len(t.spans))
	for i, span := range t.spans {
		names[i] = span.name
	}
	return names
}

func (t *recordingTracer) attr(span int, key string) string {
	for _, kv := range t.spans[span].attrs {
		if string(kv.Key) == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestTrace(t *testing.T) {
	def, err := fsa.Define("rally",
		fsa.State("ping", fsa.Do(func(*fsa.State) {}), fsa.Rule("pong", fsa.Always())),
		fsa.State("pong"),
	)
	if err != nil {
		t.Fatal(err)
	}
	tracer := &recordingTracer{}
	m := fsa.New(def, fsa.WithTrace(telemetry.Trace(context.Background(), telemetry.WithTracer(tracer))))

	m.Start()
	if _, err := m.Switch(); err != nil {
		t.Fatal(err)
	}

	want := []string{"start", "enter", "execute", "switch", "evaluate", "enter"}
	if !slices.Equal(tracer.names(), want) {
		t.Fatal("each lifecycle step should open a span", "spans", tracer.names())
	}
	if got := tracer.attr(0, "fsa.machine.id"); got != m.Id() {
		t.Fatal("machine spans should carry the machine id", "id", got)
	}
	if got := tracer.attr(2, "fsa.element.0"); got != "ping.do[0]" {
		t.Fatal("element spans should carry element names", "element", got)
	}
}

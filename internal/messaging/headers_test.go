package messaging

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrier(t *testing.T) {
	t.Run("set overwrites existing key", func(t *testing.T) {
		msg := kafka.Message{Headers: []kafka.Header{{Key: "a", Value: []byte("1")}}}
		carrier := NewHeaderCarrier(&msg)

		carrier.Set("a", "2")
		carrier.Set("b", "3")

		if len(msg.Headers) != 2 {
			t.Fatalf("expected 2 headers, got %d", len(msg.Headers))
		}
		if carrier.Get("a") != "2" {
			t.Errorf("expected a=2, got %s", carrier.Get("a"))
		}
		if carrier.Get("missing") != "" {
			t.Errorf("expected empty value for missing key")
		}
		if keys := carrier.Keys(); len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
			t.Errorf("unexpected keys: %v", keys)
		}
	})

	t.Run("propagates trace context", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()

		ctx, span := tp.Tracer("test").Start(context.Background(), "send")
		defer span.End()

		propagator := propagation.TraceContext{}
		var msg kafka.Message
		propagator.Inject(ctx, NewHeaderCarrier(&msg))

		extracted := trace.SpanContextFromContext(propagator.Extract(context.Background(), NewHeaderCarrier(&msg)))
		if extracted.TraceID() != span.SpanContext().TraceID() {
			t.Errorf("expected trace %s, got %s", span.SpanContext().TraceID(), extracted.TraceID())
		}
		if !extracted.IsRemote() {
			t.Error("expected extracted span context to be remote")
		}
	})
}

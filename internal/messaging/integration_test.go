//go:build integration

package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
	"github.com/joao-fontenele/orderflow-placement/internal/testsupport"
)

type received struct {
	key     string
	payload []byte
	span    trace.SpanContext
}

func consumeInto(ctx context.Context, t *testing.T, consumer *Consumer) <-chan received {
	t.Helper()

	out := make(chan received, 1)
	go func() {
		_ = consumer.Consume(ctx, func(ctx context.Context, key string, payload []byte) error {
			select {
			case out <- received{key: key, payload: payload, span: trace.SpanContextFromContext(ctx)}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	return out
}

func TestKafkaRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	brokers := testsupport.SetupKafka(ctx, t)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		_ = tp.Shutdown(context.Background())
	})

	producer := NewProducer(brokers)
	defer func() { _ = producer.Close() }()

	t.Run("producer to consumer carries trace context", func(t *testing.T) {
		topic := "roundTripTopic"

		parentCtx, parent := tp.Tracer("test").Start(ctx, "place order")
		event := domain.OrderConfirmedEvent{OrderID: "order-1"}
		if err := producer.Send(parentCtx, topic, event.OrderID, event); err != nil {
			t.Fatalf("failed to send: %v", err)
		}
		parent.End()

		consumerCtx, stop := context.WithCancel(ctx)
		defer stop()

		consumer := NewConsumer(brokers, topic, "round-trip-test", WithStartOffset(kafka.FirstOffset))
		defer func() { _ = consumer.Close() }()

		select {
		case msg := <-consumeInto(consumerCtx, t, consumer):
			if msg.key != "order-1" {
				t.Errorf("expected key order-1, got %s", msg.key)
			}

			var got domain.OrderConfirmedEvent
			if err := json.Unmarshal(msg.payload, &got); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if got.OrderID != "order-1" {
				t.Errorf("expected order_id order-1, got %s", got.OrderID)
			}

			if msg.span.TraceID() != parent.SpanContext().TraceID() {
				t.Errorf("expected trace id %s, got %s", parent.SpanContext().TraceID(), msg.span.TraceID())
			}
		case <-time.After(time.Minute):
			t.Fatal("timed out waiting for message")
		}
	})

	t.Run("dispatcher delivers in the background", func(t *testing.T) {
		topic := "notificationTopic"

		dispatcher := NewDispatcher(producer, 8, 30*time.Second, discardLogger())

		if err := dispatcher.Publish(ctx, topic, domain.OrderConfirmedEvent{OrderID: "order-2"}); err != nil {
			t.Fatalf("unexpected publish error: %v", err)
		}

		closeCtx, closeCancel := context.WithTimeout(ctx, time.Minute)
		defer closeCancel()
		if err := dispatcher.Close(closeCtx); err != nil {
			t.Fatalf("failed to drain dispatcher: %v", err)
		}

		consumerCtx, stop := context.WithCancel(ctx)
		defer stop()

		consumer := NewConsumer(brokers, topic, "dispatcher-test", WithStartOffset(kafka.FirstOffset))
		defer func() { _ = consumer.Close() }()

		select {
		case msg := <-consumeInto(consumerCtx, t, consumer):
			if msg.key != "order-2" {
				t.Errorf("expected key order-2, got %s", msg.key)
			}
		case <-time.After(time.Minute):
			t.Fatal("timed out waiting for message")
		}
	})
}

package placement

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type instruments struct {
	attempts metric.Int64Counter
	duration metric.Float64Histogram
}

func newInstruments(provider metric.MeterProvider) (*instruments, error) {
	meter := provider.Meter("placement")

	attempts, err := meter.Int64Counter("orders.placement.attempts",
		metric.WithDescription("Order placement attempts by terminal state"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("orders.placement.duration",
		metric.WithDescription("Duration of order placement attempts"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &instruments{attempts: attempts, duration: duration}, nil
}

func (i *instruments) record(ctx context.Context, state State, started time.Time) {
	attrs := metric.WithAttributes(attribute.String("outcome", string(state)))
	i.attempts.Add(ctx, 1, attrs)
	i.duration.Record(ctx, time.Since(started).Seconds(), attrs)
}

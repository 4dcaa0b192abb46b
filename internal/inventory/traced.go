package inventory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

const lookupSpanName = "inventory-service-lookup"

type tracedChecker struct {
	next   Checker
	tracer trace.Tracer
}

// Traced wraps next in a span named after the downstream call. The span is
// ended whether or not the lookup succeeds.
func Traced(next Checker) Checker {
	return &tracedChecker{
		next:   next,
		tracer: otel.Tracer("inventory/client"),
	}
}

func (t *tracedChecker) CheckStock(ctx context.Context, skuCodes []string) ([]domain.InventoryAvailability, error) {
	ctx, span := t.tracer.Start(ctx, lookupSpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("call", "inventory-service"),
			attribute.Int("inventory.sku_count", len(skuCodes)),
		),
	)
	defer span.End()

	availability, err := t.next.CheckStock(ctx, skuCodes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("inventory.result_count", len(availability)))
	return availability, nil
}

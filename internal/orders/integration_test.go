//go:build integration

package orders

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
	"github.com/joao-fontenele/orderflow-placement/internal/telemetry"
	"github.com/joao-fontenele/orderflow-placement/internal/testsupport"
)

func TestOrderRepository_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	connStr := testsupport.SetupPostgres(ctx, t)

	db, err := telemetry.OpenDB("postgres", connStr)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewOrderRepository(db, DialectPostgres)

	t.Run("round trip", func(t *testing.T) {
		order := &domain.Order{
			ID:        "pg-order-1",
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			LineItems: []domain.OrderLineItem{
				{SkuCode: "iphone_17", Quantity: 2, UnitPrice: decimal.RequireFromString("999.99")},
				{SkuCode: "case", Quantity: 1, UnitPrice: decimal.RequireFromString("19.90")},
			},
		}

		if err := repo.Save(ctx, order); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := repo.GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.CreatedAt.Equal(order.CreatedAt) {
			t.Errorf("expected created_at %v, got %v", order.CreatedAt, got.CreatedAt)
		}
		if len(got.LineItems) != 2 {
			t.Fatalf("expected 2 line items, got %d", len(got.LineItems))
		}
		for i, want := range order.LineItems {
			item := got.LineItems[i]
			if item.SkuCode != want.SkuCode || item.Quantity != want.Quantity || !item.UnitPrice.Equal(want.UnitPrice) {
				t.Errorf("line item %d: expected %+v, got %+v", i, want, item)
			}
		}
	})

	t.Run("prices and quantities at storage limits round trip exactly", func(t *testing.T) {
		order := &domain.Order{
			ID:        "pg-order-edges",
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
			LineItems: []domain.OrderLineItem{
				{SkuCode: "a", Quantity: math.MaxInt32, UnitPrice: decimal.RequireFromString("0.01")},
				{SkuCode: "b", Quantity: 1, UnitPrice: decimal.RequireFromString("1.50")},
				{SkuCode: "c", Quantity: 1, UnitPrice: decimal.RequireFromString("123456789012345.99")},
				{SkuCode: "d", Quantity: 1, UnitPrice: decimal.Zero},
			},
		}

		if err := repo.Save(ctx, order); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := repo.GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.LineItems) != len(order.LineItems) {
			t.Fatalf("expected %d line items, got %d", len(order.LineItems), len(got.LineItems))
		}
		for i, want := range order.LineItems {
			item := got.LineItems[i]
			if item.Quantity != want.Quantity {
				t.Errorf("line item %d: expected quantity %d, got %d", i, want.Quantity, item.Quantity)
			}
			if !item.UnitPrice.Equal(want.UnitPrice) {
				t.Errorf("line item %d: expected price %s, got %s", i, want.UnitPrice, item.UnitPrice)
			}
		}
	})

	t.Run("failed save leaves nothing behind", func(t *testing.T) {
		order := &domain.Order{
			ID:        "pg-order-bad",
			CreatedAt: time.Now().UTC(),
			LineItems: []domain.OrderLineItem{
				{SkuCode: "iphone_17", Quantity: 1, UnitPrice: decimal.NewFromInt(999)},
				{SkuCode: "broken", Quantity: -1, UnitPrice: decimal.NewFromInt(1)},
			},
		}

		if err := repo.Save(ctx, order); err == nil {
			t.Fatal("expected error")
		}

		_, err := repo.GetByID(ctx, order.ID)
		if !errors.Is(err, ErrOrderNotFound) {
			t.Errorf("expected ErrOrderNotFound, got %v", err)
		}
	})
}

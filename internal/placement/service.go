// Package placement coordinates placing an order: it checks stock with the
// inventory authority, commits the order and notifies downstream consumers.
package placement

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

const SuccessMessage = "Order Placed Successfully"

// InventoryChecker reports availability for a batch of product codes.
type InventoryChecker interface {
	CheckStock(ctx context.Context, skuCodes []string) ([]domain.InventoryAvailability, error)
}

// OrderStore durably saves a whole order or nothing.
type OrderStore interface {
	Save(ctx context.Context, order *domain.Order) error
}

// EventPublisher submits an event for asynchronous delivery. A nil error only
// means the event was accepted, not that it was delivered.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event domain.OrderConfirmedEvent) error
}

type Result struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
	State   State  `json:"-"`
}

type Service struct {
	inventory InventoryChecker
	store     OrderStore
	publisher EventPublisher
	topic     string
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time
	meters    metric.MeterProvider
	metrics   *instruments
}

type Option func(*Service)

func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		s.now = fn
	}
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(s *Service) {
		s.meters = provider
	}
}

// NewService builds the workflow. publisher may be nil, in which case
// committed orders are not announced.
func NewService(inventory InventoryChecker, store OrderStore, publisher EventPublisher, topic string, logger *slog.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		inventory: inventory,
		store:     store,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		newID:     func() string { return uuid.New().String() },
		now:       func() time.Time { return time.Now().UTC() },
		meters:    otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(s)
	}

	metrics, err := newInstruments(s.meters)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics

	return s, nil
}

// PlaceOrder runs one placement attempt. Errors are one of *ValidationError,
// *InventoryLookupError, *StockUnavailableError or *StorageError.
func (s *Service) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*Result, error) {
	started := time.Now()
	orderID := s.newID()
	att := newAttempt(orderID, s.logger)

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("order.id", orderID))
	s.logger.InfoContext(ctx, "placing order", "order_id", orderID, "line_items", len(req.LineItems))

	result, err := s.place(ctx, att, req)

	state := att.finish(ctx, err)
	s.metrics.record(ctx, state, started)

	if err != nil {
		if state == StateRejected {
			s.logger.WarnContext(ctx, "order rejected", "order_id", orderID, "error", err)
		} else {
			s.logger.ErrorContext(ctx, "error in placing order", "order_id", orderID, "error", err)
		}
		return nil, err
	}

	result.State = state
	return result, nil
}

func (s *Service) place(ctx context.Context, att *attempt, req domain.OrderRequest) (*Result, error) {
	att.transition(ctx, StateValidating)
	if err := validate(req); err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:        att.orderID,
		LineItems: make([]domain.OrderLineItem, 0, len(req.LineItems)),
		CreatedAt: s.now(),
	}
	for _, item := range req.LineItems {
		order.LineItems = append(order.LineItems, domain.OrderLineItem{
			SkuCode:   item.SkuCode,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	skuCodes := distinctSkuCodes(order.LineItems)

	att.transition(ctx, StateCheckingInventory)
	availability, err := s.inventory.CheckStock(ctx, skuCodes)
	if err != nil {
		return nil, &InventoryLookupError{Err: err}
	}

	if missing := unavailable(skuCodes, availability); len(missing) > 0 {
		return nil, &StockUnavailableError{SkuCodes: missing}
	}

	att.transition(ctx, StateCommitting)
	s.logger.InfoContext(ctx, "all products in stock, saving order", "order_id", order.ID)
	if err := s.store.Save(ctx, order); err != nil {
		return nil, &StorageError{Err: err}
	}
	s.logger.InfoContext(ctx, "order saved", "order_id", order.ID)

	att.transition(ctx, StatePublishing)
	s.publish(ctx, order.ID)

	return &Result{OrderID: order.ID, Message: SuccessMessage}, nil
}

func (s *Service) publish(ctx context.Context, orderID string) {
	if s.publisher == nil {
		s.logger.WarnContext(ctx, "no event publisher configured, skipping notification", "order_id", orderID)
		return
	}

	event := domain.OrderConfirmedEvent{OrderID: orderID}
	if err := s.publisher.Publish(ctx, s.topic, event); err != nil {
		s.logger.WarnContext(ctx, "publish warning", "order_id", orderID, "topic", s.topic, "error", err)
		return
	}

	s.logger.InfoContext(ctx, "order confirmed event submitted", "order_id", orderID, "topic", s.topic)
}

// maxQuantity is the largest quantity the order store's INTEGER column holds.
const maxQuantity = math.MaxInt32

func validate(req domain.OrderRequest) error {
	if len(req.LineItems) == 0 {
		return &ValidationError{Field: "line_items", Index: -1, Reason: "must not be empty"}
	}

	for i, item := range req.LineItems {
		if strings.TrimSpace(item.SkuCode) == "" {
			return &ValidationError{Field: "sku_code", Index: i, Reason: "must not be empty"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: "quantity", Index: i, Reason: "must be at least 1"}
		}
		if item.Quantity > maxQuantity {
			return &ValidationError{Field: "quantity", Index: i, Reason: "is too large"}
		}
		if item.UnitPrice.IsNegative() {
			return &ValidationError{Field: "unit_price", Index: i, Reason: "must not be negative"}
		}
		// Stored prices have two decimal places.
		if !item.UnitPrice.Equal(item.UnitPrice.Round(2)) {
			return &ValidationError{Field: "unit_price", Index: i, Reason: "must have at most two decimal places"}
		}
	}

	return nil
}

func distinctSkuCodes(items []domain.OrderLineItem) []string {
	seen := make(map[string]struct{}, len(items))
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.SkuCode]; ok {
			continue
		}
		seen[item.SkuCode] = struct{}{}
		codes = append(codes, item.SkuCode)
	}
	return codes
}

// unavailable returns the requested codes that are not confirmed in stock, in
// request order. A code is confirmed only if it has at least one entry and all
// of its entries report in stock. Entries for unrequested codes are ignored.
func unavailable(requested []string, availability []domain.InventoryAvailability) []string {
	inStock := make(map[string]bool, len(requested))
	for _, a := range availability {
		prev, seen := inStock[a.SkuCode]
		if !seen {
			inStock[a.SkuCode] = a.InStock
			continue
		}
		inStock[a.SkuCode] = prev && a.InStock
	}

	var missing []string
	for _, code := range requested {
		if !inStock[code] {
			missing = append(missing, code)
		}
	}
	return missing
}

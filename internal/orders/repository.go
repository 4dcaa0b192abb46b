package orders

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// Dialect selects the bind parameter style of the underlying driver.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type OrderRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewOrderRepository(db *sql.DB, dialect Dialect) *OrderRepository {
	return &OrderRepository{db: db, dialect: dialect}
}

// rebind rewrites ? placeholders to $n for postgres.
func (r *OrderRepository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// Save writes the order and all of its line items in one transaction.
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.rebind(`
		INSERT INTO orders (id, created_at)
		VALUES (?, ?)
	`), order.ID, order.CreatedAt)
	if err != nil {
		return err
	}

	for i, item := range order.LineItems {
		_, err = tx.ExecContext(ctx, r.rebind(`
			INSERT INTO order_line_items (order_id, position, sku_code, quantity, unit_price)
			VALUES (?, ?, ?, ?, ?)
		`), order.ID, i, item.SkuCode, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, r.rebind(`
		SELECT id, created_at
		FROM orders
		WHERE id = ?
	`), id).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(`
		SELECT sku_code, quantity, unit_price
		FROM order_line_items
		WHERE order_id = ?
		ORDER BY position
	`), id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	order.LineItems = []domain.OrderLineItem{}
	for rows.Next() {
		var item domain.OrderLineItem
		if err := rows.Scan(&item.SkuCode, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order.LineItems = append(order.LineItems, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

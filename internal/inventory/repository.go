package inventory

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/joao-fontenele/orderflow-placement/internal/domain"
)

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// StockLevels returns the stock rows for the given codes. Unknown codes are
// omitted.
func (r *InventoryRepository) StockLevels(ctx context.Context, skuCodes []string) ([]domain.StockLevel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sku_code, quantity
		FROM inventory
		WHERE sku_code = ANY($1)
		ORDER BY sku_code
	`, pq.Array(skuCodes))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var levels []domain.StockLevel
	for rows.Next() {
		var level domain.StockLevel
		if err := rows.Scan(&level.SkuCode, &level.Quantity); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return levels, nil
}

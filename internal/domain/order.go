package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItemRequest struct {
	SkuCode   string          `json:"sku_code"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderRequest struct {
	LineItems []LineItemRequest `json:"line_items"`
}

type OrderLineItem struct {
	SkuCode   string          `json:"sku_code"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Order struct {
	ID        string          `json:"id"`
	LineItems []OrderLineItem `json:"line_items"`
	CreatedAt time.Time       `json:"created_at"`
}

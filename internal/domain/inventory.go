package domain

type StockLevel struct {
	SkuCode  string `json:"sku_code"`
	Quantity int    `json:"quantity"`
}

type InventoryAvailability struct {
	SkuCode string `json:"sku_code"`
	InStock bool   `json:"in_stock"`
}

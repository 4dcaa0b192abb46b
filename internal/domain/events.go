package domain

type OrderConfirmedEvent struct {
	OrderID string `json:"order_id"`
}

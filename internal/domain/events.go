package domain

import "time"

const (
	OrderSourceRemote   = "remote"
	OrderSourceFallback = "local-fallback"
)

type OrderPlacedEvent struct {
	OrderID       string      `json:"order_id"`
	OrderNumber   string      `json:"order_number"`
	CustomerEmail string      `json:"customer_email"`
	Total         Amount      `json:"total"`
	Source        string      `json:"source"`
	Items         []OrderItem `json:"items"`
	Timestamp     time.Time   `json:"timestamp"`
}

package domain

import (
	"strings"
	"time"
)

const (
	StatusPending   = "Pending"
	StatusShipping  = "Shipping"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"

	PaymentMethodCOD = "COD"
)

// LocalOrderPrefix marks order ids minted by the local fallback store.
const LocalOrderPrefix = "local-order-"

// LocalProductPrefix marks products that exist only in the local catalog
// and must never be written to the remote store.
const LocalProductPrefix = "local-"

type OrderItem struct {
	OrderID         string `json:"order_id,omitempty"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"product_name"`
	ColorName       string `json:"color_name"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase Amount `json:"price_at_purchase"`
}

type Order struct {
	ID              string      `json:"id"`
	OrderNumber     string      `json:"orderNumber"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	ShippingAddress string      `json:"shipping_address"`
	TotalAmount     Amount      `json:"total_amount"`
	Status          string      `json:"status"`
	PaymentStatus   string      `json:"payment_status"`
	PaymentMethod   string      `json:"payment_method"`
	CreatedAt       time.Time   `json:"created_at"`
	Items           []OrderItem `json:"items"`
}

// IsLocal reports whether the order lives in the local fallback store.
func (o *Order) IsLocal() bool {
	return strings.HasPrefix(o.ID, LocalOrderPrefix)
}

// OrderNumberFromID derives the human-facing order code from a store id.
// Local ids all share a long timestamp prefix, so their code is taken from
// the tail of the id, where the random suffix lives.
func OrderNumberFromID(id string) string {
	if rest, ok := strings.CutPrefix(id, LocalOrderPrefix); ok {
		s := strings.ReplaceAll(rest, "-", "")
		if len(s) > 8 {
			s = s[len(s)-8:]
		}
		return "ORD-" + strings.ToUpper(s)
	}
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 8 {
		s = s[:8]
	}
	return "ORD-" + strings.ToUpper(s)
}

// IsLocalProduct reports whether a product id belongs to the local-only
// catalog namespace.
func IsLocalProduct(productID string) bool {
	return strings.HasPrefix(productID, LocalProductPrefix)
}

type PaymentSession struct {
	PaymentID string    `json:"paymentId"`
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Methods   []string  `json:"methods"`
}

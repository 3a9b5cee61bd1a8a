package domain

import "time"

type ProductVariant struct {
	ID            string   `json:"id"`
	ProductID     string   `json:"product_id"`
	ColorName     string   `json:"color_name"`
	ColorHex      string   `json:"color_hex,omitempty"`
	ColorValue    string   `json:"color_value"`
	StockQuantity int      `json:"stock_quantity"`
	Images        []string `json:"images"`
}

type Product struct {
	ID             string           `json:"id"`
	Title          string           `json:"title"`
	Name           string           `json:"name,omitempty"`
	Slug           string           `json:"slug,omitempty"`
	Description    string           `json:"description"`
	BasePrice      Amount           `json:"base_price"`
	Category       string           `json:"category"`
	CollectionSlug string           `json:"collection_slug,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	Variants       []ProductVariant `json:"product_variants"`
}

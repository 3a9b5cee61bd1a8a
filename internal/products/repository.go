package products

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/maieesaree/saree-backend/internal/domain"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, base_price, category, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	productMap := make(map[string]*domain.Product)
	var productIDs []string

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.BasePrice,
			&p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Name = p.Title
		p.Variants = []domain.ProductVariant{}
		productMap[p.ID] = &p
		productIDs = append(productIDs, p.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(productIDs) == 0 {
		return []domain.Product{}, nil
	}

	variantRows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, color_name, color_value, stock_quantity, images
		FROM product_variants
		WHERE product_id = ANY($1)
	`, pq.Array(productIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = variantRows.Close() }()

	for variantRows.Next() {
		var v domain.ProductVariant
		if err := variantRows.Scan(&v.ID, &v.ProductID, &v.ColorName,
			&v.ColorValue, &v.StockQuantity, pq.Array(&v.Images)); err != nil {
			return nil, err
		}
		v.ColorHex = v.ColorValue
		product := productMap[v.ProductID]
		product.Variants = append(product.Variants, v)
	}

	if err := variantRows.Err(); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(productIDs))
	for _, id := range productIDs {
		products = append(products, *productMap[id])
	}

	return products, nil
}

// Create inserts the product and its initial variant in one transaction.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, title, description, base_price, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, product.ID, product.Title, product.Description, product.BasePrice,
		product.Category, product.CreatedAt)
	if err != nil {
		return err
	}

	for i := range product.Variants {
		product.Variants[i].ProductID = product.ID
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.New().String()
		}
		v := product.Variants[i]
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_variants (id, product_id, color_name, color_value, stock_quantity, images)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, v.ID, v.ProductID, v.ColorName, v.ColorValue, v.StockQuantity, pq.Array(v.Images))
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

type UpdateInput struct {
	Title       string
	Description string
	BasePrice   domain.Amount
	Category    string
}

func (r *ProductRepository) Update(ctx context.Context, id string, in UpdateInput) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET title = $2, description = $3, base_price = $4, category = $5, updated_at = NOW()
		WHERE id = $1
	`, id, in.Title, in.Description, in.BasePrice, in.Category)
	return err
}

func (r *ProductRepository) UpdateStock(ctx context.Context, productID string, stock int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE product_variants
		SET stock_quantity = $2
		WHERE product_id = $1
	`, productID, stock)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

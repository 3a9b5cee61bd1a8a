// Package localstore is the file-backed fallback for the primary database.
// Orders placed while the remote store is unreachable land here, and the
// catalog handlers patch local products here when their remote writes fail.
// The on-disk format is two JSON documents, each an object with a single
// named list, so the files stay readable by external tooling.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/maieesaree/saree-backend/internal/domain"
)

var ErrNotFound = errors.New("not found in local store")

const (
	ordersFileName   = "orders.local.json"
	productsFileName = "products.local.json"
	lockFileName     = ".lock"
)

type ordersDoc struct {
	Orders []domain.Order `json:"orders"`
}

type productsDoc struct {
	Products []domain.Product `json:"products"`
}

// Store serializes every read-modify-write cycle so concurrent fallback
// requests cannot lose each other's updates. The mutex covers goroutines
// within one process; the advisory file lock covers the server and the
// resync worker, which mutate the same data dir from separate processes.
type Store struct {
	mu      sync.Mutex
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// NewLocalOrderID mints an id in the local namespace.
func NewLocalOrderID() string {
	suffix := uuid.NewString()[:5]
	return fmt.Sprintf("%s%d-%s", domain.LocalOrderPrefix, time.Now().UnixMilli(), suffix)
}

// lock takes the in-process mutex and an exclusive flock on the data dir's
// lock file. The returned function releases both.
func (s *Store) lock() (func(), error) {
	s.mu.Lock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.dataDir, lockFileName), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		_ = f.Close()
		s.mu.Unlock()
		return nil, fmt.Errorf("lock data dir: %w", err)
	}

	return func() {
		_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		_ = f.Close()
		s.mu.Unlock()
	}, nil
}

func (s *Store) ReadOrders() ([]domain.Order, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.readOrdersDoc()
	if err != nil {
		return nil, err
	}
	return doc.Orders, nil
}

func (s *Store) WriteOrders(orders []domain.Order) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return s.writeDoc(ordersFileName, ordersDoc{Orders: orders})
}

// PrependOrder puts the order at the head of the list, newest first.
func (s *Store) PrependOrder(order domain.Order) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.readOrdersDoc()
	if err != nil {
		return err
	}
	doc.Orders = append([]domain.Order{order}, doc.Orders...)
	return s.writeDoc(ordersFileName, doc)
}

// RemoveOrder drops the order with the given id, if present.
func (s *Store) RemoveOrder(id string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.readOrdersDoc()
	if err != nil {
		return err
	}
	kept := doc.Orders[:0]
	for _, o := range doc.Orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	doc.Orders = kept
	return s.writeDoc(ordersFileName, doc)
}

// UpdateOrderStatus sets the workflow status of a local order.
// Returns ErrNotFound if no order has the given id.
func (s *Store) UpdateOrderStatus(id, status string) (*domain.Order, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.readOrdersDoc()
	if err != nil {
		return nil, err
	}
	for i := range doc.Orders {
		if doc.Orders[i].ID == id {
			doc.Orders[i].Status = status
			if err := s.writeDoc(ordersFileName, doc); err != nil {
				return nil, err
			}
			order := doc.Orders[i]
			return &order, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) ReadProducts() ([]domain.Product, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.readProductsDoc()
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

func (s *Store) WriteProducts(products []domain.Product) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return s.writeDoc(productsFileName, productsDoc{Products: products})
}

// UpdateProduct applies mutate to the product with the given id and
// persists the whole list. Returns ErrNotFound when the id is unknown.
func (s *Store) UpdateProduct(id string, mutate func(*domain.Product)) (*domain.Product, error) {
	unlock, err := s.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	doc, err := s.readProductsDoc()
	if err != nil {
		return nil, err
	}
	for i := range doc.Products {
		if doc.Products[i].ID == id {
			mutate(&doc.Products[i])
			doc.Products[i].UpdatedAt = time.Now().UTC()
			if err := s.writeDoc(productsFileName, doc); err != nil {
				return nil, err
			}
			p := doc.Products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

// DeleteProduct removes a product from the local list. Deleting an id
// that is not present is not an error.
func (s *Store) DeleteProduct(id string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.readProductsDoc()
	if err != nil {
		return err
	}
	kept := doc.Products[:0]
	for _, p := range doc.Products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	doc.Products = kept
	return s.writeDoc(productsFileName, doc)
}

// DeductStock lowers local product stock for each order item whose
// product_id exists in the local list, clamping at zero. Items for
// products not stored locally are skipped.
func (s *Store) DeductStock(items []domain.OrderItem) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.readProductsDoc()
	if err != nil {
		return err
	}

	changed := false
	for _, item := range items {
		for i := range doc.Products {
			if doc.Products[i].ID != item.ProductID {
				continue
			}
			v := variantForColor(&doc.Products[i], item.ColorName)
			if v == nil {
				break
			}
			next := v.StockQuantity - item.Quantity
			if next < 0 {
				next = 0
			}
			if next != v.StockQuantity {
				v.StockQuantity = next
				doc.Products[i].UpdatedAt = time.Now().UTC()
				changed = true
			}
			break
		}
	}

	if !changed {
		return nil
	}
	return s.writeDoc(productsFileName, doc)
}

// variantForColor picks the variant matching the color name, or the first
// variant when there is no match.
func variantForColor(p *domain.Product, color string) *domain.ProductVariant {
	for i := range p.Variants {
		if p.Variants[i].ColorName == color {
			return &p.Variants[i]
		}
	}
	if len(p.Variants) > 0 {
		return &p.Variants[0]
	}
	return nil
}

// readOrdersDoc materializes the empty document on first access so the
// file exists for external tooling even before the first fallback write.
func (s *Store) readOrdersDoc() (ordersDoc, error) {
	var doc ordersDoc
	found, err := s.readDoc(ordersFileName, &doc)
	if err != nil {
		return ordersDoc{}, err
	}
	if doc.Orders == nil {
		doc.Orders = []domain.Order{}
	}
	if !found {
		if err := s.writeDoc(ordersFileName, doc); err != nil {
			return ordersDoc{}, err
		}
	}
	return doc, nil
}

func (s *Store) readProductsDoc() (productsDoc, error) {
	var doc productsDoc
	found, err := s.readDoc(productsFileName, &doc)
	if err != nil {
		return productsDoc{}, err
	}
	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	if !found {
		if err := s.writeDoc(productsFileName, doc); err != nil {
			return productsDoc{}, err
		}
	}
	return doc, nil
}

func (s *Store) readDoc(name string, out any) (bool, error) {
	path := filepath.Join(s.dataDir, name)
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// writeDoc overwrites the whole file with the serialized document.
func (s *Store) writeDoc(name string, doc any) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dataDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

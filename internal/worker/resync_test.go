package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/maieesaree/saree-backend/internal/domain"
)

type stubRemote struct {
	pingErr    error
	existing   map[string]*domain.Order
	created    []domain.Order
	createErr  error
	deductions map[string]int
}

func (s *stubRemote) Ping(ctx context.Context) error { return s.pingErr }

func (s *stubRemote) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.existing[id], nil
}

func (s *stubRemote) Create(ctx context.Context, order *domain.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, *order)
	return nil
}

func (s *stubRemote) DeductStock(ctx context.Context, productID string, quantity int) error {
	if s.deductions == nil {
		s.deductions = map[string]int{}
	}
	s.deductions[productID] += quantity
	return nil
}

type stubLocal struct {
	orders  []domain.Order
	removed []string
}

func (s *stubLocal) ReadOrders() ([]domain.Order, error) { return s.orders, nil }

func (s *stubLocal) RemoveOrder(id string) error {
	s.removed = append(s.removed, id)
	kept := s.orders[:0]
	for _, o := range s.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	s.orders = kept
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func localOrder(id string) domain.Order {
	return domain.Order{
		ID:          id,
		OrderNumber: domain.OrderNumberFromID(id),
		Items: []domain.OrderItem{
			{ProductID: "p1", ProductName: "Silk Saree", Quantity: 2},
		},
	}
}

func TestResyncOnce(t *testing.T) {
	t.Run("replays pending orders and prunes the local file", func(t *testing.T) {
		remote := &stubRemote{}
		local := &stubLocal{orders: []domain.Order{localOrder("local-order-1735689600000-a3f9c")}}
		w := NewResyncWorker(remote, local, 0, discardLogger())

		w.ResyncOnce(context.Background())

		if len(remote.created) != 1 {
			t.Fatalf("expected 1 replayed order, got %d", len(remote.created))
		}
		if remote.created[0].ID != "local-order-1735689600000-a3f9c" {
			t.Fatalf("expected local id to be kept, got %s", remote.created[0].ID)
		}
		if remote.deductions["p1"] != 2 {
			t.Fatalf("expected remote stock deduction of 2, got %d", remote.deductions["p1"])
		}
		if len(local.orders) != 0 {
			t.Fatalf("expected local file drained, %d orders left", len(local.orders))
		}
	})

	t.Run("keeps orders while the primary store is down", func(t *testing.T) {
		remote := &stubRemote{pingErr: fmt.Errorf("connection refused")}
		local := &stubLocal{orders: []domain.Order{localOrder("local-order-1-aaaaa")}}
		w := NewResyncWorker(remote, local, 0, discardLogger())

		w.ResyncOnce(context.Background())

		if len(remote.created) != 0 {
			t.Fatalf("expected no replays, got %d", len(remote.created))
		}
		if len(local.orders) != 1 {
			t.Fatalf("expected local order kept, got %d", len(local.orders))
		}
	})

	t.Run("keeps the local copy when replay fails", func(t *testing.T) {
		remote := &stubRemote{createErr: fmt.Errorf("constraint violation")}
		local := &stubLocal{orders: []domain.Order{localOrder("local-order-1-aaaaa")}}
		w := NewResyncWorker(remote, local, 0, discardLogger())

		w.ResyncOnce(context.Background())

		if len(local.orders) != 1 {
			t.Fatalf("expected local order kept after failed replay, got %d", len(local.orders))
		}
	})

	t.Run("prunes orders that were already replayed", func(t *testing.T) {
		order := localOrder("local-order-1-aaaaa")
		remote := &stubRemote{existing: map[string]*domain.Order{order.ID: &order}}
		local := &stubLocal{orders: []domain.Order{order}}
		w := NewResyncWorker(remote, local, 0, discardLogger())

		w.ResyncOnce(context.Background())

		if len(remote.created) != 0 {
			t.Fatalf("expected no duplicate insert, got %d", len(remote.created))
		}
		if len(local.orders) != 0 {
			t.Fatalf("expected local copy pruned, got %d", len(local.orders))
		}
	})

	t.Run("leaves orders for local-only products in place", func(t *testing.T) {
		order := localOrder("local-order-1-aaaaa")
		order.Items = append(order.Items, domain.OrderItem{ProductID: "local-handloom-1", Quantity: 1})
		remote := &stubRemote{}
		local := &stubLocal{orders: []domain.Order{order}}
		w := NewResyncWorker(remote, local, 0, discardLogger())

		w.ResyncOnce(context.Background())

		if len(remote.created) != 0 {
			t.Fatalf("expected no replay for local-only products, got %d", len(remote.created))
		}
		if len(remote.deductions) != 0 {
			t.Fatalf("expected no remote deductions, got %v", remote.deductions)
		}
		if len(local.orders) != 1 {
			t.Fatalf("expected order kept in local file, got %d", len(local.orders))
		}
	})

	t.Run("does not ping when there is nothing to replay", func(t *testing.T) {
		remote := &stubRemote{pingErr: fmt.Errorf("down")}
		local := &stubLocal{}
		w := NewResyncWorker(remote, local, 0, discardLogger())

		w.ResyncOnce(context.Background())

		if len(remote.created) != 0 || len(local.removed) != 0 {
			t.Fatal("expected a no-op pass")
		}
	})
}

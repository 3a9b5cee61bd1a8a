package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/maieesaree/saree-backend/internal/domain"
)

// RemoteOrders is the primary-store surface the resync loop needs.
// *orders.OrderRepository satisfies it.
type RemoteOrders interface {
	Ping(ctx context.Context) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	DeductStock(ctx context.Context, productID string, quantity int) error
}

// LocalOrders is the fallback file the loop drains.
type LocalOrders interface {
	ReadOrders() ([]domain.Order, error)
	RemoveOrder(id string) error
}

// ResyncWorker periodically replays orders captured in the local fallback
// file into the primary store once it is reachable again. Replayed orders
// keep their local ids so links handed to customers stay valid.
type ResyncWorker struct {
	remote   RemoteOrders
	local    LocalOrders
	interval time.Duration
	logger   *slog.Logger
}

func NewResyncWorker(remote RemoteOrders, local LocalOrders, interval time.Duration, logger *slog.Logger) *ResyncWorker {
	return &ResyncWorker{
		remote:   remote,
		local:    local,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled, attempting one resync pass
// per tick.
func (w *ResyncWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.ResyncOnce(ctx)
		}
	}
}

// ResyncOnce replays every pending local order. Orders are removed from
// the local file only after the primary store accepted them, so a crash
// mid-pass retries instead of dropping orders.
func (w *ResyncWorker) ResyncOnce(ctx context.Context) {
	pending, err := w.local.ReadOrders()
	if err != nil {
		w.logger.Error("failed to read local orders", "error", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	if err := w.remote.Ping(ctx); err != nil {
		w.logger.Warn("primary store still unreachable, keeping local orders", "error", err, "pending", len(pending))
		return
	}

	w.logger.Info("resyncing local orders", "pending", len(pending))

	for _, order := range pending {
		// Orders for local-only products have no remote counterpart and
		// stay in the local file.
		if hasLocalProducts(order) {
			continue
		}

		// An earlier pass may have inserted the order and then crashed
		// before pruning the local file. Skip straight to the prune.
		existing, err := w.remote.GetByID(ctx, order.ID)
		if err != nil {
			w.logger.Error("failed to check for replayed order", "error", err, "order_id", order.ID)
			continue
		}
		if existing != nil {
			if err := w.local.RemoveOrder(order.ID); err != nil {
				w.logger.Error("failed to remove resynced order from local store", "error", err, "order_id", order.ID)
			}
			continue
		}

		if err := w.remote.Create(ctx, &order); err != nil {
			w.logger.Error("failed to replay local order", "error", err, "order_id", order.ID)
			continue
		}

		for _, item := range order.Items {
			if err := w.remote.DeductStock(ctx, item.ProductID, item.Quantity); err != nil {
				w.logger.Warn("failed to deduct stock during resync",
					"error", err, "order_id", order.ID, "product_id", item.ProductID)
			}
		}

		if err := w.local.RemoveOrder(order.ID); err != nil {
			w.logger.Error("failed to remove resynced order from local store", "error", err, "order_id", order.ID)
			continue
		}

		w.logger.Info("order resynced", "order_id", order.ID, "order_number", order.OrderNumber)
	}
}

func hasLocalProducts(order domain.Order) bool {
	for _, item := range order.Items {
		if domain.IsLocalProduct(item.ProductID) {
			return true
		}
	}
	return false
}

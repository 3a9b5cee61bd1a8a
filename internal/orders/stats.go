package orders

import (
	"context"
	"log/slog"

	"github.com/maieesaree/saree-backend/internal/domain"
	"github.com/maieesaree/saree-backend/internal/localstore"
)

// RemoteLister is the read side of the primary store. *OrderRepository
// satisfies it.
type RemoteLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

type Stats struct {
	TotalOrders     int     `json:"total_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	PendingOrders   int     `json:"pending_orders"`
	ShippingOrders  int     `json:"shipping_orders"`
	CompletedOrders int     `json:"completed_orders"`
}

// Reporter merges remote and local order records for the admin endpoints.
// Neither operation fails outward: a broken remote store degrades the
// result and sets the warning flag.
type Reporter struct {
	remote RemoteLister
	local  *localstore.Store
	logger *slog.Logger
}

func NewReporter(remote RemoteLister, local *localstore.Store, logger *slog.Logger) *Reporter {
	return &Reporter{
		remote: remote,
		local:  local,
		logger: logger,
	}
}

// ListOrders returns local fallback orders prepended before remote orders.
// This is not a chronological merge across stores; fallback orders always
// come first. The bool result reports degraded mode.
func (r *Reporter) ListOrders(ctx context.Context) ([]domain.Order, bool) {
	local, err := r.local.ReadOrders()
	if err != nil {
		r.logger.Error("failed to read local orders", "error", err)
		local = nil
	}

	remote, err := r.remote.List(ctx)
	if err != nil {
		r.logger.Error("remote order listing failed, serving local orders only", "error", err)
		return local, true
	}

	merged := make([]domain.Order, 0, len(local)+len(remote))
	merged = append(merged, local...)
	merged = append(merged, remote...)
	return merged, false
}

// ComputeStats folds order counts and revenue over both stores. When the
// remote store is unreachable it reports all zeros with the degraded flag
// set rather than failing the request.
func (r *Reporter) ComputeStats(ctx context.Context) (Stats, bool) {
	remote, err := r.remote.List(ctx)
	if err != nil {
		r.logger.Error("remote order listing failed, reporting zeroed stats", "error", err)
		return Stats{}, true
	}

	local, err := r.local.ReadOrders()
	if err != nil {
		r.logger.Error("failed to read local orders", "error", err)
		local = nil
	}

	var stats Stats
	fold := func(orders []domain.Order) {
		for _, o := range orders {
			stats.TotalOrders++
			stats.TotalRevenue += float64(o.TotalAmount)
			if o.Status == domain.StatusPending || o.PaymentStatus == domain.StatusPending {
				stats.PendingOrders++
			}
			if o.Status == domain.StatusShipping || o.Status == domain.StatusShipped {
				stats.ShippingOrders++
			}
			if o.PaymentStatus == domain.StatusDelivered {
				stats.CompletedOrders++
			}
		}
	}
	fold(local)
	fold(remote)

	return stats, false
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/maieesaree/saree-backend/internal/domain"
	"github.com/maieesaree/saree-backend/internal/localstore"
)

var (
	ErrPhoneMissing  = errors.New("phone missing")
	ErrEmptyOrder    = errors.New("empty order")
	ErrOrderNotFound = errors.New("order not found")
)

// IsValidation reports whether the error is a request-validation failure
// that should surface as a 4xx, never a store failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrPhoneMissing) || errors.Is(err, ErrEmptyOrder)
}

// RemoteStore is the slice of the primary database the placement
// orchestrator needs. *OrderRepository satisfies it.
type RemoteStore interface {
	Create(ctx context.Context, order *domain.Order) error
	DeductStock(ctx context.Context, productID string, quantity int) error
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
}

// Publisher emits order lifecycle events. A nil Publisher disables events.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ItemInput struct {
	ProductID string        `json:"product_id"`
	Name      string        `json:"name"`
	Color     string        `json:"color"`
	Quantity  int           `json:"quantity"`
	Price     domain.Amount `json:"price"`
}

type PlaceOrderInput struct {
	CustomerDetails CustomerDetails `json:"customer_details"`
	ShippingAddress string          `json:"shipping_address"`
	Items           []ItemInput     `json:"items"`
	TotalAmount     domain.Amount   `json:"total_amount"`
}

type PlacementResult struct {
	Order   domain.Order
	Session domain.PaymentSession
	Source  string
}

// Service places orders against the remote store and redirects the same
// request into the local fallback store when the remote path fails.
type Service struct {
	remote   RemoteStore
	local    *localstore.Store
	producer Publisher
	logger   *slog.Logger
}

func NewService(remote RemoteStore, local *localstore.Store, producer Publisher, logger *slog.Logger) *Service {
	return &Service{
		remote:   remote,
		local:    local,
		producer: producer,
		logger:   logger,
	}
}

func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlacementResult, error) {
	if in.CustomerDetails.Phone == "" {
		return nil, ErrPhoneMissing
	}
	if len(in.Items) == 0 {
		return nil, ErrEmptyOrder
	}

	order := domain.Order{
		CustomerName:    in.CustomerDetails.Name,
		CustomerEmail:   in.CustomerDetails.Email,
		CustomerPhone:   in.CustomerDetails.Phone,
		ShippingAddress: in.ShippingAddress,
		TotalAmount:     in.TotalAmount,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.StatusPending,
		PaymentMethod:   domain.PaymentMethodCOD,
		CreatedAt:       time.Now().UTC(),
		Items:           make([]domain.OrderItem, 0, len(in.Items)),
	}

	var itemSum float64
	localOnly := false
	for _, it := range in.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:       it.ProductID,
			ProductName:     it.Name,
			ColorName:       it.Color,
			Quantity:        it.Quantity,
			PriceAtPurchase: it.Price,
		})
		itemSum += float64(it.Price) * float64(it.Quantity)
		if domain.IsLocalProduct(it.ProductID) {
			localOnly = true
		}
	}

	// The total is trusted as sent; a mismatch is only worth a warning.
	if math.Abs(itemSum-float64(in.TotalAmount)) > 0.01 {
		s.logger.Warn("client total disagrees with item sum",
			"total_amount", float64(in.TotalAmount), "item_sum", itemSum)
	}

	if localOnly {
		s.logger.Info("order contains local-only products, skipping remote store")
		return s.placeFallback(ctx, order)
	}

	if err := s.remote.Create(ctx, &order); err != nil {
		s.logger.Error("remote order insert failed, falling back to local store", "error", err)
		return s.placeFallback(ctx, order)
	}

	// Deduction is best-effort per item: one failure never unwinds the
	// order or the other items.
	for _, item := range order.Items {
		if err := s.remote.DeductStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn("stock deduction failed", "error", err,
				"order_id", order.ID, "product_id", item.ProductID)
		}
	}

	s.logger.Info("order placed", "order_id", order.ID, "order_number", order.OrderNumber)
	s.publishPlaced(ctx, order, domain.OrderSourceRemote)

	return &PlacementResult{
		Order:   order,
		Session: newPaymentSession(),
		Source:  domain.OrderSourceRemote,
	}, nil
}

func (s *Service) placeFallback(ctx context.Context, order domain.Order) (*PlacementResult, error) {
	order.ID = localstore.NewLocalOrderID()
	order.OrderNumber = domain.OrderNumberFromID(order.ID)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if err := s.local.PrependOrder(order); err != nil {
		return nil, fmt.Errorf("local fallback store: %w", err)
	}

	if err := s.local.DeductStock(order.Items); err != nil {
		s.logger.Warn("local stock deduction failed", "error", err, "order_id", order.ID)
	}

	s.logger.Info("order placed via local fallback", "order_id", order.ID, "order_number", order.OrderNumber)
	s.publishPlaced(ctx, order, domain.OrderSourceFallback)

	return &PlacementResult{
		Order:   order,
		Session: newPaymentSession(),
		Source:  domain.OrderSourceFallback,
	}, nil
}

func (s *Service) publishPlaced(ctx context.Context, order domain.Order, source string) {
	if s.producer == nil {
		return
	}
	event := domain.OrderPlacedEvent{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerEmail: order.CustomerEmail,
		Total:         order.TotalAmount,
		Source:        source,
		Items:         order.Items,
		Timestamp:     order.CreatedAt,
	}
	if err := s.producer.Publish(ctx, order.ID, event); err != nil {
		s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
	}
}

// UpdateStatus tries the remote store first and falls through to the
// local fallback store, so orders keep working after a resync moves them.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	order, err := s.remote.UpdateStatus(ctx, id, status)
	if err != nil {
		s.logger.Error("remote status update failed, trying local store", "error", err, "id", id)
	} else if order != nil {
		return order, nil
	}

	local, localErr := s.local.UpdateOrderStatus(id, status)
	if localErr == nil {
		return local, nil
	}
	if !errors.Is(localErr, localstore.ErrNotFound) {
		return nil, fmt.Errorf("local status update: %w", localErr)
	}
	if err != nil {
		return nil, fmt.Errorf("remote status update: %w", err)
	}
	return nil, ErrOrderNotFound
}

// newPaymentSession builds the placeholder payment envelope. No gateway is
// integrated; COD and UPI are offered and the session expires in 15 minutes.
func newPaymentSession() domain.PaymentSession {
	return domain.PaymentSession{
		PaymentID: uuid.New().String(),
		SessionID: uuid.New().String(),
		ExpiresAt: time.Now().UTC().Add(15 * time.Minute),
		Methods:   []string{"cod", "upi"},
	}
}

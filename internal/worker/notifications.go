package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/maieesaree/saree-backend/internal/domain"
	"github.com/maieesaree/saree-backend/internal/notify"
)

// ConfirmationHandler turns order placed events into confirmation emails.
type ConfirmationHandler struct {
	emails *notify.EmailSender
	logger *slog.Logger
}

func NewConfirmationHandler(emails *notify.EmailSender, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{emails: emails, logger: logger}
}

func (h *ConfirmationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order placed event: %w", err)
	}

	h.logger.Info("processing order placed event",
		"order_id", event.OrderID, "order_number", event.OrderNumber, "source", event.Source)

	if event.CustomerEmail == "" {
		h.logger.Warn("order has no customer email, skipping confirmation", "order_id", event.OrderID)
		return nil
	}

	email := notify.Email{
		To:      event.CustomerEmail,
		Subject: "Order Confirmation: " + event.OrderNumber,
		Body: fmt.Sprintf("Your order %s with %d item(s) totalling %.2f has been received and is pending.",
			event.OrderNumber, len(event.Items), float64(event.Total)),
	}
	if err := h.emails.Send(ctx, email); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	h.logger.Info("confirmation email sent", "order_id", event.OrderID, "to", event.CustomerEmail)
	return nil
}

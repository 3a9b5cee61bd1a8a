package worker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maieesaree/saree-backend/internal/domain"
	"github.com/maieesaree/saree-backend/internal/notify"
)

func TestConfirmationHandler(t *testing.T) {
	event := domain.OrderPlacedEvent{
		OrderID:       "o1",
		OrderNumber:   "ORD-8D3F1A2B",
		CustomerEmail: "a@example.com",
		Total:         1000,
		Source:        domain.OrderSourceRemote,
		Items:         []domain.OrderItem{{ProductID: "p1", Quantity: 2}},
		Timestamp:     time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	t.Run("sends confirmation email", func(t *testing.T) {
		var got notify.Email
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode email: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		h := NewConfirmationHandler(notify.NewEmailSender(srv.URL, srv.Client()), discardLogger())
		if err := h.Handle(context.Background(), payload); err != nil {
			t.Fatalf("handle: %v", err)
		}
		if got.To != "a@example.com" {
			t.Fatalf("unexpected recipient: %s", got.To)
		}
		if got.Subject != "Order Confirmation: ORD-8D3F1A2B" {
			t.Fatalf("unexpected subject: %s", got.Subject)
		}
	})

	t.Run("skips orders without an email address", func(t *testing.T) {
		anonymous := event
		anonymous.CustomerEmail = ""
		raw, _ := json.Marshal(anonymous)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("email service should not be called")
		}))
		defer srv.Close()

		h := NewConfirmationHandler(notify.NewEmailSender(srv.URL, srv.Client()), discardLogger())
		if err := h.Handle(context.Background(), raw); err != nil {
			t.Fatalf("handle: %v", err)
		}
	})

	t.Run("rejects malformed payloads", func(t *testing.T) {
		h := NewConfirmationHandler(notify.NewEmailSender("http://localhost:0", nil), discardLogger())
		if err := h.Handle(context.Background(), []byte("not json")); err == nil {
			t.Fatal("expected error")
		}
	})
}

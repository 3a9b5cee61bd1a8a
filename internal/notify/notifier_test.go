package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	t.Run("posts email payload", func(t *testing.T) {
		var got Email
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/send" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("decode body: %v", err)
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		s := NewEmailSender(srv.URL, srv.Client())
		err := s.Send(context.Background(), Email{
			To:      "customer@example.com",
			Subject: "Order Confirmation: ORD-8D3F1A2B",
			Body:    "Thank you for your order.",
		})
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if got.To != "customer@example.com" || got.Subject != "Order Confirmation: ORD-8D3F1A2B" {
			t.Fatalf("unexpected payload: %+v", got)
		}
	})

	t.Run("surfaces non-200 responses", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		s := NewEmailSender(srv.URL, srv.Client())
		if err := s.Send(context.Background(), Email{To: "x@example.com"}); err == nil {
			t.Fatal("expected error")
		}
	})
}

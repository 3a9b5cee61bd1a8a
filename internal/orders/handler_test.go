package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maieesaree/saree-backend/internal/domain"
	"github.com/maieesaree/saree-backend/internal/localstore"
)

func newTestHandler(t *testing.T, remote *stubRemote) (*Handler, *localstore.Store) {
	t.Helper()
	local := localstore.New(t.TempDir())
	logger := discardLogger()
	service := NewService(remote, local, nil, logger)
	reporter := NewReporter(&stubLister{}, local, logger)
	return NewHandler(service, reporter, logger), local
}

func TestHandlePlace(t *testing.T) {
	t.Run("valid order", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{})

		body := `{"customer_details":{"name":"A","email":"a@x.com","phone":"123"},"shipping_address":"12 MG Road","items":[{"product_id":"p1","name":"Saree","color":"Red","quantity":2,"price":500}],"total_amount":1000}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandlePlace(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp["success"] != true {
			t.Fatalf("expected success, got %v", resp)
		}
		if resp["orderId"] == "" || resp["orderId"] != resp["order_id"] {
			t.Fatalf("expected matching orderId/order_id, got %v", resp)
		}
		if resp["total"].(float64) != 1000 {
			t.Fatalf("expected total 1000, got %v", resp["total"])
		}
		session := resp["paymentSession"].(map[string]any)
		if session["paymentId"] == "" || session["sessionId"] == "" {
			t.Fatalf("expected payment session ids, got %v", session)
		}
		if rec.Header().Get(ServeModeHeader) != "" {
			t.Fatal("remote path must not set the serve-mode header")
		}
	})

	t.Run("missing phone is a 400", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{})

		body := `{"customer_details":{"name":"A","email":"a@x.com"},"items":[{"product_id":"p1","quantity":1,"price":10}],"total_amount":10}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandlePlace(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		var resp map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["error"] != "phone missing" {
			t.Fatalf("unexpected error message: %v", resp["error"])
		}
	})

	t.Run("empty items is a 400", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{})

		body := `{"customer_details":{"name":"A","email":"a@x.com","phone":"123"},"items":[],"total_amount":0}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandlePlace(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("fallback sets serve-mode header and local id", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{createErr: errors.New("down")})

		body := `{"customer_details":{"name":"A","email":"a@x.com","phone":"123"},"items":[{"product_id":"p1","name":"Saree","color":"Red","quantity":2,"price":500}],"total_amount":1000}`
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandlePlace(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if rec.Header().Get(ServeModeHeader) != domain.OrderSourceFallback {
			t.Fatalf("expected serve-mode header, got %q", rec.Header().Get(ServeModeHeader))
		}

		var resp map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if !strings.HasPrefix(resp["orderId"].(string), domain.LocalOrderPrefix) {
			t.Fatalf("expected local order id, got %v", resp["orderId"])
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{})

		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		handler.HandlePlace(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandleAdminList(t *testing.T) {
	handler, local := newTestHandler(t, &stubRemote{})
	_ = local.PrependOrder(domain.Order{
		ID:            "local-order-1-aaaaa",
		CustomerName:  "A",
		CustomerEmail: "a@x.com",
		CustomerPhone: "123",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/admin", nil)
	rec := httptest.NewRecorder()

	handler.HandleAdminList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
		Data    []struct {
			ID              string          `json:"id"`
			CustomerDetails CustomerDetails `json:"customer_details"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.Count != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Data[0].CustomerDetails.Phone != "123" {
		t.Fatalf("expected normalized customer_details, got %+v", resp.Data[0])
	}
}

func TestHandleStatsShape(t *testing.T) {
	handler, local := newTestHandler(t, &stubRemote{})
	_ = local.PrependOrder(domain.Order{ID: "local-order-1-aaaaa", TotalAmount: 75, Status: domain.StatusPending})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/stats", nil)
	rec := httptest.NewRecorder()

	handler.HandleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// data and stats carry the same payload for dashboard compatibility.
	if string(resp["data"]) != string(resp["stats"]) {
		t.Fatalf("expected identical data and stats fields: %s vs %s", resp["data"], resp["stats"])
	}
}

func TestHandleUpdateStatus(t *testing.T) {
	t.Run("unknown id is a 404", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{})
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /api/orders/{id}/status", handler.HandleUpdateStatus)

		req := httptest.NewRequest(http.MethodPut, "/api/orders/999/status", strings.NewReader(`{"status":"Shipped"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
		var resp map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["error"] != "Order ID not Found" {
			t.Fatalf("unexpected error message: %v", resp["error"])
		}
	})

	t.Run("missing status is a 400", func(t *testing.T) {
		handler, _ := newTestHandler(t, &stubRemote{})
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /api/orders/{id}/status", handler.HandleUpdateStatus)

		req := httptest.NewRequest(http.MethodPut, "/api/orders/999/status", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("local order updated", func(t *testing.T) {
		handler, local := newTestHandler(t, &stubRemote{})
		_ = local.PrependOrder(domain.Order{ID: "local-order-1-aaaaa", Status: domain.StatusPending})
		mux := http.NewServeMux()
		mux.HandleFunc("PUT /api/orders/{id}/status", handler.HandleUpdateStatus)

		req := httptest.NewRequest(http.MethodPut, "/api/orders/local-order-1-aaaaa/status", strings.NewReader(`{"status":"Shipped"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

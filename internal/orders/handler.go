package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/maieesaree/saree-backend/internal/domain"
)

// ServeModeHeader carries the explicit degraded-mode signal for requests
// answered by the local fallback store.
const ServeModeHeader = "X-Serve-Mode"

type Handler struct {
	service  *Service
	reporter *Reporter
	logger   *slog.Logger
}

func NewHandler(service *Service, reporter *Reporter, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		reporter: reporter,
		logger:   logger,
	}
}

type placeOrderResponse struct {
	Success        bool                  `json:"success"`
	OrderID        string                `json:"orderId"`
	OrderIDSnake   string                `json:"order_id"`
	OrderNumber    string                `json:"orderNumber"`
	Total          domain.Amount         `json:"total"`
	PaymentSession domain.PaymentSession `json:"paymentSession"`
}

func (h *Handler) HandlePlace(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		if IsValidation(err) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to place order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if result.Source == domain.OrderSourceFallback {
		w.Header().Set(ServeModeHeader, domain.OrderSourceFallback)
	}

	h.writeJSON(w, http.StatusCreated, placeOrderResponse{
		Success:        true,
		OrderID:        result.Order.ID,
		OrderIDSnake:   result.Order.ID,
		OrderNumber:    result.Order.OrderNumber,
		Total:          result.Order.TotalAmount,
		PaymentSession: result.Session,
	})
}

type adminOrder struct {
	domain.Order
	CustomerDetails CustomerDetails `json:"customer_details"`
}

type adminListResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Data    []adminOrder `json:"data"`
	Warning string       `json:"warning,omitempty"`
}

func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	orders, degraded := h.reporter.ListOrders(r.Context())

	data := make([]adminOrder, 0, len(orders))
	for _, o := range orders {
		data = append(data, adminOrder{
			Order: o,
			CustomerDetails: CustomerDetails{
				Name:  o.CustomerName,
				Email: o.CustomerEmail,
				Phone: o.CustomerPhone,
			},
		})
	}

	resp := adminListResponse{Success: true, Count: len(data), Data: data}
	if degraded {
		resp.Warning = "Order source unavailable, serving local data"
	}

	h.logger.Info("orders listed", "count", len(data), "degraded", degraded)
	h.writeJSON(w, http.StatusOK, resp)
}

type statsResponse struct {
	Success bool   `json:"success"`
	Data    Stats  `json:"data"`
	Stats   Stats  `json:"stats"`
	Warning string `json:"warning,omitempty"`
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, degraded := h.reporter.ComputeStats(r.Context())

	// data and stats are duplicated for older dashboard builds.
	resp := statsResponse{Success: true, Data: stats, Stats: stats}
	if degraded {
		resp.Warning = "Order source unavailable, stats are incomplete"
	}

	h.writeJSON(w, http.StatusOK, resp)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type updateStatusResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Data    *domain.Order `json:"data"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		h.writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			h.writeError(w, http.StatusNotFound, "Order ID not Found")
			return
		}
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, updateStatusResponse{
		Success: true,
		Message: "Order status updated",
		Data:    order,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{"success": false, "error": message})
}

package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/maieesaree/saree-backend/internal/domain"
	"github.com/maieesaree/saree-backend/internal/localstore"
)

const (
	maxImageBytes = 7 << 20
	maxImageCount = 5
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Catalog is the remote product store. *ProductRepository satisfies it.
type Catalog interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, id string, in UpdateInput) error
	UpdateStock(ctx context.Context, productID string, stock int) error
	Delete(ctx context.Context, id string) error
}

// Uploader pushes image bytes to the object-storage bucket and returns
// the public URL.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
	Bucket() string
}

type Handler struct {
	catalog  Catalog
	local    *localstore.Store
	uploader Uploader
	logger   *slog.Logger
}

func NewHandler(catalog Catalog, local *localstore.Store, uploader Uploader, logger *slog.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		local:    local,
		uploader: uploader,
		logger:   logger,
	}
}

type listResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []domain.Product `json:"data"`
	Warning string           `json:"warning,omitempty"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		h.logger.Error("remote product listing failed, serving local products", "error", err)
		local, localErr := h.local.ReadProducts()
		if localErr != nil {
			h.logger.Error("failed to read local products", "error", localErr)
			local = []domain.Product{}
		}
		h.writeJSON(w, http.StatusOK, listResponse{
			Success: true,
			Count:   len(local),
			Data:    local,
			Warning: "Product source unavailable, serving local data",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, listResponse{Success: true, Count: len(products), Data: products})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageCount * maxImageBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	basePrice, _ := strconv.ParseFloat(r.FormValue("base_price"), 64)
	files := r.MultipartForm.File["image"]

	if title == "" || basePrice == 0 || len(files) == 0 {
		h.writeError(w, http.StatusBadRequest, "Missing required fields or images")
		return
	}
	if len(files) > maxImageCount {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d images per product", maxImageCount))
		return
	}
	if h.uploader == nil {
		h.writeError(w, http.StatusServiceUnavailable, "image storage is not configured")
		return
	}

	var imageURLs []string
	for _, fh := range files {
		if fh.Size > maxImageBytes {
			h.writeError(w, http.StatusBadRequest, "Image is too large. Max allowed size is 7MB per file.")
			return
		}
		contentType := fh.Header.Get("Content-Type")
		if !allowedImageTypes[contentType] {
			h.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Invalid file type: %s. Only JPEG, PNG, and WebP are allowed.", contentType))
			return
		}

		file, err := fh.Open()
		if err != nil {
			h.writeUploadFailure(w, err)
			return
		}

		name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), strings.ReplaceAll(fh.Filename, " ", "_"))
		url, err := h.uploader.Upload(r.Context(), name, contentType, file)
		_ = file.Close()
		if err != nil {
			h.writeUploadFailure(w, err)
			return
		}
		imageURLs = append(imageURLs, url)
	}

	category := r.FormValue("category")
	if category == "" {
		category = "General"
	}
	colorName := r.FormValue("color_name")
	if colorName == "" {
		colorName = "Standard"
	}
	colorHex := r.FormValue("color_hex")
	if colorHex == "" {
		colorHex = "#000000"
	}
	stock, _ := strconv.Atoi(r.FormValue("stock"))
	if stock < 0 {
		stock = 0
	}

	product := domain.Product{
		Title:       title,
		Name:        title,
		Description: r.FormValue("description"),
		BasePrice:   domain.Amount(basePrice),
		Category:    category,
		CreatedAt:   time.Now().UTC(),
		Variants: []domain.ProductVariant{
			{
				ColorName:     colorName,
				ColorValue:    colorHex,
				StockQuantity: stock,
				Images:        imageURLs,
			},
		},
	}

	if err := h.catalog.Create(r.Context(), &product); err != nil {
		h.writeUploadFailure(w, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "title", product.Title)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Product uploaded successfully",
		"data":    product,
	})
}

type updateRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	BasePrice   domain.Amount `json:"base_price"`
	Category    string        `json:"category"`
	Stock       *int          `json:"stock"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.catalog.Update(r.Context(), id, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Category:    req.Category,
	})
	if err == nil && req.Stock != nil {
		err = h.catalog.UpdateStock(r.Context(), id, clampStock(*req.Stock))
	}
	if err == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product updated successfully"})
		return
	}

	h.logger.Error("remote product update failed, patching local store", "error", err, "id", id)
	updated, localErr := h.local.UpdateProduct(id, func(p *domain.Product) {
		if req.Title != "" {
			p.Title = req.Title
			p.Name = req.Title
		}
		if req.Description != "" {
			p.Description = req.Description
		}
		if req.BasePrice != 0 {
			p.BasePrice = req.BasePrice
		}
		if req.Category != "" {
			p.Category = req.Category
		}
		if req.Stock != nil && len(p.Variants) > 0 {
			p.Variants[0].StockQuantity = clampStock(*req.Stock)
		}
	})
	if localErr != nil {
		if errors.Is(localErr, localstore.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("local product update failed", "error", localErr, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Product updated locally",
		"data":    updated,
	})
}

type updateStockRequest struct {
	Stock int `json:"stock"`
}

func (h *Handler) HandleUpdateStock(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	stock := clampStock(req.Stock)

	err := h.catalog.UpdateStock(r.Context(), id, stock)
	if err == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Stock updated successfully"})
		return
	}
	h.logger.Error("remote stock update failed, patching local store", "error", err, "id", id)

	_, localErr := h.local.UpdateProduct(id, func(p *domain.Product) {
		if len(p.Variants) == 0 {
			p.Variants = []domain.ProductVariant{{
				ID:         p.ID + "-variant-1",
				ProductID:  p.ID,
				ColorName:  "Standard",
				ColorValue: "#800000",
			}}
		}
		p.Variants[0].StockQuantity = stock
	})
	if localErr != nil {
		if errors.Is(localErr, localstore.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("local stock update failed", "error", localErr, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Stock updated locally"})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	err := h.catalog.Delete(r.Context(), id)
	if err == nil {
		h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product deleted successfully"})
		return
	}
	h.logger.Error("remote product delete failed, removing from local store", "error", err, "id", id)

	if err := h.local.DeleteProduct(id); err != nil {
		h.logger.Error("local product delete failed", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Product deleted locally"})
}

func (h *Handler) writeUploadFailure(w http.ResponseWriter, err error) {
	bucket := ""
	if h.uploader != nil {
		bucket = h.uploader.Bucket()
	}
	h.logger.Error("product creation failed", "error", err, "bucket", bucket)
	h.writeError(w, http.StatusBadGateway,
		fmt.Sprintf("Image upload failed to storage bucket '%s': %v", bucket, err))
}

func clampStock(stock int) int {
	if stock < 0 {
		return 0
	}
	return stock
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

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// FAQRequest is the JSON request body for a product FAQ entry.
type FAQRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name          string       `json:"name" validate:"required"`
	Description   string       `json:"description" validate:"required"`
	Category      string       `json:"category" validate:"required"`
	MRP           float64      `json:"mrp" validate:"required,gt=0"`
	OurPrice      float64      `json:"our_price" validate:"required,gt=0"`
	Discount      float64      `json:"discount" validate:"gte=0,lte=100"`
	InStock       bool         `json:"in_stock"`
	StockQuantity int          `json:"stock_quantity" validate:"gte=0"`
	Images        []string     `json:"images" validate:"required,min=1"`
	FAQs          []FAQRequest `json:"faqs" validate:"omitempty,dive"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
// Absent fields are left unchanged.
type UpdateProductRequest struct {
	Name          *string      `json:"name" validate:"omitempty,min=1"`
	Description   *string      `json:"description" validate:"omitempty,min=1"`
	Category      *string      `json:"category" validate:"omitempty,min=1"`
	MRP           *float64     `json:"mrp" validate:"omitempty,gt=0"`
	OurPrice      *float64     `json:"our_price" validate:"omitempty,gt=0"`
	Discount      *float64     `json:"discount" validate:"omitempty,gte=0,lte=100"`
	InStock       *bool        `json:"in_stock"`
	StockQuantity *int         `json:"stock_quantity" validate:"omitempty,gte=0"`
	Images        []string     `json:"images" validate:"omitempty,min=1"`
	FAQs          []FAQRequest `json:"faqs" validate:"omitempty,dive"`
}

func toDomainFAQs(reqs []FAQRequest) []domain.FAQ {
	if reqs == nil {
		return nil
	}
	faqs := make([]domain.FAQ, len(reqs))
	for i, f := range reqs {
		faqs[i] = domain.FAQ{Question: f.Question, Answer: f.Answer}
	}
	return faqs
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("category"); v != "" {
		filter.Category = &v
	}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = &v
	}
	if v := r.URL.Query().Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "in_stock must be a boolean"},
			})
			return
		}
		filter.InStock = &inStock
	}

	products, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Suggest handles GET /api/v1/products/suggestions
func (h *ProductHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: suggestions})
}

// CreateProduct handles POST /api/v1/admin/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	// Limit request body to 1MB to prevent DoS via large payloads.
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		MRP:           req.MRP,
		OurPrice:      req.OurPrice,
		Discount:      req.Discount,
		InStock:       req.InStock,
		StockQuantity: req.StockQuantity,
		Images:        req.Images,
		FAQs:          toDomainFAQs(req.FAQs),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/admin/products/{id}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	update := repository.ProductUpdate{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		MRP:           req.MRP,
		OurPrice:      req.OurPrice,
		Discount:      req.Discount,
		InStock:       req.InStock,
		StockQuantity: req.StockQuantity,
		Images:        req.Images,
		FAQs:          toDomainFAQs(req.FAQs),
	}

	product, err := h.service.Update(r.Context(), id.String(), update)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

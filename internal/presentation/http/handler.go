package httppresentation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	appCustomer "github.com/shopfolk/sales-api/internal/application/customer"
	appOrder "github.com/shopfolk/sales-api/internal/application/order"
	appProduct "github.com/shopfolk/sales-api/internal/application/product"
	domainCustomer "github.com/shopfolk/sales-api/internal/domain/customer"
	domainOrder "github.com/shopfolk/sales-api/internal/domain/order"
	domainProduct "github.com/shopfolk/sales-api/internal/domain/product"
	"github.com/shopfolk/sales-api/internal/observability"
)

type Handler struct {
	customers *appCustomer.Service
	products  *appProduct.Service
	orders    *appOrder.Service
	log       observability.Logger
	tel       observability.Telemetry
}

func NewHandler(
	customers *appCustomer.Service,
	products *appProduct.Service,
	orders *appOrder.Service,
	tel observability.Telemetry,
) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		customers: customers,
		products:  products,
		orders:    orders,
		log:       tel.Logger().With(observability.F("component", "http_server")),
		tel:       tel,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.withObservability)

	r.Get("/health", h.handleHealth)

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.handleListCustomers)
		r.Post("/", h.handleCreateCustomer)
		r.Get("/{id}", h.handleGetCustomer)
		r.Put("/{id}", h.handleUpdateCustomer)
		r.Delete("/{id}", h.handleDeleteCustomer)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Post("/", h.handleCreateProduct)
		r.Get("/search", h.handleSearchProducts)
		r.Get("/in-stock", h.handleListProductsInStock)
		r.Get("/{id}", h.handleGetProduct)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Delete("/{id}", h.handleDeleteProduct)
		r.Patch("/{id}/stock", h.handleAdjustStock)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleListOrders)
		r.Post("/", h.handleCreateOrder)
		r.Get("/customer/{customerID}", h.handleListOrdersByCustomer)
		r.Get("/status/{status}", h.handleListOrdersByStatus)
		r.Get("/{id}", h.handleGetOrder)
		r.Put("/{id}/status", h.handleUpdateOrderStatus)
		r.Delete("/{id}", h.handleDeleteOrder)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// --- customers

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if msg, ok := validateCustomerRequest(req); !ok {
		writeValidationError(w, msg)
		return
	}

	created, err := h.customers.Create(r.Context(), appCustomer.Input{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(created))
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if msg, ok := validateCustomerRequest(req); !ok {
		writeValidationError(w, msg)
		return
	}

	updated, err := h.customers.Update(r.Context(), chi.URLParam(r, "id"), appCustomer.Input{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(updated))
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- products

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, func() ([]*domainProduct.Product, error) {
		return h.products.List(r.Context())
	})
}

func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	h.writeProducts(w, r, func() ([]*domainProduct.Product, error) {
		return h.products.SearchByName(r.Context(), name)
	})
}

func (h *Handler) handleListProductsInStock(w http.ResponseWriter, r *http.Request) {
	h.writeProducts(w, r, func() ([]*domainProduct.Product, error) {
		return h.products.ListInStock(r.Context())
	})
}

func (h *Handler) writeProducts(w http.ResponseWriter, _ *http.Request, list func() ([]*domainProduct.Product, error)) {
	products, err := list()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if msg, ok := validateProductRequest(req); !ok {
		writeValidationError(w, msg)
		return
	}

	created, err := h.products.Create(r.Context(), appProduct.Input{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if msg, ok := validateProductRequest(req); !ok {
		writeValidationError(w, msg)
		return
	}

	updated, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), appProduct.Input{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(updated))
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var req stockAdjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.Delta == 0 {
		writeValidationError(w, "delta must not be zero")
		return
	}

	adjusted, err := h.products.AdjustStock(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(adjusted))
}

// --- orders

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	if req.CustomerID == "" {
		writeValidationError(w, "customer_id is required")
		return
	}
	if len(req.Items) == 0 {
		writeValidationError(w, "at least one item is required")
		return
	}

	items := make([]appOrder.CreateItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == "" || item.Quantity <= 0 {
			writeValidationError(w, "each item needs a product_id and a positive quantity")
			return
		}
		items = append(items, appOrder.CreateItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	created, err := h.orders.Create(r.Context(), appOrder.CreateInput{
		CustomerID: req.CustomerID,
		Items:      items,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleListOrdersByCustomer(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByCustomer(r.Context(), chi.URLParam(r, "customerID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handleListOrdersByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := domainOrder.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	orders, err := h.orders.ListByStatus(r.Context(), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	status, err := domainOrder.ParseStatus(req.Status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request validation at the API boundary

func validateCustomerRequest(req customerRequest) (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if req.Email == "" {
		return "email is required", false
	}
	return "", true
}

func validateProductRequest(req productRequest) (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if req.Price.IsNegative() {
		return "price must be zero or greater", false
	}
	if req.StockQuantity < 0 {
		return "stock_quantity must be zero or greater", false
	}
	return "", true
}

// --- encoding helpers

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidationError(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation_failed", Message: msg})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainOrder.ErrNotFound),
		errors.Is(err, domainCustomer.ErrNotFound),
		errors.Is(err, domainProduct.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, domainProduct.ErrInsufficientStock),
		errors.Is(err, domainProduct.ErrReferenced),
		errors.Is(err, domainProduct.ErrInvalidName),
		errors.Is(err, domainProduct.ErrInvalidPrice),
		errors.Is(err, domainProduct.ErrInvalidStock),
		errors.Is(err, domainCustomer.ErrDuplicateEmail),
		errors.Is(err, domainCustomer.ErrReferenced),
		errors.Is(err, domainCustomer.ErrInvalidName),
		errors.Is(err, domainCustomer.ErrInvalidEmail),
		errors.Is(err, domainOrder.ErrCancelled),
		errors.Is(err, domainOrder.ErrNotDeletable),
		errors.Is(err, domainOrder.ErrInvalidStatus),
		errors.Is(err, domainOrder.ErrInvalidQuantity),
		errors.Is(err, domainOrder.ErrNoItems),
		errors.Is(err, domainOrder.ErrCustomerRequired):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "business_rule_violation", Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()})
	}
}

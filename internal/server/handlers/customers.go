package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/ispadmin/internal/models"
	"github.com/iudanet/ispadmin/internal/server/storage"
	"github.com/iudanet/ispadmin/internal/validation"
	"github.com/iudanet/ispadmin/pkg/api"
)

// CustomerHandler обрабатывает CRUD запросы по абонентам
// Все операции требуют аутентификации (AuthMiddleware)
type CustomerHandler struct {
	logger    *slog.Logger
	customers storage.CustomerStorage
}

// NewCustomerHandler создает новый handler для абонентов
func NewCustomerHandler(logger *slog.Logger, customers storage.CustomerStorage) *CustomerHandler {
	return &CustomerHandler{
		logger:    logger,
		customers: customers,
	}
}

// List обрабатывает GET /api/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customers, err := h.customers.ListCustomers(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list customers", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.CustomerListResponse{
		Customers: make([]api.CustomerResponse, 0, len(customers)),
		Total:     len(customers),
	}
	for _, c := range customers {
		resp.Customers = append(resp.Customers, toCustomerResponse(c))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get обрабатывает GET /api/customers/{id}
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID := r.PathValue("id")
	if customerID == "" {
		sendError(h.logger, w, "customer id is required", http.StatusBadRequest)
		return
	}

	customer, err := h.customers.GetCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			sendError(h.logger, w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get customer", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, toCustomerResponse(customer), http.StatusOK)
}

// Create обрабатывает POST /api/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	customer := &models.Customer{
		ID:              uuid.New().String(),
		Name:            req.Name,
		InternetPackage: req.InternetPackage,
		Sector:          req.Sector,
		DateAdded:       time.Now(),
	}

	if err := h.customers.CreateCustomer(ctx, customer); err != nil {
		h.logger.ErrorContext(ctx, "failed to create customer", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "customer created", slog.String("customer_id", customer.ID))

	sendJSON(h.logger, w, toCustomerResponse(customer), http.StatusCreated)
}

// Update обрабатывает PUT /api/customers/{id}
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID := r.PathValue("id")
	if customerID == "" {
		sendError(h.logger, w, "customer id is required", http.StatusBadRequest)
		return
	}

	req, ok := h.decodeCustomerRequest(w, r)
	if !ok {
		return
	}

	// Дата подключения не меняется при обновлении
	existing, err := h.customers.GetCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			sendError(h.logger, w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get customer", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	existing.Name = req.Name
	existing.InternetPackage = req.InternetPackage
	existing.Sector = req.Sector

	if err := h.customers.UpdateCustomer(ctx, existing); err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			sendError(h.logger, w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to update customer", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "customer updated", slog.String("customer_id", customerID))

	sendJSON(h.logger, w, toCustomerResponse(existing), http.StatusOK)
}

// Delete обрабатывает DELETE /api/customers/{id}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID := r.PathValue("id")
	if customerID == "" {
		sendError(h.logger, w, "customer id is required", http.StatusBadRequest)
		return
	}

	if err := h.customers.DeleteCustomer(ctx, customerID); err != nil {
		if errors.Is(err, storage.ErrCustomerNotFound) {
			sendError(h.logger, w, "customer not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete customer", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "customer deleted", slog.String("customer_id", customerID))

	w.WriteHeader(http.StatusNoContent)
}

// decodeCustomerRequest парсит и валидирует тело запроса абонента
func (h *CustomerHandler) decodeCustomerRequest(w http.ResponseWriter, r *http.Request) (api.CustomerRequest, bool) {
	ctx := r.Context()

	var req api.CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode customer request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return req, false
	}

	fields := []struct {
		name  string
		value string
	}{
		{"name", req.Name},
		{"internet_package", req.InternetPackage},
		{"sector", req.Sector},
	}
	for _, f := range fields {
		if err := validation.ValidateCustomerField(f.name, f.value); err != nil {
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return req, false
		}
	}

	return req, true
}

// toCustomerResponse конвертирует модель в API формат
func toCustomerResponse(c *models.Customer) api.CustomerResponse {
	return api.CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		InternetPackage: c.InternetPackage,
		Sector:          c.Sector,
		DateAdded:       c.DateAdded.Format(time.RFC3339),
	}
}

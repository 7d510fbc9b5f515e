/*
handlers.go - HTTP API handlers for the receivables tracker

PURPOSE:
  Exposes the ledger services via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Customers:
    GET    /api/customers                List customers (?name= / ?phone= filters)
    POST   /api/customers                Register customer
    GET    /api/customers/{id}           Get customer
    PUT    /api/customers/{id}           Update customer (partial)
    DELETE /api/customers/{id}           Remove customer (409 while sales exist)
    GET    /api/customers/{id}/sales     Customer's sales
    GET    /api/customers/{id}/receipts  Customer's payments
    GET    /api/customers/{id}/balance   Outstanding balance

  Products:
    GET    /api/products                 List products (?name= filter)
    POST   /api/products                 Register product
    GET    /api/products/{id}            Get product
    PUT    /api/products/{id}            Update product (partial)
    DELETE /api/products/{id}            Remove product (409 while sales exist)

  Sales:
    GET    /api/sales                    List sales (?status=, ?from/?to filters)
    GET    /api/sales/pending            Sales not fully paid, newest first
    POST   /api/sales                    Record a sale on credit
    GET    /api/sales/{id}               Get sale
    PUT    /api/sales/{id}               Update sale (partial)
    DELETE /api/sales/{id}               Remove sale (409 while receipts exist)
    GET    /api/sales/{id}/receipts      Sale's payments

  Receipts:
    GET    /api/receipts/total           Total received in ?from/?to period
    POST   /api/receipts                 Register a payment
    DELETE /api/receipts/{id}            Reverse a payment

ERROR HANDLING:
  Domain errors are mapped to HTTP status by classification:
  - 400: Validation errors (including overpayment)
  - 404: Record not found
  - 409: Removal blocked by dependent records
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - ledger/errors.go: The error taxonomy being mapped
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brisa/receivables/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Customers  *ledger.CustomerRegistry
	Products   *ledger.ProductRegistry
	Sales      *ledger.SaleService
	Settlement *ledger.SettlementEngine
}

// NewHandler wires the domain services over the given store.
func NewHandler(store ledger.TxStore, logger *zap.Logger) *Handler {
	return &Handler{
		Customers:  ledger.NewCustomerRegistry(store, logger),
		Products:   ledger.NewProductRegistry(store, logger),
		Sales:      ledger.NewSaleService(store, logger),
		Settlement: ledger.NewSettlementEngine(store, logger),
	}
}

// =============================================================================
// CUSTOMER HANDLERS
// =============================================================================

// ListCustomers returns customers ordered by name, optionally filtered by
// a name substring or an exact phone.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if phone := r.URL.Query().Get("phone"); phone != "" {
		c, err := h.Customers.FindByPhone(ctx, phone)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to look up customer", err)
			return
		}
		if c == nil {
			writeJSON(w, http.StatusOK, []CustomerDTO{})
			return
		}
		writeJSON(w, http.StatusOK, []CustomerDTO{toCustomerDTO(*c)})
		return
	}

	var (
		customers []ledger.Customer
		err       error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		customers, err = h.Customers.FindByName(ctx, name)
	} else {
		customers, err = h.Customers.FindAll(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTOs(customers))
}

// GetCustomer returns a single customer.
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	c, err := h.Customers.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*c))
}

// CreateCustomer registers a new customer.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Customers.Create(r.Context(), req.Name, req.Phone)
	if err != nil {
		writeDomainError(w, err, "Failed to create customer")
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(*c))
}

// UpdateCustomer applies a partial update to a customer.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	var req UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, err := h.Customers.Update(r.Context(), id, ledger.UpdateCustomerParams{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to update customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*c))
}

// DeleteCustomer removes a customer without sales.
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))

	if err := h.Customers.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCustomerSales returns the customer's sales, newest first.
func (h *Handler) GetCustomerSales(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Customers.FindByID(ctx, id); err != nil {
		writeDomainError(w, err, "Failed to get customer")
		return
	}
	sales, err := h.Sales.FindByCustomer(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(sales))
}

// GetCustomerReceipts returns the customer's payments, newest first.
func (h *Handler) GetCustomerReceipts(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Customers.FindByID(ctx, id); err != nil {
		writeDomainError(w, err, "Failed to get customer")
		return
	}
	receipts, err := h.Settlement.ReceiptsForCustomer(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list receipts", err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTOs(receipts))
}

// GetCustomerBalance returns the customer's outstanding balance across
// open sales.
func (h *Handler) GetCustomerBalance(w http.ResponseWriter, r *http.Request) {
	id := ledger.CustomerID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Customers.FindByID(ctx, id); err != nil {
		writeDomainError(w, err, "Failed to get customer")
		return
	}
	balance, err := h.Sales.OutstandingBalanceForCustomer(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{
		CustomerID:  string(id),
		Outstanding: balance.InexactFloat64(),
	})
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns products ordered by name, optionally filtered by
// a name substring.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var (
		products []ledger.Product
		err      error
	)
	if name := r.URL.Query().Get("name"); name != "" {
		products, err = h.Products.FindByName(r.Context(), name)
	} else {
		products, err = h.Products.FindAll(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list products", err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTOs(products))
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProductID(chi.URLParam(r, "id"))

	p, err := h.Products.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get product")
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*p))
}

// CreateProduct registers a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Products.Create(r.Context(), req.Name, moneyFromFloat(req.Price))
	if err != nil {
		writeDomainError(w, err, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(*p))
}

// UpdateProduct applies a partial update to a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProductID(chi.URLParam(r, "id"))

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params := ledger.UpdateProductParams{Name: req.Name}
	if req.Price != nil {
		price := moneyFromFloat(*req.Price)
		params.Price = &price
	}

	p, err := h.Products.Update(r.Context(), id, params)
	if err != nil {
		writeDomainError(w, err, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(*p))
}

// DeleteProduct removes a product without sales.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProductID(chi.URLParam(r, "id"))

	if err := h.Products.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns sales, newest first. Supports ?status= and a
// ?from/?to sale-date window (both filters are mutually exclusive,
// status wins).
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if status := r.URL.Query().Get("status"); status != "" {
		sales, err := h.Sales.FindByStatus(ctx, ledger.Status(status))
		if err != nil {
			writeDomainError(w, err, "Failed to list sales")
			return
		}
		writeJSON(w, http.StatusOK, toSaleDTOs(sales))
		return
	}

	fromRaw, toRaw := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fromRaw != "" || toRaw != "" {
		from, to, err := parseDateRange(fromRaw, toRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
			return
		}
		sales, err := h.Sales.FindByDateRange(ctx, from, to)
		if err != nil {
			writeDomainError(w, err, "Failed to list sales")
			return
		}
		writeJSON(w, http.StatusOK, toSaleDTOs(sales))
		return
	}

	sales, err := h.Sales.FindAll(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(sales))
}

// ListPendingSales returns sales not yet fully paid, newest first.
func (h *Handler) ListPendingSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.Sales.FindPending(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending sales", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTOs(sales))
}

// GetSale returns a single sale.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	s, err := h.Sales.FindByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err, "Failed to get sale")
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(*s))
}

// CreateSale records a new sale on credit.
func (h *Handler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	saleDate, err := parseDate(req.SaleDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sale_date format (use YYYY-MM-DD)", err)
		return
	}

	s, err := h.Sales.Create(r.Context(), ledger.CreateSaleParams{
		CustomerID:  ledger.CustomerID(req.CustomerID),
		ProductID:   ledger.ProductID(req.ProductID),
		Total:       moneyFromFloat(req.Total),
		SaleDate:    saleDate,
		Description: req.Description,
	})
	if err != nil {
		writeDomainError(w, err, "Failed to create sale")
		return
	}
	writeJSON(w, http.StatusCreated, toSaleDTO(*s))
}

// UpdateSale applies a partial update to a sale.
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	var req UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params := ledger.UpdateSaleParams{Description: req.Description}
	if req.Total != nil {
		total := moneyFromFloat(*req.Total)
		params.Total = &total
	}
	if req.Paid != nil {
		paid := moneyFromFloat(*req.Paid)
		params.Paid = &paid
	}
	if req.Status != nil {
		status := ledger.Status(*req.Status)
		params.Status = &status
	}
	if req.SaleDate != nil {
		saleDate, err := parseDate(*req.SaleDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid sale_date format (use YYYY-MM-DD)", err)
			return
		}
		params.SaleDate = &saleDate
	}

	s, err := h.Sales.Update(r.Context(), id, params)
	if err != nil {
		writeDomainError(w, err, "Failed to update sale")
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(*s))
}

// DeleteSale removes a sale without receipts.
func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	if err := h.Sales.Remove(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to delete sale")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSaleReceipts returns the sale's payments, newest first.
func (h *Handler) GetSaleReceipts(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Sales.FindByID(ctx, id); err != nil {
		writeDomainError(w, err, "Failed to get sale")
		return
	}
	receipts, err := h.Settlement.ReceiptsForSale(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list receipts", err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptDTOs(receipts))
}

// =============================================================================
// RECEIPT HANDLERS
// =============================================================================

// RegisterReceipt records a payment against a sale. The receipt and the
// sale's paid amount move together; overpayment is rejected with 400.
func (h *Handler) RegisterReceipt(w http.ResponseWriter, r *http.Request) {
	var req RegisterReceiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != "" {
		parsed, err := parseDate(req.PaidAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid_at format (use YYYY-MM-DD)", err)
			return
		}
		paidAt = parsed
	}

	receipt, err := h.Settlement.RegisterPayment(
		r.Context(),
		ledger.SaleID(req.SaleID),
		ledger.CustomerID(req.CustomerID),
		moneyFromFloat(req.Amount),
		paidAt,
	)
	if err != nil {
		writeDomainError(w, err, "Failed to register payment")
		return
	}
	writeJSON(w, http.StatusCreated, toReceiptDTO(*receipt))
}

// ReverseReceipt deletes a receipt and reverts its sale.
func (h *Handler) ReverseReceipt(w http.ResponseWriter, r *http.Request) {
	id := ledger.ReceiptID(chi.URLParam(r, "id"))

	if err := h.Settlement.ReversePayment(r.Context(), id); err != nil {
		writeDomainError(w, err, "Failed to reverse payment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTotalReceived sums payments in the ?from/?to period, inclusive.
func (h *Handler) GetTotalReceived(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range (use YYYY-MM-DD)", err)
		return
	}

	total, err := h.Settlement.TotalReceivedInRange(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err, "Failed to total receipts")
		return
	}
	writeJSON(w, http.StatusOK, TotalReceivedDTO{
		From:  from.Format("2006-01-02"),
		To:    to.Format("2006-01-02"),
		Total: total.InexactFloat64(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseDateRange parses from/to, widening the upper bound to the end of
// its day so a date-only "to" is inclusive.
func parseDateRange(fromRaw, toRaw string) (time.Time, time.Time, error) {
	from, err := parseDate(fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

func writeDomainError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ledger.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ledger.ErrConflict):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, fallback, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND DATES:
  Money crosses the wire as float64 and is converted to decimal at the
  boundary; all arithmetic happens on decimals inside the ledger package.
  Dates are accepted as YYYY-MM-DD or RFC3339 and always rendered as
  RFC3339.

VALIDATION:
  Validation is done in the domain services, not in DTOs. DTOs are pure
  data carriers; handlers only check that the payload parses.

SEE ALSO:
  - handlers.go: Uses these types
  - ledger/types.go: The domain records behind them
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/brisa/receivables/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// CustomerDTO represents a customer in API responses.
type CustomerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateCustomerRequest is the request to register a customer.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// UpdateCustomerRequest is a partial update; absent fields are untouched.
type UpdateCustomerRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// ProductDTO represents a catalog item in API responses.
type ProductDTO struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	CreatedAt string  `json:"created_at,omitempty"`
}

// CreateProductRequest is the request to register a product.
type CreateProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// UpdateProductRequest is a partial update; absent fields are untouched.
type UpdateProductRequest struct {
	Name  *string  `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

// SaleDTO represents a sale in API responses. Outstanding is derived
// (total - paid) and included for display convenience.
type SaleDTO struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customer_id"`
	ProductID   string  `json:"product_id"`
	Total       float64 `json:"total"`
	Paid        float64 `json:"paid"`
	Outstanding float64 `json:"outstanding"`
	Status      string  `json:"status"`
	SaleDate    string  `json:"sale_date"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// CreateSaleRequest is the request to record a sale on credit.
type CreateSaleRequest struct {
	CustomerID  string  `json:"customer_id"`
	ProductID   string  `json:"product_id"`
	Total       float64 `json:"total"`
	SaleDate    string  `json:"sale_date"`
	Description string  `json:"description,omitempty"`
}

// UpdateSaleRequest is a partial update; absent fields are untouched.
// Paid and Status are the manual correction path and normally stay unset.
type UpdateSaleRequest struct {
	Total       *float64 `json:"total,omitempty"`
	SaleDate    *string  `json:"sale_date,omitempty"`
	Description *string  `json:"description,omitempty"`
	Paid        *float64 `json:"paid,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

// ReceiptDTO represents a payment in API responses.
type ReceiptDTO struct {
	ID         string  `json:"id"`
	SaleID     string  `json:"sale_id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	PaidAt     string  `json:"paid_at"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// RegisterReceiptRequest is the request to register a payment against a
// sale. PaidAt defaults to now when absent.
type RegisterReceiptRequest struct {
	SaleID     string  `json:"sale_id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	PaidAt     string  `json:"paid_at,omitempty"`
}

// BalanceDTO is a customer's outstanding balance across open sales.
type BalanceDTO struct {
	CustomerID  string  `json:"customer_id"`
	Outstanding float64 `json:"outstanding"`
}

// TotalReceivedDTO is the sum of payments in a period.
type TotalReceivedDTO struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Total float64 `json:"total"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toCustomerDTO(c ledger.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        string(c.ID),
		Name:      c.Name,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

func toCustomerDTOs(customers []ledger.Customer) []CustomerDTO {
	dtos := make([]CustomerDTO, len(customers))
	for i, c := range customers {
		dtos[i] = toCustomerDTO(c)
	}
	return dtos
}

func toProductDTO(p ledger.Product) ProductDTO {
	return ProductDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func toProductDTOs(products []ledger.Product) []ProductDTO {
	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = toProductDTO(p)
	}
	return dtos
}

func toSaleDTO(s ledger.Sale) SaleDTO {
	return SaleDTO{
		ID:          string(s.ID),
		CustomerID:  string(s.CustomerID),
		ProductID:   string(s.ProductID),
		Total:       s.Total.InexactFloat64(),
		Paid:        s.Paid.InexactFloat64(),
		Outstanding: s.Outstanding().InexactFloat64(),
		Status:      string(s.Status),
		SaleDate:    s.SaleDate.Format(time.RFC3339),
		Description: s.Description,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func toSaleDTOs(sales []ledger.Sale) []SaleDTO {
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toReceiptDTO(r ledger.Receipt) ReceiptDTO {
	return ReceiptDTO{
		ID:         string(r.ID),
		SaleID:     string(r.SaleID),
		CustomerID: string(r.CustomerID),
		Amount:     r.Amount.InexactFloat64(),
		PaidAt:     r.PaidAt.Format(time.RFC3339),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func toReceiptDTOs(receipts []ledger.Receipt) []ReceiptDTO {
	dtos := make([]ReceiptDTO, len(receipts))
	for i, r := range receipts {
		dtos[i] = toReceiptDTO(r)
	}
	return dtos
}

func moneyFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

/*
Package ledger provides the receivables core: customers, products, sales
on credit, and the payments that settle them.

PURPOSE:
  This package contains the domain types and services for tracking money
  owed to a micro-business. A Sale records a credit transaction for one
  customer and product; Receipts record the payments that reduce its
  outstanding balance until it is fully paid.

KEY CONCEPTS IN THIS FILE (types.go):
  - Customer/Product: the two reference entities every sale points at
  - Sale: the owning aggregate for a running paid amount and status
  - Receipt: one payment event, always consistent with its sale
  - Status: derived from paid vs total, never set independently

DESIGN PRINCIPLES:
  1. Precision: all money uses decimal.Decimal, never float64
  2. Type Safety: strong typing for IDs prevents mixing record kinds
  3. Derived state: Status is always computed via DeriveStatus
  4. Atomicity: Receipt existence and Sale paid amount change together

SEE ALSO:
  - status.go: status derivation rules
  - store.go: persistence contract
  - settlement.go: payment registration and reversal
*/
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CustomerID string
type ProductID string
type SaleID string
type ReceiptID string

func NewCustomerID() CustomerID { return CustomerID(uuid.NewString()) }
func NewProductID() ProductID   { return ProductID(uuid.NewString()) }
func NewSaleID() SaleID         { return SaleID(uuid.NewString()) }
func NewReceiptID() ReceiptID   { return ReceiptID(uuid.NewString()) }

// =============================================================================
// STATUS - Derived settlement state of a sale
// =============================================================================

type Status string

const (
	StatusPending Status = "pending" // nothing paid yet
	StatusPartial Status = "partial" // some paid, some outstanding
	StatusPaid    Status = "paid"    // fully settled
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid:
		return true
	}
	return false
}

// =============================================================================
// RECORDS
// =============================================================================

// Customer is a registered buyer. Phone is optional.
type Customer struct {
	ID        CustomerID
	Name      string
	Phone     string
	CreatedAt time.Time
}

// Product is a catalog item with a unit price (>= 0).
type Product struct {
	ID        ProductID
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Sale is a credit transaction. Paid and Status are mutated only by the
// settlement engine (or an explicit manual update) and must always satisfy
// 0 <= Paid <= Total and Status == DeriveStatus(Paid, Total).
type Sale struct {
	ID          SaleID
	ProductID   ProductID
	CustomerID  CustomerID
	Total       decimal.Decimal
	SaleDate    time.Time
	Description string
	Paid        decimal.Decimal
	Status      Status
	CreatedAt   time.Time
}

// Receipt is one payment against a sale. CustomerID is a denormalized copy
// taken at payment time, not re-derived from the sale.
type Receipt struct {
	ID         ReceiptID
	SaleID     SaleID
	CustomerID CustomerID
	Amount     decimal.Decimal
	PaidAt     time.Time
	CreatedAt  time.Time
}

// =============================================================================
// MONEY HELPERS
// =============================================================================

// MustDecimal parses a decimal string, returning zero on malformed input.
// Intended for storage scan paths where values were written by this package.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

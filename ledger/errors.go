/*
errors.go - Centralized error types for the receivables core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure a service can return unwraps to one of three sentinels,
  so callers classify with errors.Is and render the message verbatim.

ERROR CATEGORIES:
  1. Validation errors - input violates a domain rule, detected before any write
  2. Not-found errors  - a referenced identifier does not resolve
  3. Conflict errors   - a delete is blocked by dependent records

SEE ALSO:
  - refs.go: produces NotFoundError for every reference check
  - settlement.go: produces OverpaymentError
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrValidation is returned when input violates a domain rule.
	// Always detected before any write; never leaves partial state.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a delete is blocked by dependent records.
	ErrConflict = errors.New("conflicting dependent records")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies the missing record by kind and identifier.
type NotFoundError struct {
	Kind string // "customer", "product", "sale", "receipt"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError carries a human-readable rule violation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OverpaymentError is returned when a payment exceeds the outstanding
// balance of a sale. Overpayment is never accepted, even partially.
type OverpaymentError struct {
	SaleID    SaleID
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds outstanding balance of %s",
		e.Requested.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *OverpaymentError) Unwrap() error { return ErrValidation }

// ConflictError reports a delete blocked by dependents.
type ConflictError struct {
	Kind       string
	ID         string
	Dependents string // kind of the blocking records
	Count      int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot remove %s %s: %d %s still reference it",
		e.Kind, e.ID, e.Count, e.Dependents)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError reports whether err is due to invalid client input
// rather than an internal failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict)
}

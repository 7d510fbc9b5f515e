/*
sales.go - Sale lifecycle manager

PURPOSE:
  Creates, updates, and removes sales, and exposes the query views the
  presentation layer renders (by customer, by status, pending, date range,
  outstanding balance per customer).

INVARIANTS ENFORCED HERE:
  - A sale always references an existing customer and product at creation
  - Total amount is strictly positive
  - New sales start with Paid = 0 and Status = pending
  - 0 <= Paid <= Total and Status = DeriveStatus(Paid, Total), also on
    manual updates

PAYMENTS:
  Paid/Status are normally mutated only by the settlement engine. Update
  can touch them directly (manual correction path) but re-derives status
  unless the caller pins it, so the status invariant cannot be broken by
  a partial update.

SEE ALSO:
  - settlement.go: the only writer of receipts
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService manages the sale lifecycle over a Store.
type SaleService struct {
	store  Store
	logger *zap.Logger
}

// NewSaleService creates a new service. A nil logger falls back to a
// production zap logger.
func NewSaleService(store Store, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &SaleService{store: store, logger: logger}
}

// CreateSaleParams carries the inputs for a new sale.
type CreateSaleParams struct {
	CustomerID  CustomerID
	ProductID   ProductID
	Total       decimal.Decimal
	SaleDate    time.Time
	Description string
}

// UpdateSaleParams is a partial update: nil fields are left untouched.
// When Total or Paid change and Status is not supplied, status is
// re-derived so the invariant holds.
type UpdateSaleParams struct {
	Total       *decimal.Decimal
	SaleDate    *time.Time
	Description *string
	Paid        *decimal.Decimal
	Status      *Status
}

// Create validates references and amount, then persists a new pending sale.
func (s *SaleService) Create(ctx context.Context, params CreateSaleParams) (*Sale, error) {
	if _, err := RequireCustomer(ctx, s.store, params.CustomerID); err != nil {
		return nil, err
	}
	if _, err := RequireProduct(ctx, s.store, params.ProductID); err != nil {
		return nil, err
	}
	if !params.Total.IsPositive() {
		return nil, &ValidationError{Message: "sale amount must be greater than zero"}
	}

	sale := Sale{
		ID:          NewSaleID(),
		ProductID:   params.ProductID,
		CustomerID:  params.CustomerID,
		Total:       params.Total,
		SaleDate:    params.SaleDate,
		Description: strings.TrimSpace(params.Description),
		Paid:        decimal.Zero,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.SaveSale(ctx, sale); err != nil {
		s.logger.Error("failed to save sale", zap.String("sale_id", string(sale.ID)), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("sale_id", string(sale.ID)),
		zap.String("customer_id", string(sale.CustomerID)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	return &sale, nil
}

// Update applies the supplied fields to an existing sale.
func (s *SaleService) Update(ctx context.Context, id SaleID, params UpdateSaleParams) (*Sale, error) {
	sale, err := RequireSale(ctx, s.store, id)
	if err != nil {
		return nil, err
	}

	if params.Total != nil {
		if !params.Total.IsPositive() {
			return nil, &ValidationError{Message: "sale amount must be greater than zero"}
		}
		sale.Total = *params.Total
	}
	if params.SaleDate != nil {
		sale.SaleDate = *params.SaleDate
	}
	if params.Description != nil {
		sale.Description = strings.TrimSpace(*params.Description)
	}
	if params.Paid != nil {
		if params.Paid.IsNegative() {
			return nil, &ValidationError{Message: "paid amount must be zero or greater"}
		}
		if params.Paid.GreaterThan(sale.Total) {
			return nil, &ValidationError{Message: "paid amount must not exceed the sale amount"}
		}
		sale.Paid = *params.Paid
	}

	switch {
	case params.Status != nil:
		if !ValidStatus(*params.Status) {
			return nil, &ValidationError{Message: "unknown sale status: " + string(*params.Status)}
		}
		sale.Status = *params.Status
	case params.Total != nil || params.Paid != nil:
		sale.Status = DeriveStatus(sale.Paid, sale.Total)
	}

	if err := s.store.UpdateSale(ctx, *sale); err != nil {
		s.logger.Error("failed to update sale", zap.String("sale_id", string(id)), zap.Error(err))
		return nil, err
	}
	return sale, nil
}

// Remove deletes a sale. Fails with ConflictError while receipts still
// reference it; reverse the payments first.
func (s *SaleService) Remove(ctx context.Context, id SaleID) error {
	if _, err := RequireSale(ctx, s.store, id); err != nil {
		return err
	}

	receipts, err := s.store.ReceiptsBySale(ctx, id)
	if err != nil {
		return err
	}
	if len(receipts) > 0 {
		return &ConflictError{Kind: "sale", ID: string(id), Dependents: "receipts", Count: len(receipts)}
	}

	if err := s.store.DeleteSale(ctx, id); err != nil {
		return err
	}
	s.logger.Info("sale removed", zap.String("sale_id", string(id)))
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// FindAll returns every sale.
func (s *SaleService) FindAll(ctx context.Context) ([]Sale, error) {
	return s.store.ListSales(ctx)
}

// FindByID returns the sale or a NotFoundError.
func (s *SaleService) FindByID(ctx context.Context, id SaleID) (*Sale, error) {
	return RequireSale(ctx, s.store, id)
}

// FindByCustomer returns the customer's sales.
func (s *SaleService) FindByCustomer(ctx context.Context, id CustomerID) ([]Sale, error) {
	return s.store.SalesByCustomer(ctx, id)
}

// FindByStatus returns sales with the given status.
func (s *SaleService) FindByStatus(ctx context.Context, status Status) ([]Sale, error) {
	if !ValidStatus(status) {
		return nil, &ValidationError{Message: "unknown sale status: " + string(status)}
	}
	return s.store.SalesByStatus(ctx, status)
}

// FindPending returns sales not yet fully paid, most recent first.
func (s *SaleService) FindPending(ctx context.Context) ([]Sale, error) {
	return s.store.PendingSales(ctx)
}

// FindByDateRange returns sales with sale date in [from, to], inclusive.
func (s *SaleService) FindByDateRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	if to.Before(from) {
		return nil, &ValidationError{Message: "invalid date range: end before start"}
	}
	return s.store.SalesInRange(ctx, from, to)
}

// OutstandingBalanceForCustomer sums total minus paid over the customer's
// sales that are not fully settled.
func (s *SaleService) OutstandingBalanceForCustomer(ctx context.Context, id CustomerID) (decimal.Decimal, error) {
	sales, err := s.store.SalesByCustomer(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, sale := range sales {
		if sale.Status == StatusPaid {
			continue
		}
		balance = balance.Add(sale.Outstanding())
	}
	return balance, nil
}

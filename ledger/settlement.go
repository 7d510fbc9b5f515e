/*
settlement.go - Payment registration and reversal

PURPOSE:
  The settlement engine is the only writer of receipts and the only code
  path that moves a sale's paid amount. Registering a payment creates a
  receipt and updates the sale inside one store transaction; reversing a
  payment deletes the receipt and reverts the sale the same way. At no
  point is a receipt observable without its effect on the sale, or the
  other way around.

PAYMENT RULES:
  - Amount must be strictly positive
  - Amount must not exceed the sale's outstanding balance (hard cap:
    overpayment is never accepted, even partially)
  - The receipt stores the customer reference as supplied by the caller,
    not re-derived from the sale

REVERSAL RULES:
  - The new paid amount is clamped at zero, so reversing receipts out of
    chronological order can never drive it negative
  - There is no restore-to-prior-snapshot guarantee beyond the clamped
    arithmetic

SEE ALSO:
  - status.go: DeriveStatus, recomputed on every settlement
  - store.go: WithTx, the atomicity boundary
*/
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementEngine registers and reverses payments against sales.
type SettlementEngine struct {
	store  TxStore
	logger *zap.Logger
}

// NewSettlementEngine creates a new engine. A nil logger falls back to a
// production zap logger.
func NewSettlementEngine(store TxStore, logger *zap.Logger) *SettlementEngine {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &SettlementEngine{store: store, logger: logger}
}

// RegisterPayment records a payment against a sale: one new receipt, plus
// the sale's paid amount and status, written in a single transaction.
// Returns the created receipt.
func (e *SettlementEngine) RegisterPayment(ctx context.Context, saleID SaleID, customerID CustomerID, amount decimal.Decimal, paidAt time.Time) (*Receipt, error) {
	sale, err := RequireSale(ctx, e.store, saleID)
	if err != nil {
		return nil, err
	}
	if _, err := RequireCustomer(ctx, e.store, customerID); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Message: "payment amount must be greater than zero"}
	}

	remaining := sale.Outstanding()
	if amount.GreaterThan(remaining) {
		return nil, &OverpaymentError{SaleID: saleID, Requested: amount, Remaining: remaining}
	}

	receipt := Receipt{
		ID:         NewReceiptID(),
		SaleID:     saleID,
		CustomerID: customerID,
		Amount:     amount,
		PaidAt:     paidAt,
		CreatedAt:  time.Now().UTC(),
	}
	sale.Paid = sale.Paid.Add(amount)
	sale.Status = DeriveStatus(sale.Paid, sale.Total)

	err = e.store.WithTx(ctx, func(tx Store) error {
		if err := tx.SaveReceipt(ctx, receipt); err != nil {
			return err
		}
		return tx.UpdateSale(ctx, *sale)
	})
	if err != nil {
		e.logger.Error("failed to register payment",
			zap.String("sale_id", string(saleID)), zap.Error(err))
		return nil, err
	}

	e.logger.Info("payment registered",
		zap.String("receipt_id", string(receipt.ID)),
		zap.String("sale_id", string(saleID)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("status", string(sale.Status)),
	)
	return &receipt, nil
}

// ReversePayment deletes a receipt and reverts its sale's paid amount and
// status in a single transaction. The reverted paid amount is clamped at
// zero even if data drifted.
func (e *SettlementEngine) ReversePayment(ctx context.Context, receiptID ReceiptID) error {
	receipt, err := RequireReceipt(ctx, e.store, receiptID)
	if err != nil {
		return err
	}

	// A receipt whose sale vanished is an integrity breach; surface it as
	// the sale being missing rather than silently dropping the receipt.
	sale, err := RequireSale(ctx, e.store, receipt.SaleID)
	if err != nil {
		return err
	}

	newPaid := sale.Paid.Sub(receipt.Amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	sale.Paid = newPaid
	sale.Status = DeriveStatus(newPaid, sale.Total)

	err = e.store.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateSale(ctx, *sale); err != nil {
			return err
		}
		return tx.DeleteReceipt(ctx, receiptID)
	})
	if err != nil {
		e.logger.Error("failed to reverse payment",
			zap.String("receipt_id", string(receiptID)), zap.Error(err))
		return err
	}

	e.logger.Info("payment reversed",
		zap.String("receipt_id", string(receiptID)),
		zap.String("sale_id", string(sale.ID)),
		zap.String("paid", sale.Paid.StringFixed(2)),
		zap.String("status", string(sale.Status)),
	)
	return nil
}

// =============================================================================
// QUERY HELPERS
// =============================================================================

// ReceiptsForSale returns the sale's receipts, most recent payment first.
func (e *SettlementEngine) ReceiptsForSale(ctx context.Context, id SaleID) ([]Receipt, error) {
	return e.store.ReceiptsBySale(ctx, id)
}

// ReceiptsForCustomer returns the customer's receipts, most recent first.
func (e *SettlementEngine) ReceiptsForCustomer(ctx context.Context, id CustomerID) ([]Receipt, error) {
	return e.store.ReceiptsByCustomer(ctx, id)
}

// TotalReceivedForSale sums the sale's receipt amounts. Under the
// settlement invariant this always equals the sale's paid amount.
func (e *SettlementEngine) TotalReceivedForSale(ctx context.Context, id SaleID) (decimal.Decimal, error) {
	receipts, err := e.store.ReceiptsBySale(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return sumReceipts(receipts), nil
}

// TotalReceivedForCustomer sums the customer's receipt amounts.
func (e *SettlementEngine) TotalReceivedForCustomer(ctx context.Context, id CustomerID) (decimal.Decimal, error) {
	receipts, err := e.store.ReceiptsByCustomer(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return sumReceipts(receipts), nil
}

// TotalReceivedInRange sums receipt amounts with payment date in
// [from, to], inclusive.
func (e *SettlementEngine) TotalReceivedInRange(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	if to.Before(from) {
		return decimal.Zero, &ValidationError{Message: "invalid date range: end before start"}
	}
	receipts, err := e.store.ReceiptsInRange(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return sumReceipts(receipts), nil
}

func sumReceipts(receipts []Receipt) decimal.Decimal {
	total := decimal.Zero
	for _, r := range receipts {
		total = total.Add(r.Amount)
	}
	return total
}

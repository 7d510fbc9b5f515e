/*
store.go - Persistence contract for the receivables core

PURPOSE:
  Defines the interface between the domain services and the database.
  One small interface per record kind, composed into Store; TxStore adds
  the scoped write transaction every mutating operation runs inside.

LOOKUP CONVENTION:
  Get* returns (nil, nil) when the record is absent. Services convert
  absence into a NotFoundError; the store layer never does.

ATOMICITY:
  WithTx executes fn against a transactional view of the store. If fn
  returns an error the transaction is discarded; otherwise it commits.
  Registering a payment writes a receipt and updates its sale inside one
  WithTx - no intermediate state is ever observable.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - ledger/store: in-memory store for tests and dev

SEE ALSO:
  - settlement.go: the main WithTx consumer
*/
package ledger

import (
	"context"
	"time"
)

// =============================================================================
// PER-KIND STORES
// =============================================================================

// CustomerStore persists customers.
type CustomerStore interface {
	SaveCustomer(ctx context.Context, c Customer) error
	UpdateCustomer(ctx context.Context, c Customer) error
	GetCustomer(ctx context.Context, id CustomerID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)

	// CustomersByName returns customers whose name contains the given
	// substring, case-insensitively, ordered by name.
	CustomersByName(ctx context.Context, name string) ([]Customer, error)
	CustomersOrderedByName(ctx context.Context) ([]Customer, error)
	CustomerByPhone(ctx context.Context, phone string) (*Customer, error)

	DeleteCustomer(ctx context.Context, id CustomerID) error
}

// ProductStore persists products.
type ProductStore interface {
	SaveProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id ProductID) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ProductsByName(ctx context.Context, name string) ([]Product, error)
	ProductsOrderedByName(ctx context.Context) ([]Product, error)
	DeleteProduct(ctx context.Context, id ProductID) error
}

// SaleStore persists sales.
type SaleStore interface {
	SaveSale(ctx context.Context, s Sale) error
	UpdateSale(ctx context.Context, s Sale) error
	GetSale(ctx context.Context, id SaleID) (*Sale, error)
	ListSales(ctx context.Context) ([]Sale, error)
	SalesByCustomer(ctx context.Context, id CustomerID) ([]Sale, error)
	SalesByProduct(ctx context.Context, id ProductID) ([]Sale, error)
	SalesByStatus(ctx context.Context, status Status) ([]Sale, error)

	// PendingSales returns every sale with status != paid,
	// most recent sale date first.
	PendingSales(ctx context.Context) ([]Sale, error)

	// SalesInRange returns sales with sale date in [from, to],
	// inclusive on both ends.
	SalesInRange(ctx context.Context, from, to time.Time) ([]Sale, error)

	DeleteSale(ctx context.Context, id SaleID) error
}

// ReceiptStore persists receipts.
type ReceiptStore interface {
	SaveReceipt(ctx context.Context, r Receipt) error
	GetReceipt(ctx context.Context, id ReceiptID) (*Receipt, error)

	// ReceiptsBySale and ReceiptsByCustomer return receipts ordered by
	// payment date, most recent first.
	ReceiptsBySale(ctx context.Context, id SaleID) ([]Receipt, error)
	ReceiptsByCustomer(ctx context.Context, id CustomerID) ([]Receipt, error)
	ReceiptsInRange(ctx context.Context, from, to time.Time) ([]Receipt, error)

	DeleteReceipt(ctx context.Context, id ReceiptID) error
}

// =============================================================================
// COMPOSED STORE + TRANSACTIONS
// =============================================================================

// Store is the full persistence surface the services depend on.
type Store interface {
	CustomerStore
	ProductStore
	SaleStore
	ReceiptStore
}

// TxStore wraps Store with scoped write transactions.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}

/*
Package sqlite provides the SQLite-backed implementation of the ledger
storage interfaces.

PURPOSE:
  Implements ledger.Store and ledger.TxStore using SQLite. In production
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  customers: registered buyers
  products:  catalog items
  sales:     credit transactions with running paid amount and status
  receipts:  individual payments against sales

MONEY:
  Decimal values are stored as strings (decimal.Decimal.String()) and
  parsed back on scan, never as floats.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on the shared handle. SQLite is
  opened with WAL (Write-Ahead Logging) and foreign keys on.

TRANSACTIONS:
  WithTx wraps fn in one database transaction with commit-or-discard
  semantics. All helpers are written against a small dbtx interface
  satisfied by both *sql.DB and *sql.Tx, so the same code runs inside
  or outside a transaction.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/brisa/receivables/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		phone TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(name);

	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		total TEXT NOT NULL,
		sale_date TEXT NOT NULL,
		description TEXT,
		paid TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id);
	CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product_id);
	CREATE INDEX IF NOT EXISTS idx_sales_status ON sales(status);
	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date DESC);

	CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		sale_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_receipts_sale ON receipts(sale_id);
	CREATE INDEX IF NOT EXISTS idx_receipts_customer ON receipts(customer_id);
	CREATE INDEX IF NOT EXISTS idx_receipts_paid_at ON receipts(paid_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same helpers run
// inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// TRANSACTIONS (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs every operation on the open *sql.Tx. The parent holds the
// store mutex for the duration of WithTx, so txStore takes no locks.
type txStore struct {
	tx *sql.Tx
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func saveCustomer(ctx context.Context, db dbtx, c ledger.Customer) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO customers (id, name, phone, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, nullString(c.Phone), c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func updateCustomer(ctx context.Context, db dbtx, c ledger.Customer) error {
	_, err := db.ExecContext(ctx,
		`UPDATE customers SET name = ?, phone = ? WHERE id = ?`,
		c.Name, nullString(c.Phone), c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	return nil
}

const customerColumns = `id, name, phone, created_at`

func scanCustomer(row interface{ Scan(...any) error }) (*ledger.Customer, error) {
	var (
		c         ledger.Customer
		phone     sql.NullString
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &phone, &createdAt); err != nil {
		return nil, err
	}
	c.Phone = phone.String
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

func getCustomer(ctx context.Context, db dbtx, id ledger.CustomerID) (*ledger.Customer, error) {
	c, err := scanCustomer(db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func customerByPhone(ctx context.Context, db dbtx, phone string) (*ledger.Customer, error) {
	if phone == "" {
		return nil, nil
	}
	c, err := scanCustomer(db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE phone = ? LIMIT 1`, phone))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func queryCustomers(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Customer, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []ledger.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

const (
	sqlListCustomers = `SELECT ` + customerColumns + ` FROM customers`
	sqlCustomersByName = `SELECT ` + customerColumns + ` FROM customers
		WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
		ORDER BY name COLLATE NOCASE`
	sqlCustomersOrdered = `SELECT ` + customerColumns + ` FROM customers
		ORDER BY name COLLATE NOCASE`
)

func (s *Store) SaveCustomer(ctx context.Context, c ledger.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveCustomer(ctx, s.db, c)
}

func (s *Store) UpdateCustomer(ctx context.Context, c ledger.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateCustomer(ctx, s.db, c)
}

func (s *Store) GetCustomer(ctx context.Context, id ledger.CustomerID) (*ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getCustomer(ctx, s.db, id)
}

func (s *Store) ListCustomers(ctx context.Context) ([]ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCustomers(ctx, s.db, sqlListCustomers)
}

func (s *Store) CustomersByName(ctx context.Context, name string) ([]ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCustomers(ctx, s.db, sqlCustomersByName, name)
}

func (s *Store) CustomersOrderedByName(ctx context.Context) ([]ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCustomers(ctx, s.db, sqlCustomersOrdered)
}

func (s *Store) CustomerByPhone(ctx context.Context, phone string) (*ledger.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return customerByPhone(ctx, s.db, phone)
}

func (s *Store) DeleteCustomer(ctx context.Context, id ledger.CustomerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	return err
}

func (ts *txStore) SaveCustomer(ctx context.Context, c ledger.Customer) error {
	return saveCustomer(ctx, ts.tx, c)
}

func (ts *txStore) UpdateCustomer(ctx context.Context, c ledger.Customer) error {
	return updateCustomer(ctx, ts.tx, c)
}

func (ts *txStore) GetCustomer(ctx context.Context, id ledger.CustomerID) (*ledger.Customer, error) {
	return getCustomer(ctx, ts.tx, id)
}

func (ts *txStore) ListCustomers(ctx context.Context) ([]ledger.Customer, error) {
	return queryCustomers(ctx, ts.tx, sqlListCustomers)
}

func (ts *txStore) CustomersByName(ctx context.Context, name string) ([]ledger.Customer, error) {
	return queryCustomers(ctx, ts.tx, sqlCustomersByName, name)
}

func (ts *txStore) CustomersOrderedByName(ctx context.Context) ([]ledger.Customer, error) {
	return queryCustomers(ctx, ts.tx, sqlCustomersOrdered)
}

func (ts *txStore) CustomerByPhone(ctx context.Context, phone string) (*ledger.Customer, error) {
	return customerByPhone(ctx, ts.tx, phone)
}

func (ts *txStore) DeleteCustomer(ctx context.Context, id ledger.CustomerID) error {
	_, err := ts.tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	return err
}

// =============================================================================
// PRODUCTS
// =============================================================================

func saveProduct(ctx context.Context, db dbtx, p ledger.Product) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO products (id, name, price, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.Price.String(), p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func updateProduct(ctx context.Context, db dbtx, p ledger.Product) error {
	_, err := db.ExecContext(ctx,
		`UPDATE products SET name = ?, price = ? WHERE id = ?`,
		p.Name, p.Price.String(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

const productColumns = `id, name, price, created_at`

func scanProduct(row interface{ Scan(...any) error }) (*ledger.Product, error) {
	var (
		p         ledger.Product
		price     string
		createdAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &createdAt); err != nil {
		return nil, err
	}
	p.Price = ledger.MustDecimal(price)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

func getProduct(ctx context.Context, db dbtx, id ledger.ProductID) (*ledger.Product, error) {
	p, err := scanProduct(db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func queryProducts(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Product, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

const (
	sqlListProducts = `SELECT ` + productColumns + ` FROM products`
	sqlProductsByName = `SELECT ` + productColumns + ` FROM products
		WHERE LOWER(name) LIKE '%' || LOWER(?) || '%'
		ORDER BY name COLLATE NOCASE`
	sqlProductsOrdered = `SELECT ` + productColumns + ` FROM products
		ORDER BY name COLLATE NOCASE`
)

func (s *Store) SaveProduct(ctx context.Context, p ledger.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveProduct(ctx, s.db, p)
}

func (s *Store) UpdateProduct(ctx context.Context, p ledger.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateProduct(ctx, s.db, p)
}

func (s *Store) GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getProduct(ctx, s.db, id)
}

func (s *Store) ListProducts(ctx context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryProducts(ctx, s.db, sqlListProducts)
}

func (s *Store) ProductsByName(ctx context.Context, name string) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryProducts(ctx, s.db, sqlProductsByName, name)
}

func (s *Store) ProductsOrderedByName(ctx context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryProducts(ctx, s.db, sqlProductsOrdered)
}

func (s *Store) DeleteProduct(ctx context.Context, id ledger.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

func (ts *txStore) SaveProduct(ctx context.Context, p ledger.Product) error {
	return saveProduct(ctx, ts.tx, p)
}

func (ts *txStore) UpdateProduct(ctx context.Context, p ledger.Product) error {
	return updateProduct(ctx, ts.tx, p)
}

func (ts *txStore) GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) ListProducts(ctx context.Context) ([]ledger.Product, error) {
	return queryProducts(ctx, ts.tx, sqlListProducts)
}

func (ts *txStore) ProductsByName(ctx context.Context, name string) ([]ledger.Product, error) {
	return queryProducts(ctx, ts.tx, sqlProductsByName, name)
}

func (ts *txStore) ProductsOrderedByName(ctx context.Context) ([]ledger.Product, error) {
	return queryProducts(ctx, ts.tx, sqlProductsOrdered)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id ledger.ProductID) error {
	_, err := ts.tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

// =============================================================================
// SALES
// =============================================================================

func saveSale(ctx context.Context, db dbtx, sale ledger.Sale) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO sales
		 (id, product_id, customer_id, total, sale_date, description, paid, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.ProductID, sale.CustomerID,
		sale.Total.String(),
		sale.SaleDate.UTC().Format(time.RFC3339),
		nullString(sale.Description),
		sale.Paid.String(),
		sale.Status,
		sale.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save sale: %w", err)
	}
	return nil
}

func updateSale(ctx context.Context, db dbtx, sale ledger.Sale) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sales
		 SET product_id = ?, customer_id = ?, total = ?, sale_date = ?,
		     description = ?, paid = ?, status = ?
		 WHERE id = ?`,
		sale.ProductID, sale.CustomerID,
		sale.Total.String(),
		sale.SaleDate.UTC().Format(time.RFC3339),
		nullString(sale.Description),
		sale.Paid.String(),
		sale.Status,
		sale.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	return nil
}

const saleColumns = `id, product_id, customer_id, total, sale_date, description, paid, status, created_at`

func scanSale(row interface{ Scan(...any) error }) (*ledger.Sale, error) {
	var (
		sale        ledger.Sale
		total       string
		saleDate    string
		description sql.NullString
		paid        string
		createdAt   string
	)
	err := row.Scan(&sale.ID, &sale.ProductID, &sale.CustomerID,
		&total, &saleDate, &description, &paid, &sale.Status, &createdAt)
	if err != nil {
		return nil, err
	}
	sale.Total = ledger.MustDecimal(total)
	sale.Paid = ledger.MustDecimal(paid)
	sale.SaleDate, _ = time.Parse(time.RFC3339, saleDate)
	sale.Description = description.String
	sale.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &sale, nil
}

func getSale(ctx context.Context, db dbtx, id ledger.SaleID) (*ledger.Sale, error) {
	sale, err := scanSale(db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return sale, err
}

func querySales(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Sale, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []ledger.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

const (
	sqlListSales = `SELECT ` + saleColumns + ` FROM sales ORDER BY sale_date DESC`
	sqlSalesByCustomer = `SELECT ` + saleColumns + ` FROM sales
		WHERE customer_id = ? ORDER BY sale_date DESC`
	sqlSalesByProduct = `SELECT ` + saleColumns + ` FROM sales
		WHERE product_id = ? ORDER BY sale_date DESC`
	sqlSalesByStatus = `SELECT ` + saleColumns + ` FROM sales
		WHERE status = ? ORDER BY sale_date DESC`
	sqlPendingSales = `SELECT ` + saleColumns + ` FROM sales
		WHERE status != ? ORDER BY sale_date DESC`
	sqlSalesInRange = `SELECT ` + saleColumns + ` FROM sales
		WHERE sale_date >= ? AND sale_date <= ? ORDER BY sale_date DESC`
)

func (s *Store) SaveSale(ctx context.Context, sale ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveSale(ctx, s.db, sale)
}

func (s *Store) UpdateSale(ctx context.Context, sale ledger.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateSale(ctx, s.db, sale)
}

func (s *Store) GetSale(ctx context.Context, id ledger.SaleID) (*ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSale(ctx, s.db, id)
}

func (s *Store) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, sqlListSales)
}

func (s *Store) SalesByCustomer(ctx context.Context, id ledger.CustomerID) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, sqlSalesByCustomer, id)
}

func (s *Store) SalesByProduct(ctx context.Context, id ledger.ProductID) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, sqlSalesByProduct, id)
}

func (s *Store) SalesByStatus(ctx context.Context, status ledger.Status) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, sqlSalesByStatus, status)
}

func (s *Store) PendingSales(ctx context.Context) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, sqlPendingSales, ledger.StatusPaid)
}

func (s *Store) SalesInRange(ctx context.Context, from, to time.Time) ([]ledger.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return querySales(ctx, s.db, sqlSalesInRange,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (s *Store) DeleteSale(ctx context.Context, id ledger.SaleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	return err
}

func (ts *txStore) SaveSale(ctx context.Context, sale ledger.Sale) error {
	return saveSale(ctx, ts.tx, sale)
}

func (ts *txStore) UpdateSale(ctx context.Context, sale ledger.Sale) error {
	return updateSale(ctx, ts.tx, sale)
}

func (ts *txStore) GetSale(ctx context.Context, id ledger.SaleID) (*ledger.Sale, error) {
	return getSale(ctx, ts.tx, id)
}

func (ts *txStore) ListSales(ctx context.Context) ([]ledger.Sale, error) {
	return querySales(ctx, ts.tx, sqlListSales)
}

func (ts *txStore) SalesByCustomer(ctx context.Context, id ledger.CustomerID) ([]ledger.Sale, error) {
	return querySales(ctx, ts.tx, sqlSalesByCustomer, id)
}

func (ts *txStore) SalesByProduct(ctx context.Context, id ledger.ProductID) ([]ledger.Sale, error) {
	return querySales(ctx, ts.tx, sqlSalesByProduct, id)
}

func (ts *txStore) SalesByStatus(ctx context.Context, status ledger.Status) ([]ledger.Sale, error) {
	return querySales(ctx, ts.tx, sqlSalesByStatus, status)
}

func (ts *txStore) PendingSales(ctx context.Context) ([]ledger.Sale, error) {
	return querySales(ctx, ts.tx, sqlPendingSales, ledger.StatusPaid)
}

func (ts *txStore) SalesInRange(ctx context.Context, from, to time.Time) ([]ledger.Sale, error) {
	return querySales(ctx, ts.tx, sqlSalesInRange,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (ts *txStore) DeleteSale(ctx context.Context, id ledger.SaleID) error {
	_, err := ts.tx.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, id)
	return err
}

// =============================================================================
// RECEIPTS
// =============================================================================

func saveReceipt(ctx context.Context, db dbtx, r ledger.Receipt) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO receipts (id, sale_id, customer_id, amount, paid_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.SaleID, r.CustomerID,
		r.Amount.String(),
		r.PaidAt.UTC().Format(time.RFC3339),
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

const receiptColumns = `id, sale_id, customer_id, amount, paid_at, created_at`

func scanReceipt(row interface{ Scan(...any) error }) (*ledger.Receipt, error) {
	var (
		r         ledger.Receipt
		amount    string
		paidAt    string
		createdAt string
	)
	if err := row.Scan(&r.ID, &r.SaleID, &r.CustomerID, &amount, &paidAt, &createdAt); err != nil {
		return nil, err
	}
	r.Amount = ledger.MustDecimal(amount)
	r.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

func getReceipt(ctx context.Context, db dbtx, id ledger.ReceiptID) (*ledger.Receipt, error) {
	r, err := scanReceipt(db.QueryRowContext(ctx,
		`SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func queryReceipts(ctx context.Context, db dbtx, query string, args ...any) ([]ledger.Receipt, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []ledger.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		receipts = append(receipts, *r)
	}
	return receipts, rows.Err()
}

const (
	sqlReceiptsBySale = `SELECT ` + receiptColumns + ` FROM receipts
		WHERE sale_id = ? ORDER BY paid_at DESC`
	sqlReceiptsByCustomer = `SELECT ` + receiptColumns + ` FROM receipts
		WHERE customer_id = ? ORDER BY paid_at DESC`
	sqlReceiptsInRange = `SELECT ` + receiptColumns + ` FROM receipts
		WHERE paid_at >= ? AND paid_at <= ? ORDER BY paid_at DESC`
)

func (s *Store) SaveReceipt(ctx context.Context, r ledger.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveReceipt(ctx, s.db, r)
}

func (s *Store) GetReceipt(ctx context.Context, id ledger.ReceiptID) (*ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getReceipt(ctx, s.db, id)
}

func (s *Store) ReceiptsBySale(ctx context.Context, id ledger.SaleID) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryReceipts(ctx, s.db, sqlReceiptsBySale, id)
}

func (s *Store) ReceiptsByCustomer(ctx context.Context, id ledger.CustomerID) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryReceipts(ctx, s.db, sqlReceiptsByCustomer, id)
}

func (s *Store) ReceiptsInRange(ctx context.Context, from, to time.Time) ([]ledger.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryReceipts(ctx, s.db, sqlReceiptsInRange,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (s *Store) DeleteReceipt(ctx context.Context, id ledger.ReceiptID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	return err
}

func (ts *txStore) SaveReceipt(ctx context.Context, r ledger.Receipt) error {
	return saveReceipt(ctx, ts.tx, r)
}

func (ts *txStore) GetReceipt(ctx context.Context, id ledger.ReceiptID) (*ledger.Receipt, error) {
	return getReceipt(ctx, ts.tx, id)
}

func (ts *txStore) ReceiptsBySale(ctx context.Context, id ledger.SaleID) ([]ledger.Receipt, error) {
	return queryReceipts(ctx, ts.tx, sqlReceiptsBySale, id)
}

func (ts *txStore) ReceiptsByCustomer(ctx context.Context, id ledger.CustomerID) ([]ledger.Receipt, error) {
	return queryReceipts(ctx, ts.tx, sqlReceiptsByCustomer, id)
}

func (ts *txStore) ReceiptsInRange(ctx context.Context, from, to time.Time) ([]ledger.Receipt, error) {
	return queryReceipts(ctx, ts.tx, sqlReceiptsInRange,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
}

func (ts *txStore) DeleteReceipt(ctx context.Context, id ledger.ReceiptID) error {
	_, err := ts.tx.ExecContext(ctx, `DELETE FROM receipts WHERE id = ?`, id)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"receipts", "sales", "products", "customers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

/*
Package store provides an in-memory ledger.Store implementation for
tests and development.

A single generic collection type holds each record kind; the four kinds
compose it rather than inheriting a base repository. WithTx is simulated
with a full snapshot taken under the write lock and restored when the
transaction function fails, which gives the same commit-or-discard
contract as the SQLite store.
*/
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brisa/receivables/ledger"
)

// =============================================================================
// GENERIC COLLECTION - One per record kind, composed not inherited
// =============================================================================

type collection[T any] struct {
	items map[string]T
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{items: make(map[string]T)}
}

func (c *collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *collection[T]) put(id string, v T) {
	c.items[id] = v
}

func (c *collection[T]) remove(id string) {
	delete(c.items, id)
}

func (c *collection[T]) all() []T {
	out := make([]T, 0, len(c.items))
	for _, v := range c.items {
		out = append(out, v)
	}
	return out
}

func (c *collection[T]) clone() *collection[T] {
	cp := newCollection[T]()
	for k, v := range c.items {
		cp.items[k] = v
	}
	return cp
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory is an in-memory ledger.TxStore.
type Memory struct {
	mu        sync.RWMutex
	customers *collection[ledger.Customer]
	products  *collection[ledger.Product]
	sales     *collection[ledger.Sale]
	receipts  *collection[ledger.Receipt]
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		customers: newCollection[ledger.Customer](),
		products:  newCollection[ledger.Product](),
		sales:     newCollection[ledger.Sale](),
		receipts:  newCollection[ledger.Receipt](),
	}
}

type memorySnapshot struct {
	customers *collection[ledger.Customer]
	products  *collection[ledger.Product]
	sales     *collection[ledger.Sale]
	receipts  *collection[ledger.Receipt]
}

func (m *Memory) snapshot() memorySnapshot {
	return memorySnapshot{
		customers: m.customers.clone(),
		products:  m.products.clone(),
		sales:     m.sales.clone(),
		receipts:  m.receipts.clone(),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.customers = s.customers
	m.products = s.products
	m.sales = s.sales
	m.receipts = s.receipts
}

// WithTx executes fn against a transactional view. On error the state
// captured before fn ran is restored.
func (m *Memory) WithTx(_ context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&txMemoryView{parent: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (m *Memory) SaveCustomer(_ context.Context, c ledger.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers.put(string(c.ID), c)
	return nil
}

func (m *Memory) UpdateCustomer(ctx context.Context, c ledger.Customer) error {
	return m.SaveCustomer(ctx, c)
}

func (m *Memory) GetCustomer(_ context.Context, id ledger.CustomerID) (*ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.customers.get(string(id)); ok {
		return &c, nil
	}
	return nil, nil
}

func (m *Memory) ListCustomers(_ context.Context) ([]ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.customers.all(), nil
}

func (m *Memory) CustomersByName(_ context.Context, name string) ([]ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(name)
	var out []ledger.Customer
	for _, c := range m.customers.all() {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	sortCustomersByName(out)
	return out, nil
}

func (m *Memory) CustomersOrderedByName(_ context.Context) ([]ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.customers.all()
	sortCustomersByName(out)
	return out, nil
}

func (m *Memory) CustomerByPhone(_ context.Context, phone string) (*ledger.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.customers.all() {
		if c.Phone == phone && phone != "" {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (m *Memory) DeleteCustomer(_ context.Context, id ledger.CustomerID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers.remove(string(id))
	return nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) SaveProduct(_ context.Context, p ledger.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products.put(string(p.ID), p)
	return nil
}

func (m *Memory) UpdateProduct(ctx context.Context, p ledger.Product) error {
	return m.SaveProduct(ctx, p)
}

func (m *Memory) GetProduct(_ context.Context, id ledger.ProductID) (*ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.products.get(string(id)); ok {
		return &p, nil
	}
	return nil, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products.all(), nil
}

func (m *Memory) ProductsByName(_ context.Context, name string) ([]ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(name)
	var out []ledger.Product
	for _, p := range m.products.all() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	sortProductsByName(out)
	return out, nil
}

func (m *Memory) ProductsOrderedByName(_ context.Context) ([]ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.products.all()
	sortProductsByName(out)
	return out, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id ledger.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products.remove(string(id))
	return nil
}

// =============================================================================
// SALES
// =============================================================================

func (m *Memory) SaveSale(_ context.Context, s ledger.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales.put(string(s.ID), s)
	return nil
}

func (m *Memory) UpdateSale(ctx context.Context, s ledger.Sale) error {
	return m.SaveSale(ctx, s)
}

func (m *Memory) GetSale(_ context.Context, id ledger.SaleID) (*ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sales.get(string(id)); ok {
		return &s, nil
	}
	return nil, nil
}

func (m *Memory) ListSales(_ context.Context) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.sales.all()
	sortSalesByDateDesc(out)
	return out, nil
}

func (m *Memory) SalesByCustomer(_ context.Context, id ledger.CustomerID) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterSales(func(s ledger.Sale) bool { return s.CustomerID == id }), nil
}

func (m *Memory) SalesByProduct(_ context.Context, id ledger.ProductID) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterSales(func(s ledger.Sale) bool { return s.ProductID == id }), nil
}

func (m *Memory) SalesByStatus(_ context.Context, status ledger.Status) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterSales(func(s ledger.Sale) bool { return s.Status == status }), nil
}

func (m *Memory) PendingSales(_ context.Context) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterSales(func(s ledger.Sale) bool { return s.Status != ledger.StatusPaid }), nil
}

func (m *Memory) SalesInRange(_ context.Context, from, to time.Time) ([]ledger.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterSales(func(s ledger.Sale) bool {
		return !s.SaleDate.Before(from) && !s.SaleDate.After(to)
	}), nil
}

func (m *Memory) DeleteSale(_ context.Context, id ledger.SaleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales.remove(string(id))
	return nil
}

func (m *Memory) filterSales(keep func(ledger.Sale) bool) []ledger.Sale {
	var out []ledger.Sale
	for _, s := range m.sales.all() {
		if keep(s) {
			out = append(out, s)
		}
	}
	sortSalesByDateDesc(out)
	return out
}

// =============================================================================
// RECEIPTS
// =============================================================================

func (m *Memory) SaveReceipt(_ context.Context, r ledger.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts.put(string(r.ID), r)
	return nil
}

func (m *Memory) GetReceipt(_ context.Context, id ledger.ReceiptID) (*ledger.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.receipts.get(string(id)); ok {
		return &r, nil
	}
	return nil, nil
}

func (m *Memory) ReceiptsBySale(_ context.Context, id ledger.SaleID) ([]ledger.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterReceipts(func(r ledger.Receipt) bool { return r.SaleID == id }), nil
}

func (m *Memory) ReceiptsByCustomer(_ context.Context, id ledger.CustomerID) ([]ledger.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterReceipts(func(r ledger.Receipt) bool { return r.CustomerID == id }), nil
}

func (m *Memory) ReceiptsInRange(_ context.Context, from, to time.Time) ([]ledger.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.filterReceipts(func(r ledger.Receipt) bool {
		return !r.PaidAt.Before(from) && !r.PaidAt.After(to)
	}), nil
}

func (m *Memory) DeleteReceipt(_ context.Context, id ledger.ReceiptID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts.remove(string(id))
	return nil
}

func (m *Memory) filterReceipts(keep func(ledger.Receipt) bool) []ledger.Receipt {
	var out []ledger.Receipt
	for _, r := range m.receipts.all() {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out
}

// =============================================================================
// SORT HELPERS
// =============================================================================

func sortCustomersByName(cs []ledger.Customer) {
	sort.SliceStable(cs, func(i, j int) bool {
		return strings.ToLower(cs[i].Name) < strings.ToLower(cs[j].Name)
	})
}

func sortProductsByName(ps []ledger.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		return strings.ToLower(ps[i].Name) < strings.ToLower(ps[j].Name)
	})
}

func sortSalesByDateDesc(ss []ledger.Sale) {
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].SaleDate.After(ss[j].SaleDate) })
}

// =============================================================================
// TRANSACTIONAL VIEW
// =============================================================================

// txMemoryView runs inside WithTx while the parent's write lock is held,
// so it bypasses the parent's locking and touches collections directly.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) SaveCustomer(_ context.Context, c ledger.Customer) error {
	tv.parent.customers.put(string(c.ID), c)
	return nil
}

func (tv *txMemoryView) UpdateCustomer(ctx context.Context, c ledger.Customer) error {
	return tv.SaveCustomer(ctx, c)
}

func (tv *txMemoryView) GetCustomer(_ context.Context, id ledger.CustomerID) (*ledger.Customer, error) {
	if c, ok := tv.parent.customers.get(string(id)); ok {
		return &c, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ListCustomers(_ context.Context) ([]ledger.Customer, error) {
	return tv.parent.customers.all(), nil
}

func (tv *txMemoryView) CustomersByName(_ context.Context, name string) ([]ledger.Customer, error) {
	needle := strings.ToLower(name)
	var out []ledger.Customer
	for _, c := range tv.parent.customers.all() {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	sortCustomersByName(out)
	return out, nil
}

func (tv *txMemoryView) CustomersOrderedByName(_ context.Context) ([]ledger.Customer, error) {
	out := tv.parent.customers.all()
	sortCustomersByName(out)
	return out, nil
}

func (tv *txMemoryView) CustomerByPhone(_ context.Context, phone string) (*ledger.Customer, error) {
	for _, c := range tv.parent.customers.all() {
		if c.Phone == phone && phone != "" {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (tv *txMemoryView) DeleteCustomer(_ context.Context, id ledger.CustomerID) error {
	tv.parent.customers.remove(string(id))
	return nil
}

func (tv *txMemoryView) SaveProduct(_ context.Context, p ledger.Product) error {
	tv.parent.products.put(string(p.ID), p)
	return nil
}

func (tv *txMemoryView) UpdateProduct(ctx context.Context, p ledger.Product) error {
	return tv.SaveProduct(ctx, p)
}

func (tv *txMemoryView) GetProduct(_ context.Context, id ledger.ProductID) (*ledger.Product, error) {
	if p, ok := tv.parent.products.get(string(id)); ok {
		return &p, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ListProducts(_ context.Context) ([]ledger.Product, error) {
	return tv.parent.products.all(), nil
}

func (tv *txMemoryView) ProductsByName(_ context.Context, name string) ([]ledger.Product, error) {
	needle := strings.ToLower(name)
	var out []ledger.Product
	for _, p := range tv.parent.products.all() {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	sortProductsByName(out)
	return out, nil
}

func (tv *txMemoryView) ProductsOrderedByName(_ context.Context) ([]ledger.Product, error) {
	out := tv.parent.products.all()
	sortProductsByName(out)
	return out, nil
}

func (tv *txMemoryView) DeleteProduct(_ context.Context, id ledger.ProductID) error {
	tv.parent.products.remove(string(id))
	return nil
}

func (tv *txMemoryView) SaveSale(_ context.Context, s ledger.Sale) error {
	tv.parent.sales.put(string(s.ID), s)
	return nil
}

func (tv *txMemoryView) UpdateSale(ctx context.Context, s ledger.Sale) error {
	return tv.SaveSale(ctx, s)
}

func (tv *txMemoryView) GetSale(_ context.Context, id ledger.SaleID) (*ledger.Sale, error) {
	if s, ok := tv.parent.sales.get(string(id)); ok {
		return &s, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ListSales(_ context.Context) ([]ledger.Sale, error) {
	out := tv.parent.sales.all()
	sortSalesByDateDesc(out)
	return out, nil
}

func (tv *txMemoryView) SalesByCustomer(_ context.Context, id ledger.CustomerID) ([]ledger.Sale, error) {
	return tv.parent.filterSales(func(s ledger.Sale) bool { return s.CustomerID == id }), nil
}

func (tv *txMemoryView) SalesByProduct(_ context.Context, id ledger.ProductID) ([]ledger.Sale, error) {
	return tv.parent.filterSales(func(s ledger.Sale) bool { return s.ProductID == id }), nil
}

func (tv *txMemoryView) SalesByStatus(_ context.Context, status ledger.Status) ([]ledger.Sale, error) {
	return tv.parent.filterSales(func(s ledger.Sale) bool { return s.Status == status }), nil
}

func (tv *txMemoryView) PendingSales(_ context.Context) ([]ledger.Sale, error) {
	return tv.parent.filterSales(func(s ledger.Sale) bool { return s.Status != ledger.StatusPaid }), nil
}

func (tv *txMemoryView) SalesInRange(_ context.Context, from, to time.Time) ([]ledger.Sale, error) {
	return tv.parent.filterSales(func(s ledger.Sale) bool {
		return !s.SaleDate.Before(from) && !s.SaleDate.After(to)
	}), nil
}

func (tv *txMemoryView) DeleteSale(_ context.Context, id ledger.SaleID) error {
	tv.parent.sales.remove(string(id))
	return nil
}

func (tv *txMemoryView) SaveReceipt(_ context.Context, r ledger.Receipt) error {
	tv.parent.receipts.put(string(r.ID), r)
	return nil
}

func (tv *txMemoryView) GetReceipt(_ context.Context, id ledger.ReceiptID) (*ledger.Receipt, error) {
	if r, ok := tv.parent.receipts.get(string(id)); ok {
		return &r, nil
	}
	return nil, nil
}

func (tv *txMemoryView) ReceiptsBySale(_ context.Context, id ledger.SaleID) ([]ledger.Receipt, error) {
	return tv.parent.filterReceipts(func(r ledger.Receipt) bool { return r.SaleID == id }), nil
}

func (tv *txMemoryView) ReceiptsByCustomer(_ context.Context, id ledger.CustomerID) ([]ledger.Receipt, error) {
	return tv.parent.filterReceipts(func(r ledger.Receipt) bool { return r.CustomerID == id }), nil
}

func (tv *txMemoryView) ReceiptsInRange(_ context.Context, from, to time.Time) ([]ledger.Receipt, error) {
	return tv.parent.filterReceipts(func(r ledger.Receipt) bool {
		return !r.PaidAt.Before(from) && !r.PaidAt.After(to)
	}), nil
}

func (tv *txMemoryView) DeleteReceipt(_ context.Context, id ledger.ReceiptID) error {
	tv.parent.receipts.remove(string(id))
	return nil
}

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brisa/receivables/ledger"
	"github.com/brisa/receivables/ledger/store"
)

func sampleSale(id string, total string, day int) ledger.Sale {
	return ledger.Sale{
		ID:         ledger.SaleID(id),
		ProductID:  "prod-1",
		CustomerID: "cust-1",
		Total:      decimal.RequireFromString(total),
		SaleDate:   time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
		Paid:       decimal.Zero,
		Status:     ledger.StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestMemory_WithTx_CommitsOnSuccess(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: A transaction writes a sale and a receipt and returns nil
	// THEN: Both are visible afterwards

	m := store.NewMemory()
	ctx := context.Background()

	err := m.WithTx(ctx, func(tx ledger.Store) error {
		if err := tx.SaveSale(ctx, sampleSale("sale-1", "100.00", 1)); err != nil {
			return err
		}
		return tx.SaveReceipt(ctx, ledger.Receipt{
			ID:         "rcpt-1",
			SaleID:     "sale-1",
			CustomerID: "cust-1",
			Amount:     decimal.RequireFromString("40.00"),
			PaidAt:     time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
			CreatedAt:  time.Now().UTC(),
		})
	})
	require.NoError(t, err)

	sale, err := m.GetSale(ctx, "sale-1")
	require.NoError(t, err)
	assert.NotNil(t, sale)

	receipts, err := m.ReceiptsBySale(ctx, "sale-1")
	require.NoError(t, err)
	assert.Len(t, receipts, 1)
}

func TestMemory_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A store holding one sale
	// WHEN: A transaction mutates it and deletes it, then fails
	// THEN: The original state is fully restored

	m := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, m.SaveSale(ctx, sampleSale("sale-1", "100.00", 1)))

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(tx ledger.Store) error {
		mutated := sampleSale("sale-1", "100.00", 1)
		mutated.Paid = decimal.RequireFromString("60.00")
		mutated.Status = ledger.StatusPartial
		if err := tx.UpdateSale(ctx, mutated); err != nil {
			return err
		}
		if err := tx.SaveReceipt(ctx, ledger.Receipt{ID: "rcpt-1", SaleID: "sale-1"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sale, err := m.GetSale(ctx, "sale-1")
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.True(t, sale.Paid.IsZero(), "paid change must be rolled back")
	assert.Equal(t, ledger.StatusPending, sale.Status)

	receipts, err := m.ReceiptsBySale(ctx, "sale-1")
	require.NoError(t, err)
	assert.Empty(t, receipts, "receipt write must be rolled back")
}

func TestMemory_GetReturnsNilWhenAbsent(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	sale, err := m.GetSale(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, sale)

	customer, err := m.GetCustomer(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestMemory_SalesInRange_Inclusive(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	for i, day := range []int{1, 5, 9} {
		s := sampleSale(string(rune('a'+i)), "10.00", day)
		require.NoError(t, m.SaveSale(ctx, s))
	}

	from := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	sales, err := m.SalesInRange(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, sales, 2, "both boundary days are included")
}

func TestMemory_PendingSalesOrderedByDateDesc(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	older := sampleSale("older", "10.00", 1)
	newer := sampleSale("newer", "10.00", 9)
	settled := sampleSale("settled", "10.00", 5)
	settled.Paid = settled.Total
	settled.Status = ledger.StatusPaid

	for _, s := range []ledger.Sale{older, newer, settled} {
		require.NoError(t, m.SaveSale(ctx, s))
	}

	pending, err := m.PendingSales(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ledger.SaleID("newer"), pending[0].ID)
	assert.Equal(t, ledger.SaleID("older"), pending[1].ID)
}

/*
settlement_test.go - Settlement engine behavior

PURPOSE:
  Exercises the payment registration and reversal paths against a real
  SQLite store: partial and full settlement, the overpayment cap, the
  receipt/sale atomicity guarantee, and reversal clamping.

READING THESE TESTS:
  Each test has:
  - A descriptive name that states the behavior
  - GIVEN/WHEN/THEN comments explaining the scenario
  - Clear assertions with explanatory messages

The fixtures here (newTestStore, seedSale, dec) are shared by the other
test files in this package.
*/
package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brisa/receivables/ledger"
	"github.com/brisa/receivables/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// seedSale creates a customer, a product, and one open sale for the given
// total, returning all three.
func seedSale(t *testing.T, store ledger.TxStore, total string) (*ledger.Customer, *ledger.Product, *ledger.Sale) {
	t.Helper()
	ctx := context.Background()

	customers := ledger.NewCustomerRegistry(store, nil)
	products := ledger.NewProductRegistry(store, nil)
	sales := ledger.NewSaleService(store, nil)

	customer, err := customers.Create(ctx, "Maria Souza", "555-0101")
	require.NoError(t, err)

	product, err := products.Create(ctx, "Chocolate Cake", dec("25.00"))
	require.NoError(t, err)

	sale, err := sales.Create(ctx, ledger.CreateSaleParams{
		CustomerID: customer.ID,
		ProductID:  product.ID,
		Total:      dec(total),
		SaleDate:   date(2026, time.March, 1),
	})
	require.NoError(t, err)

	return customer, product, sale
}

// =============================================================================
// STATUS DERIVATION
// =============================================================================

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name  string
		paid  string
		total string
		want  ledger.Status
	}{
		{"nothing paid", "0", "100", ledger.StatusPending},
		{"negative paid treated as pending", "-5", "100", ledger.StatusPending},
		{"partially paid", "40", "100", ledger.StatusPartial},
		{"one cent short", "99.99", "100", ledger.StatusPartial},
		{"exactly paid", "100", "100", ledger.StatusPaid},
		{"paid above total", "120", "100", ledger.StatusPaid},
		{"zero total zero paid", "0", "0", ledger.StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.DeriveStatus(dec(tc.paid), dec(tc.total))
			assert.Equal(t, tc.want, got)
		})
	}
}

// =============================================================================
// PAYMENT REGISTRATION
// =============================================================================

func TestRegisterPayment_PartialThenFull(t *testing.T) {
	// GIVEN: An open sale of 100
	// WHEN: 30 is paid, then the remaining 70
	// THEN: Status moves pending -> partial -> paid and paid tracks the sum

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	receipt, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("30.00"), date(2026, time.March, 2))
	require.NoError(t, err)
	assert.Equal(t, sale.ID, receipt.SaleID)
	assert.Equal(t, customer.ID, receipt.CustomerID)

	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.True(t, after.Paid.Equal(dec("30.00")), "paid should be 30, got %s", after.Paid)
	assert.Equal(t, ledger.StatusPartial, after.Status)

	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("70.00"), date(2026, time.March, 3))
	require.NoError(t, err)

	after, err = store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, after.Paid.Equal(dec("100.00")))
	assert.Equal(t, ledger.StatusPaid, after.Status)
	assert.True(t, after.Outstanding().IsZero(), "nothing should remain outstanding")
}

func TestRegisterPayment_ExactRemainderAccepted(t *testing.T) {
	// GIVEN: A sale of 50 with 20 already paid
	// WHEN: Exactly the outstanding 30 is paid
	// THEN: The payment is accepted and the sale is fully settled

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "50.00")

	_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("20.00"), date(2026, time.March, 2))
	require.NoError(t, err)

	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("30.00"), date(2026, time.March, 3))
	require.NoError(t, err)

	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, after.Status)
}

func TestRegisterPayment_OverpaymentRejected(t *testing.T) {
	// GIVEN: A sale of 100 with 80 already paid
	// WHEN: A payment of 20.01 is attempted
	// THEN: The payment is rejected outright and nothing changes

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("80.00"), date(2026, time.March, 2))
	require.NoError(t, err)

	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("20.01"), date(2026, time.March, 3))
	require.Error(t, err, "overpayment must be rejected")

	var overErr *ledger.OverpaymentError
	assert.ErrorAs(t, err, &overErr)
	assert.ErrorIs(t, err, ledger.ErrValidation, "overpayment is a client error")
	assert.True(t, overErr.Remaining.Equal(dec("20.00")))

	// Nothing was written: paid amount and receipt count are unchanged.
	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, after.Paid.Equal(dec("80.00")))
	assert.Equal(t, ledger.StatusPartial, after.Status)

	receipts, err := store.ReceiptsBySale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 1)
}

func TestRegisterPayment_NonPositiveAmountRejected(t *testing.T) {
	// GIVEN: An open sale
	// WHEN: A zero or negative payment is attempted
	// THEN: Both are rejected as validation errors

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, decimal.Zero, date(2026, time.March, 2))
	assert.ErrorIs(t, err, ledger.ErrValidation)

	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("-10.00"), date(2026, time.March, 2))
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestRegisterPayment_UnknownReferencesRejected(t *testing.T) {
	// GIVEN: A valid sale and customer
	// WHEN: Paying against a missing sale or a missing customer
	// THEN: Both fail with a not-found error

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	_, err := engine.RegisterPayment(ctx, ledger.SaleID("nope"), customer.ID, dec("10.00"), date(2026, time.March, 2))
	assert.True(t, ledger.IsNotFound(err), "missing sale should be not-found, got %v", err)

	_, err = engine.RegisterPayment(ctx, sale.ID, ledger.CustomerID("nope"), dec("10.00"), date(2026, time.March, 2))
	assert.True(t, ledger.IsNotFound(err), "missing customer should be not-found, got %v", err)
}

func TestRegisterPayment_ReceiptsAlwaysSumToPaid(t *testing.T) {
	// GIVEN: A sale of 100
	// WHEN: A series of payments lands
	// THEN: After every one, the sum of receipt amounts equals the sale's
	//       paid amount (the atomicity invariant)

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	for i, amount := range []string{"12.50", "37.50", "0.01", "49.99"} {
		_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec(amount), date(2026, time.March, 2+i))
		require.NoError(t, err)

		after, err := store.GetSale(ctx, sale.ID)
		require.NoError(t, err)

		sum, err := engine.TotalReceivedForSale(ctx, sale.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(after.Paid),
			"receipts sum %s should equal paid %s after payment %d", sum, after.Paid, i+1)
	}

	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPaid, after.Status)
}

// =============================================================================
// PAYMENT REVERSAL
// =============================================================================

func TestReversePayment_RevertsSale(t *testing.T) {
	// GIVEN: A fully settled sale of 100 (60 + 40)
	// WHEN: The 40 receipt is reversed
	// THEN: The receipt is gone and the sale is partial at 60 again

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("60.00"), date(2026, time.March, 2))
	require.NoError(t, err)
	second, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("40.00"), date(2026, time.March, 3))
	require.NoError(t, err)

	require.NoError(t, engine.ReversePayment(ctx, second.ID))

	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, after.Paid.Equal(dec("60.00")))
	assert.Equal(t, ledger.StatusPartial, after.Status)

	gone, err := store.GetReceipt(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, gone, "reversed receipt should be deleted")
}

func TestReversePayment_BackToPending(t *testing.T) {
	// GIVEN: A sale with a single payment
	// WHEN: That payment is reversed
	// THEN: The sale is pending again with zero paid

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	receipt, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("100.00"), date(2026, time.March, 2))
	require.NoError(t, err)

	require.NoError(t, engine.ReversePayment(ctx, receipt.ID))

	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, after.Paid.IsZero())
	assert.Equal(t, ledger.StatusPending, after.Status)
}

func TestReversePayment_ClampedAtZero(t *testing.T) {
	// GIVEN: A sale whose paid amount was manually corrected below the
	//        receipt that settled it
	// WHEN: The receipt is reversed
	// THEN: Paid lands at zero, never negative

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	sales := ledger.NewSaleService(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	receipt, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("50.00"), date(2026, time.March, 2))
	require.NoError(t, err)

	lower := dec("20.00")
	_, err = sales.Update(ctx, sale.ID, ledger.UpdateSaleParams{Paid: &lower})
	require.NoError(t, err)

	require.NoError(t, engine.ReversePayment(ctx, receipt.ID))

	after, err := store.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, after.Paid.IsZero(), "paid should clamp at zero, got %s", after.Paid)
	assert.Equal(t, ledger.StatusPending, after.Status)
}

func TestReversePayment_UnknownReceipt(t *testing.T) {
	store := newTestStore(t)
	engine := ledger.NewSettlementEngine(store, nil)

	err := engine.ReversePayment(context.Background(), ledger.ReceiptID("nope"))
	assert.True(t, ledger.IsNotFound(err))
}

// =============================================================================
// TOTALS
// =============================================================================

func TestTotalReceivedInRange_Inclusive(t *testing.T) {
	// GIVEN: Payments on March 2, 5 and 9
	// WHEN: Totaling March 2..5
	// THEN: Both boundary days are counted, March 9 is not

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	for _, p := range []struct {
		amount string
		day    int
	}{
		{"10.00", 2},
		{"20.00", 5},
		{"30.00", 9},
	} {
		_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec(p.amount), date(2026, time.March, p.day))
		require.NoError(t, err)
	}

	total, err := engine.TotalReceivedInRange(ctx, date(2026, time.March, 2), date(2026, time.March, 5))
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("30.00")), "expected 30, got %s", total)

	_, err = engine.TotalReceivedInRange(ctx, date(2026, time.March, 5), date(2026, time.March, 2))
	assert.ErrorIs(t, err, ledger.ErrValidation, "inverted range is a validation error")
}

func TestTotalReceivedForCustomer(t *testing.T) {
	// GIVEN: Two payments by one customer
	// WHEN: Totaling their receipts
	// THEN: The sum covers both

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("15.00"), date(2026, time.March, 2))
	require.NoError(t, err)
	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("25.00"), date(2026, time.March, 3))
	require.NoError(t, err)

	total, err := engine.TotalReceivedForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("40.00")))
}

// =============================================================================
// LIFECYCLE SCENARIO
// =============================================================================

func TestSettlement_FullLifecycle(t *testing.T) {
	// GIVEN: A fresh sale of 100 on credit
	// WHEN: It is paid off in three installments, one of which is
	//       reversed and re-registered
	// THEN: Every intermediate state satisfies 0 <= paid <= total with
	//       the matching status, and the sale ends fully settled

	store := newTestStore(t)
	ctx := context.Background()
	engine := ledger.NewSettlementEngine(store, nil)
	customer, _, sale := seedSale(t, store, "100.00")

	assertState := func(paid string, status ledger.Status) {
		t.Helper()
		s, err := store.GetSale(ctx, sale.ID)
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.True(t, s.Paid.Equal(dec(paid)), "paid: want %s, got %s", paid, s.Paid)
		assert.Equal(t, status, s.Status)
		assert.False(t, s.Paid.IsNegative())
		assert.False(t, s.Paid.GreaterThan(s.Total))
	}

	assertState("0", ledger.StatusPending)

	_, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("50.00"), date(2026, time.March, 2))
	require.NoError(t, err)
	assertState("50.00", ledger.StatusPartial)

	second, err := engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("30.00"), date(2026, time.March, 3))
	require.NoError(t, err)
	assertState("80.00", ledger.StatusPartial)

	// Wrong amount entered; reverse and redo.
	require.NoError(t, engine.ReversePayment(ctx, second.ID))
	assertState("50.00", ledger.StatusPartial)

	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("50.00"), date(2026, time.March, 4))
	require.NoError(t, err)
	assertState("100.00", ledger.StatusPaid)

	// No further payment fits.
	_, err = engine.RegisterPayment(ctx, sale.ID, customer.ID, dec("0.01"), date(2026, time.March, 5))
	var overErr *ledger.OverpaymentError
	assert.ErrorAs(t, err, &overErr)
}

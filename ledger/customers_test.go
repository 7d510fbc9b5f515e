package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brisa/receivables/ledger"
)

func TestCustomerRegistry_CreateTrimsAndValidates(t *testing.T) {
	// GIVEN: A name padded with whitespace
	// WHEN: The customer is created
	// THEN: The stored name is trimmed; an all-whitespace name is rejected

	store := newTestStore(t)
	ctx := context.Background()
	registry := ledger.NewCustomerRegistry(store, nil)

	c, err := registry.Create(ctx, "  Ana Lima  ", " 555-0102 ")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", c.Name)
	assert.Equal(t, "555-0102", c.Phone)
	assert.NotEmpty(t, c.ID)

	_, err = registry.Create(ctx, "   ", "")
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestCustomerRegistry_PartialUpdate(t *testing.T) {
	// GIVEN: An existing customer
	// WHEN: Only the phone is updated
	// THEN: The name is untouched; clearing the phone to "" is allowed,
	//       clearing the name is not

	store := newTestStore(t)
	ctx := context.Background()
	registry := ledger.NewCustomerRegistry(store, nil)

	c, err := registry.Create(ctx, "Ana Lima", "555-0102")
	require.NoError(t, err)

	phone := "555-0199"
	updated, err := registry.Update(ctx, c.ID, ledger.UpdateCustomerParams{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", updated.Name)
	assert.Equal(t, "555-0199", updated.Phone)

	empty := ""
	updated, err = registry.Update(ctx, c.ID, ledger.UpdateCustomerParams{Phone: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.Phone, "phone can be cleared")

	_, err = registry.Update(ctx, c.ID, ledger.UpdateCustomerParams{Name: &empty})
	assert.ErrorIs(t, err, ledger.ErrValidation, "name cannot be cleared")

	_, err = registry.Update(ctx, ledger.CustomerID("nope"), ledger.UpdateCustomerParams{Phone: &phone})
	assert.True(t, ledger.IsNotFound(err))
}

func TestCustomerRegistry_RemoveBlockedBySales(t *testing.T) {
	// GIVEN: A customer with one sale on credit
	// WHEN: Removal is attempted
	// THEN: It fails with a conflict until the sale is gone

	store := newTestStore(t)
	ctx := context.Background()
	registry := ledger.NewCustomerRegistry(store, nil)
	sales := ledger.NewSaleService(store, nil)
	customer, _, sale := seedSale(t, store, "50.00")

	err := registry.Remove(ctx, customer.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrConflict)

	var conflict *ledger.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "sales", conflict.Dependents)
	assert.Equal(t, 1, conflict.Count)

	// Still there.
	_, err = registry.FindByID(ctx, customer.ID)
	require.NoError(t, err)

	// After the sale is removed, removal goes through.
	require.NoError(t, sales.Remove(ctx, sale.ID))
	require.NoError(t, registry.Remove(ctx, customer.ID))

	_, err = registry.FindByID(ctx, customer.ID)
	assert.True(t, ledger.IsNotFound(err))
}

func TestCustomerRegistry_FindByName_CaseInsensitive(t *testing.T) {
	// GIVEN: Customers "Ana Lima", "Mariana Dias" and "Pedro Rocha"
	// WHEN: Searching for "ANA"
	// THEN: Both names containing "ana" match, regardless of case

	store := newTestStore(t)
	ctx := context.Background()
	registry := ledger.NewCustomerRegistry(store, nil)

	for _, name := range []string{"Ana Lima", "Mariana Dias", "Pedro Rocha"} {
		_, err := registry.Create(ctx, name, "")
		require.NoError(t, err)
	}

	found, err := registry.FindByName(ctx, "ANA")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Ana Lima", found[0].Name)
	assert.Equal(t, "Mariana Dias", found[1].Name)
}

func TestCustomerRegistry_FindAllOrderedByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	registry := ledger.NewCustomerRegistry(store, nil)

	for _, name := range []string{"Pedro Rocha", "ana lima", "Mariana Dias"} {
		_, err := registry.Create(ctx, name, "")
		require.NoError(t, err)
	}

	all, err := registry.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ana lima", all[0].Name)
	assert.Equal(t, "Mariana Dias", all[1].Name)
	assert.Equal(t, "Pedro Rocha", all[2].Name)
}

func TestCustomerRegistry_FindByPhone(t *testing.T) {
	// GIVEN: A customer with a phone on file
	// WHEN: Looking up by exact phone
	// THEN: The customer is found; an unknown phone returns nil, not an error

	store := newTestStore(t)
	ctx := context.Background()
	registry := ledger.NewCustomerRegistry(store, nil)

	created, err := registry.Create(ctx, "Ana Lima", "555-0102")
	require.NoError(t, err)

	found, err := registry.FindByPhone(ctx, "555-0102")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := registry.FindByPhone(ctx, "555-9999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCustomerRegistry_CreatedAtIsSet(t *testing.T) {
	store := newTestStore(t)
	registry := ledger.NewCustomerRegistry(store, nil)

	before := time.Now().UTC().Add(-time.Second)
	c, err := registry.Create(context.Background(), "Ana Lima", "")
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.After(before))
}

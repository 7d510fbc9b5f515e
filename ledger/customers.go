/*
customers.go - Customer registry

PURPOSE:
  Validated CRUD over customers. Names are trimmed before storage and must
  be non-empty; phone is optional. Removal is blocked while sales still
  reference the customer, so no sale can be left with a dangling reference.

SEE ALSO:
  - products.go: the sibling registry
  - refs.go: how other services resolve customer references
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CustomerRegistry provides customer management over a Store.
type CustomerRegistry struct {
	store  Store
	logger *zap.Logger
}

// NewCustomerRegistry creates a new registry. A nil logger falls back to
// a production zap logger.
func NewCustomerRegistry(store Store, logger *zap.Logger) *CustomerRegistry {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &CustomerRegistry{store: store, logger: logger}
}

// UpdateCustomerParams is a partial update: nil fields are left untouched,
// which is distinct from setting a field to the empty string.
type UpdateCustomerParams struct {
	Name  *string
	Phone *string
}

// Create registers a new customer. The name is trimmed and must be
// non-empty afterwards.
func (r *CustomerRegistry) Create(ctx context.Context, name, phone string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "customer name must not be empty"}
	}

	c := Customer{
		ID:        NewCustomerID(),
		Name:      name,
		Phone:     strings.TrimSpace(phone),
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.SaveCustomer(ctx, c); err != nil {
		r.logger.Error("failed to save customer", zap.String("customer_id", string(c.ID)), zap.Error(err))
		return nil, err
	}

	r.logger.Info("customer created", zap.String("customer_id", string(c.ID)), zap.String("name", c.Name))
	return &c, nil
}

// Update applies the supplied fields to an existing customer,
// re-validating each with the same rules as Create.
func (r *CustomerRegistry) Update(ctx context.Context, id CustomerID, params UpdateCustomerParams) (*Customer, error) {
	c, err := RequireCustomer(ctx, r.store, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, &ValidationError{Message: "customer name must not be empty"}
		}
		c.Name = name
	}
	if params.Phone != nil {
		c.Phone = strings.TrimSpace(*params.Phone)
	}

	if err := r.store.UpdateCustomer(ctx, *c); err != nil {
		r.logger.Error("failed to update customer", zap.String("customer_id", string(id)), zap.Error(err))
		return nil, err
	}
	return c, nil
}

// Remove deletes a customer. Fails with ConflictError while sales still
// reference it.
func (r *CustomerRegistry) Remove(ctx context.Context, id CustomerID) error {
	if _, err := RequireCustomer(ctx, r.store, id); err != nil {
		return err
	}

	sales, err := r.store.SalesByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if len(sales) > 0 {
		return &ConflictError{Kind: "customer", ID: string(id), Dependents: "sales", Count: len(sales)}
	}

	if err := r.store.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	r.logger.Info("customer removed", zap.String("customer_id", string(id)))
	return nil
}

// FindAll returns every customer, ordered by name.
func (r *CustomerRegistry) FindAll(ctx context.Context) ([]Customer, error) {
	return r.store.CustomersOrderedByName(ctx)
}

// FindByID returns the customer or a NotFoundError.
func (r *CustomerRegistry) FindByID(ctx context.Context, id CustomerID) (*Customer, error) {
	return RequireCustomer(ctx, r.store, id)
}

// FindByName returns customers whose name contains the given substring,
// case-insensitively.
func (r *CustomerRegistry) FindByName(ctx context.Context, name string) ([]Customer, error) {
	return r.store.CustomersByName(ctx, name)
}

// FindByPhone returns the first customer with an exactly matching phone,
// or nil when none matches.
func (r *CustomerRegistry) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	return r.store.CustomerByPhone(ctx, phone)
}

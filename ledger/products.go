/*
products.go - Product registry

Same shape as the customer registry: validated create, partial update,
blocked removal while sales reference the product. Price must be >= 0;
a free sample at price zero is allowed.
*/
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRegistry provides product management over a Store.
type ProductRegistry struct {
	store  Store
	logger *zap.Logger
}

// NewProductRegistry creates a new registry. A nil logger falls back to
// a production zap logger.
func NewProductRegistry(store Store, logger *zap.Logger) *ProductRegistry {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	return &ProductRegistry{store: store, logger: logger}
}

// UpdateProductParams is a partial update: nil fields are left untouched.
type UpdateProductParams struct {
	Name  *string
	Price *decimal.Decimal
}

// Create registers a new product.
func (r *ProductRegistry) Create(ctx context.Context, name string, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Message: "product name must not be empty"}
	}
	if price.IsNegative() {
		return nil, &ValidationError{Message: "product price must be zero or greater"}
	}

	p := Product{
		ID:        NewProductID(),
		Name:      name,
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.SaveProduct(ctx, p); err != nil {
		r.logger.Error("failed to save product", zap.String("product_id", string(p.ID)), zap.Error(err))
		return nil, err
	}

	r.logger.Info("product created", zap.String("product_id", string(p.ID)), zap.String("name", p.Name))
	return &p, nil
}

// Update applies the supplied fields to an existing product,
// re-validating each with the same rules as Create.
func (r *ProductRegistry) Update(ctx context.Context, id ProductID, params UpdateProductParams) (*Product, error) {
	p, err := RequireProduct(ctx, r.store, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, &ValidationError{Message: "product name must not be empty"}
		}
		p.Name = name
	}
	if params.Price != nil {
		if params.Price.IsNegative() {
			return nil, &ValidationError{Message: "product price must be zero or greater"}
		}
		p.Price = *params.Price
	}

	if err := r.store.UpdateProduct(ctx, *p); err != nil {
		r.logger.Error("failed to update product", zap.String("product_id", string(id)), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// Remove deletes a product. Fails with ConflictError while sales still
// reference it.
func (r *ProductRegistry) Remove(ctx context.Context, id ProductID) error {
	if _, err := RequireProduct(ctx, r.store, id); err != nil {
		return err
	}

	sales, err := r.store.SalesByProduct(ctx, id)
	if err != nil {
		return err
	}
	if len(sales) > 0 {
		return &ConflictError{Kind: "product", ID: string(id), Dependents: "sales", Count: len(sales)}
	}

	if err := r.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	r.logger.Info("product removed", zap.String("product_id", string(id)))
	return nil
}

// FindAll returns every product, ordered by name.
func (r *ProductRegistry) FindAll(ctx context.Context) ([]Product, error) {
	return r.store.ProductsOrderedByName(ctx)
}

// FindByID returns the product or a NotFoundError.
func (r *ProductRegistry) FindByID(ctx context.Context, id ProductID) (*Product, error) {
	return RequireProduct(ctx, r.store, id)
}

// FindByName returns products whose name contains the given substring,
// case-insensitively.
func (r *ProductRegistry) FindByName(ctx context.Context, name string) ([]Product, error) {
	return r.store.ProductsByName(ctx, name)
}

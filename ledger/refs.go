package ledger

import "context"

// Reference validators. Every mutating operation resolves its referenced
// records through these before any write happens. Pure reads, no side
// effects; absence becomes a NotFoundError carrying kind and identifier.

func RequireCustomer(ctx context.Context, store CustomerStore, id CustomerID) (*Customer, error) {
	c, err := store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &NotFoundError{Kind: "customer", ID: string(id)}
	}
	return c, nil
}

func RequireProduct(ctx context.Context, store ProductStore, id ProductID) (*Product, error) {
	p, err := store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Kind: "product", ID: string(id)}
	}
	return p, nil
}

func RequireSale(ctx context.Context, store SaleStore, id SaleID) (*Sale, error) {
	s, err := store.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &NotFoundError{Kind: "sale", ID: string(id)}
	}
	return s, nil
}

func RequireReceipt(ctx context.Context, store ReceiptStore, id ReceiptID) (*Receipt, error) {
	r, err := store.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &NotFoundError{Kind: "receipt", ID: string(id)}
	}
	return r, nil
}

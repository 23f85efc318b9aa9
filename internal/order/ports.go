package order

import (
	"context"

	"github.com/MikeMC777/ordenes-checkout/internal/customer"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

// CustomerStore returns nil, nil when no customer has the id.
type CustomerStore interface {
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
}

// ProductStore reads products in batch and overwrites their stock.
type ProductStore interface {
	// FindAllByID leaves unknown ids out of the result.
	FindAllByID(ctx context.Context, ids []string) ([]product.Product, error)
	// UpdateQuantity sets the absolute quantity of each listed product.
	UpdateQuantity(ctx context.Context, updates []product.QuantityUpdate) error
}

type Repository interface {
	// Create persists the order and its items as one unit and returns them with ids assigned.
	Create(ctx context.Context, n NewOrder) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error)
	GetItems(ctx context.Context, orderID string) ([]Item, error)
}

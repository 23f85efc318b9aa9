package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ordenes-checkout/internal/customer"
)

// Order is the aggregate root; Items are created with it and never changed afterwards.
type Order struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Total      decimal.Decimal `json:"total" swaggertype:"string" example:"20.00"`
	Items      []Item          `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Item is one line of an order. Price is the product price when the order was placed.
type Item struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price" swaggertype:"string" example:"10.00"`
}

// NewOrder is what the repository persists as one unit.
type NewOrder struct {
	Customer *customer.Customer
	Items    []NewItem
}

type NewItem struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Total sums price times quantity over every item.
func (n NewOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range n.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

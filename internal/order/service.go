package order

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

// Service creates orders: it checks the customer and the requested stock,
// persists the order and then writes the decremented stock back.
//
// The stock check and the stock write are not atomic. Two concurrent orders for
// the same product can both pass the check and oversell it.
type Service struct {
	orders    Repository
	products  ProductStore
	customers CustomerStore
	log       logrus.FieldLogger

	aggregateDuplicates bool
}

type Option func(*Service)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) { s.log = log }
}

// WithAggregateDuplicates sums the quantities of repeated product ids before the
// stock check, and writes one stock update per product. When off, each line is
// checked on its own against the stock read from the store.
func WithAggregateDuplicates(on bool) Option {
	return func(s *Service) { s.aggregateDuplicates = on }
}

func NewService(orders Repository, products ProductStore, customers CustomerStore, opts ...Option) *Service {
	s := &Service{
		orders:    orders,
		products:  products,
		customers: customers,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateOrder(ctx context.Context, customerID string, requested []RequestedProduct) (*Order, error) {
	log := s.log.WithField("customer_id", customerID)

	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	if cust == nil {
		return nil, customerNotFound()
	}

	ids := make([]string, len(requested))
	for i, rp := range requested {
		ids[i] = rp.ID
	}
	found, err := s.products.FindAllByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if len(found) == 0 {
		return nil, productsNotFound()
	}

	byID := make(map[string]product.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	for _, rp := range requested {
		if _, ok := byID[rp.ID]; !ok {
			return nil, productNotFound(rp.ID)
		}
	}

	if err := s.checkStock(requested, byID); err != nil {
		return nil, err
	}

	n := NewOrder{Customer: cust, Items: make([]NewItem, len(requested))}
	for i, rp := range requested {
		n.Items[i] = NewItem{
			ProductID: rp.ID,
			Quantity:  rp.Quantity,
			Price:     byID[rp.ID].Price,
		}
	}

	created, err := s.orders.Create(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	log = log.WithField("order_id", created.ID)

	updates := s.stockUpdates(created.Items, byID)
	if err := s.products.UpdateQuantity(ctx, updates); err != nil {
		// The order stays persisted; nothing compensates for the missing decrement.
		log.WithError(err).Error("order persisted but stock update failed")
		return nil, &StockUpdateError{OrderID: created.ID, Err: err}
	}

	log.WithFields(logrus.Fields{
		"items": len(created.Items),
		"total": created.Total.StringFixed(2),
	}).Info("order created")
	return created, nil
}

// checkStock reports the first line, in request order, asking for more than is available.
func (s *Service) checkStock(requested []RequestedProduct, byID map[string]product.Product) error {
	if !s.aggregateDuplicates {
		for _, rp := range requested {
			if byID[rp.ID].Quantity < rp.Quantity {
				return insufficientStock(rp.ID, rp.Quantity)
			}
		}
		return nil
	}

	totals := make(map[string]int, len(byID))
	for _, rp := range requested {
		totals[rp.ID] += rp.Quantity
	}
	for _, rp := range requested {
		if byID[rp.ID].Quantity < totals[rp.ID] {
			return insufficientStock(rp.ID, totals[rp.ID])
		}
	}
	return nil
}

// stockUpdates derives the new quantities from the persisted items and the
// quantities read before the order was written.
func (s *Service) stockUpdates(items []Item, byID map[string]product.Product) []product.QuantityUpdate {
	if !s.aggregateDuplicates {
		out := make([]product.QuantityUpdate, 0, len(items))
		for _, it := range items {
			out = append(out, product.QuantityUpdate{
				ID:       it.ProductID,
				Quantity: byID[it.ProductID].Quantity - it.Quantity,
			})
		}
		return out
	}

	ordered := make(map[string]int, len(byID))
	var seq []string
	for _, it := range items {
		if _, seen := ordered[it.ProductID]; !seen {
			seq = append(seq, it.ProductID)
		}
		ordered[it.ProductID] += it.Quantity
	}
	out := make([]product.QuantityUpdate, 0, len(seq))
	for _, id := range seq {
		out = append(out, product.QuantityUpdate{ID: id, Quantity: byID[id].Quantity - ordered[id]})
	}
	return out
}

func (s *Service) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *Service) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	return s.orders.GetItems(ctx, orderID)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error) {
	return s.orders.ListByCustomer(ctx, customerID, limit, offset)
}

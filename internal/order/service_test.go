package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/ordenes-checkout/internal/customer"
	"github.com/MikeMC777/ordenes-checkout/internal/logging"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

type fakeCustomers struct {
	known map[string]bool
	err   error
	calls int
}

func (f *fakeCustomers) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[id] {
		return nil, nil
	}
	return &customer.Customer{ID: id, Name: "Customer " + id}, nil
}

type fakeProducts struct {
	mu        sync.Mutex
	items     map[string]product.Product
	lookups   [][]string
	updates   [][]product.QuantityUpdate
	lookupErr error
	updateErr error
}

func newFakeProducts(ps ...product.Product) *fakeProducts {
	f := &fakeProducts{items: make(map[string]product.Product)}
	for _, p := range ps {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakeProducts) FindAllByID(ctx context.Context, ids []string) ([]product.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, append([]string(nil), ids...))
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	out := []product.Product{}
	seen := map[string]bool{}
	for _, id := range ids {
		if p, ok := f.items[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) UpdateQuantity(ctx context.Context, updates []product.QuantityUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, append([]product.QuantityUpdate(nil), updates...))
	if f.updateErr != nil {
		return f.updateErr
	}
	for _, u := range updates {
		p := f.items[u.ID]
		p.Quantity = u.Quantity
		f.items[u.ID] = p
	}
	return nil
}

type fakeRepo struct {
	created []Order
	err     error
	seq     int
}

func (r *fakeRepo) Create(ctx context.Context, n NewOrder) (*Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.seq++
	o := Order{
		ID:         fmt.Sprintf("O%d", r.seq),
		CustomerID: n.Customer.ID,
		Total:      n.Total(),
		CreatedAt:  time.Now().UTC(),
	}
	for i, in := range n.Items {
		o.Items = append(o.Items, Item{
			ID:        fmt.Sprintf("%s-%d", o.ID, i),
			OrderID:   o.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Price:     in.Price,
		})
	}
	r.created = append(r.created, o)
	return &o, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	for i := range r.created {
		if r.created[i].ID == id {
			return &r.created[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Order, error) {
	out := []Order{}
	for _, o := range r.created {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetItems(ctx context.Context, orderID string) ([]Item, error) {
	o, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return o.Items, nil
}

type fixture struct {
	customers *fakeCustomers
	products  *fakeProducts
	repo      *fakeRepo
	svc       *Service
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		customers: &fakeCustomers{known: map[string]bool{"C1": true}},
		products: newFakeProducts(
			product.Product{ID: "P1", Quantity: 10, Price: decimal.NewFromInt(5)},
			product.Product{ID: "P2", Quantity: 3, Price: decimal.NewFromInt(7)},
		),
		repo: &fakeRepo{},
	}
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	f.svc = NewService(f.repo, f.products, f.customers, opts...)
	return f
}

func requireValidation(t *testing.T, err error, reason Reason) *ValidationError {
	t.Helper()
	ve, ok := IsValidation(err)
	require.True(t, ok, "expected *ValidationError, got %v", err)
	require.Equal(t, reason, ve.Reason)
	return ve
}

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture()

	o, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P1", Quantity: 2},
		{ID: "P2", Quantity: 1},
	})
	require.NoError(t, err)
	require.Equal(t, "C1", o.CustomerID)
	require.Len(t, o.Items, 2)

	require.Equal(t, "P1", o.Items[0].ProductID)
	require.Equal(t, 2, o.Items[0].Quantity)
	require.True(t, o.Items[0].Price.Equal(decimal.NewFromInt(5)))
	require.Equal(t, "P2", o.Items[1].ProductID)
	require.Equal(t, 1, o.Items[1].Quantity)
	require.True(t, o.Items[1].Price.Equal(decimal.NewFromInt(7)))
	require.True(t, o.Total.Equal(decimal.NewFromInt(17)), "total=%s", o.Total)

	require.Len(t, f.products.lookups, 1)
	require.Equal(t, []string{"P1", "P2"}, f.products.lookups[0])
	require.Equal(t, [][]product.QuantityUpdate{{{ID: "P1", Quantity: 8}, {ID: "P2", Quantity: 2}}}, f.products.updates)
	require.Len(t, f.repo.created, 1)
}

func TestCreateOrder_CustomerNotFound_NoProductLookup(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), "C404", []RequestedProduct{{ID: "P1", Quantity: 1}})
	requireValidation(t, err, ReasonCustomerNotFound)
	require.Empty(t, f.products.lookups)
	require.Empty(t, f.repo.created)
}

func TestCreateOrder_ProductsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P8", Quantity: 1},
		{ID: "P9", Quantity: 1},
	})
	requireValidation(t, err, ReasonProductsNotFound)
	require.Empty(t, f.repo.created)
	require.Empty(t, f.products.updates)
}

func TestCreateOrder_ProductNotFound_FirstInInputOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P1", Quantity: 1},
		{ID: "P9", Quantity: 1},
		{ID: "P8", Quantity: 1},
	})
	ve := requireValidation(t, err, ReasonProductNotFound)
	require.Equal(t, "P9", ve.ProductID)
	require.Contains(t, ve.Error(), "P9")
	require.Empty(t, f.repo.created)
}

func TestCreateOrder_InsufficientStock_NoWrite(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P1", Quantity: 2},
		{ID: "P2", Quantity: 5},
	})
	ve := requireValidation(t, err, ReasonInsufficientStock)
	require.Equal(t, "P2", ve.ProductID)
	require.Equal(t, 5, ve.Quantity)
	require.Contains(t, ve.Error(), "P2")
	require.Contains(t, ve.Error(), "5")
	require.Empty(t, f.repo.created)
	require.Empty(t, f.products.updates)
}

func TestCreateOrder_InsufficientStock_FirstInInputOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P2", Quantity: 4},
		{ID: "P1", Quantity: 11},
	})
	ve := requireValidation(t, err, ReasonInsufficientStock)
	require.Equal(t, "P2", ve.ProductID)
	require.Equal(t, 4, ve.Quantity)
}

func TestCreateOrder_ExactStockIsEnough(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{{ID: "P2", Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, 0, f.products.items["P2"].Quantity)
}

func TestCreateOrder_DuplicateIDs_CheckedPerLine(t *testing.T) {
	f := newFixture()

	// 6 + 6 exceeds the stock of 10, but each line alone fits.
	o, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P1", Quantity: 6},
		{ID: "P1", Quantity: 6},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 2)
	require.Equal(t, [][]product.QuantityUpdate{{{ID: "P1", Quantity: 4}, {ID: "P1", Quantity: 4}}}, f.products.updates)
}

func TestCreateOrder_DuplicateIDs_Aggregated(t *testing.T) {
	f := newFixture(WithAggregateDuplicates(true))

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P1", Quantity: 6},
		{ID: "P2", Quantity: 1},
		{ID: "P1", Quantity: 6},
	})
	ve := requireValidation(t, err, ReasonInsufficientStock)
	require.Equal(t, "P1", ve.ProductID)
	require.Equal(t, 12, ve.Quantity)
	require.Empty(t, f.repo.created)

	o, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{
		{ID: "P1", Quantity: 3},
		{ID: "P2", Quantity: 1},
		{ID: "P1", Quantity: 4},
	})
	require.NoError(t, err)
	require.Len(t, o.Items, 3)
	require.Equal(t, []product.QuantityUpdate{{ID: "P1", Quantity: 3}, {ID: "P2", Quantity: 2}}, f.products.updates[0])
}

func TestCreateOrder_StockUpdateFails_OrderStaysPersisted(t *testing.T) {
	f := newFixture()
	f.products.updateErr = errors.New("product service down")

	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{{ID: "P1", Quantity: 1}})
	require.Error(t, err)
	_, isValidation := IsValidation(err)
	require.False(t, isValidation)
	require.ErrorIs(t, err, f.products.updateErr)
	require.Len(t, f.repo.created, 1)

	se, ok := IsStockUpdate(err)
	require.True(t, ok)
	require.Equal(t, f.repo.created[0].ID, se.OrderID)
}

func TestCreateOrder_CollaboratorErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")

	f := newFixture()
	f.customers.err = boom
	_, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{{ID: "P1", Quantity: 1}})
	require.ErrorIs(t, err, boom)

	f = newFixture()
	f.products.lookupErr = boom
	_, err = f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{{ID: "P1", Quantity: 1}})
	require.ErrorIs(t, err, boom)

	f = newFixture()
	f.repo.err = boom
	_, err = f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{{ID: "P1", Quantity: 1}})
	require.ErrorIs(t, err, boom)
	require.Empty(t, f.products.updates)
}

func TestCreateOrder_StockRoundTrip(t *testing.T) {
	cases := [][]RequestedProduct{
		{{ID: "P1", Quantity: 1}},
		{{ID: "P1", Quantity: 10}, {ID: "P2", Quantity: 3}},
		{{ID: "P2", Quantity: 2}, {ID: "P1", Quantity: 7}},
	}
	for i, req := range cases {
		t.Run(fmt.Sprintf("case%d", i), func(t *testing.T) {
			f := newFixture()
			before := map[string]int{}
			for id, p := range f.products.items {
				before[id] = p.Quantity
			}

			_, err := f.svc.CreateOrder(context.Background(), "C1", req)
			require.NoError(t, err)

			ordered := map[string]int{}
			for _, rp := range req {
				ordered[rp.ID] += rp.Quantity
			}
			for id, qty := range before {
				require.Equal(t, qty-ordered[id], f.products.items[id].Quantity, "product %s", id)
				require.GreaterOrEqual(t, f.products.items[id].Quantity, 0)
			}
		})
	}
}

func TestCreateOrder_PriceIsSnapshot(t *testing.T) {
	f := newFixture()

	o, err := f.svc.CreateOrder(context.Background(), "C1", []RequestedProduct{{ID: "P1", Quantity: 1}})
	require.NoError(t, err)

	p := f.products.items["P1"]
	p.Price = decimal.NewFromInt(99)
	f.products.items["P1"] = p

	got, err := f.svc.GetOrder(context.Background(), o.ID)
	require.NoError(t, err)
	require.True(t, got.Items[0].Price.Equal(decimal.NewFromInt(5)))
}

package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/MikeMC777/ordenes-checkout/internal/customer"
	"github.com/MikeMC777/ordenes-checkout/internal/product"
)

// ProductClient reaches the product service over HTTP.
type ProductClient struct {
	HTTP    *http.Client
	BaseURL string
}

func NewProductClient(baseURL string) *ProductClient {
	return &ProductClient{
		HTTP:    &http.Client{Timeout: 5 * time.Second},
		BaseURL: baseURL,
	}
}

// FindAllByID uses POST /products/lookup.
func (p *ProductClient) FindAllByID(ctx context.Context, ids []string) ([]product.Product, error) {
	var out product.ListResponse
	if err := p.do(ctx, http.MethodPost, "/products/lookup", product.LookupRequest{IDs: ids}, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	return out.Items, nil
}

// UpdateQuantity uses PUT /products/quantities.
func (p *ProductClient) UpdateQuantity(ctx context.Context, updates []product.QuantityUpdate) error {
	if err := p.do(ctx, http.MethodPut, "/products/quantities", product.QuantitiesRequest{Items: updates}, http.StatusNoContent, nil); err != nil {
		return fmt.Errorf("update quantities: %w", err)
	}
	return nil
}

func (p *ProductClient) do(ctx context.Context, method, path string, in interface{}, want int, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := p.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != want {
		var e product.HTTPError
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("product service: %s: %s", res.Status, e.Error)
		}
		return fmt.Errorf("product service: %s", res.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Ext groups the remote collaborators of the order service.
type Ext struct {
	Products  *ProductClient
	Customers *customer.Client
	conn      *grpc.ClientConn
}

func NewExt(customerAddr, productBaseURL string) (*Ext, error) {
	// Non-blocking gRPC connection (RPCs use WaitForReady)
	customers, conn, err := customer.Dial(customerAddr)
	if err != nil {
		return nil, err
	}
	return &Ext{
		Products:  NewProductClient(productBaseURL),
		Customers: customers,
		conn:      conn,
	}, nil
}

func (e *Ext) Close() error {
	if e.conn == nil {
		return nil
	}
	return e.conn.Close()
}

package customer

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client talks to customer.v1.CustomerService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client { return &Client{cc: cc} }

// Dial opens a lazy connection; the first RPC establishes it.
func Dial(addr string) (*Client, *grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	return NewClient(conn), conn, nil
}

// FindByID returns nil, nil when the service reports the customer as missing.
func (c *Client) FindByID(ctx context.Context, id string) (*Customer, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, getCustomerMethod, wrapperspb.String(id), out, grpc.WaitForReady(true))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer %s: %w", id, err)
	}
	return fromStruct(out)
}

func (c *Client) Create(ctx context.Context, name, email string) (*Customer, error) {
	in, err := structpb.NewStruct(map[string]interface{}{"name": name, "email": email})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, createCustomerMethod, in, out); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return fromStruct(out)
}

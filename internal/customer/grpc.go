package customer

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The customer service speaks protobuf well-known types only, so no generated
// stubs are needed on either side of the wire.
const (
	ServiceName          = "customer.v1.CustomerService"
	getCustomerMethod    = "/" + ServiceName + "/GetCustomer"
	createCustomerMethod = "/" + ServiceName + "/CreateCustomer"
)

// CustomerServiceServer is the server API for customer.v1.CustomerService.
type CustomerServiceServer interface {
	GetCustomer(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

func RegisterCustomerServiceServer(s grpc.ServiceRegistrar, srv CustomerServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CustomerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetCustomer", Handler: getCustomerHandler},
		{MethodName: "CreateCustomer", Handler: createCustomerHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "customer/v1/customer.proto",
}

func getCustomerHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustomerServiceServer).GetCustomer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getCustomerMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustomerServiceServer).GetCustomer(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func createCustomerHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CustomerServiceServer).CreateCustomer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: createCustomerMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CustomerServiceServer).CreateCustomer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func toStruct(c *Customer) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at": c.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func fromStruct(s *structpb.Struct) (*Customer, error) {
	f := s.GetFields()
	c := &Customer{
		ID:    f["id"].GetStringValue(),
		Name:  f["name"].GetStringValue(),
		Email: f["email"].GetStringValue(),
	}
	for key, dst := range map[string]*time.Time{"created_at": &c.CreatedAt, "updated_at": &c.UpdatedAt} {
		raw := f[key].GetStringValue()
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		*dst = t
	}
	return c, nil
}

package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Service exposes a customer Repository over gRPC.
type Service struct {
	repo Repository
	log  logrus.FieldLogger
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log}
}

// GetCustomer
func (s *Service) GetCustomer(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(in.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.NotFound, "customer not found")
		}
		s.log.WithError(err).WithField("customer_id", id).Error("get customer failed")
		return nil, status.Errorf(codes.Internal, "get error: %v", err)
	}
	out, err := toStruct(c)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode error: %v", err)
	}
	return out, nil
}

// CreateCustomer
func (s *Service) CreateCustomer(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	f := in.GetFields()
	name := strings.TrimSpace(f["name"].GetStringValue())
	email := strings.TrimSpace(f["email"].GetStringValue())
	if name == "" || email == "" {
		return nil, status.Error(codes.InvalidArgument, "name and email are required")
	}
	c := &Customer{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			return nil, status.Error(codes.AlreadyExists, "customer exists (email)")
		}
		s.log.WithError(err).Error("create customer failed")
		return nil, status.Errorf(codes.Internal, "create error: %v", err)
	}
	s.log.WithField("customer_id", c.ID).Info("customer created")
	out, err := toStruct(c)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode error: %v", err)
	}
	return out, nil
}

package grpcstream

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ValidatorServer is the server API for the Validator gRPC service.
//
// Requests and replies are encoded protocol.Message values carried in the
// well-known BytesValue wrapper, so no protoc/codegen toolchain is needed.
type ValidatorServer interface {
	Exchange(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
}

// UnimplementedValidatorServer can be embedded to have forward compatible implementations.
type UnimplementedValidatorServer struct{}

func (UnimplementedValidatorServer) Exchange(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Exchange not implemented")
}

// RegisterValidatorServer registers the Validator service on a gRPC server.
func RegisterValidatorServer(s grpc.ServiceRegistrar, srv ValidatorServer) {
	s.RegisterService(&Validator_ServiceDesc, srv)
}

// ValidatorClient is the client API for the Validator gRPC service.
type ValidatorClient interface {
	Exchange(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
}

type validatorClient struct{ cc grpc.ClientConnInterface }

func NewValidatorClient(cc grpc.ClientConnInterface) ValidatorClient {
	return &validatorClient{cc: cc}
}

const exchangeMethod = "/xdao.wfledger.validator.v1.Validator/Exchange"

func (c *validatorClient) Exchange(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, exchangeMethod, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Validator_Exchange_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidatorServer).Exchange(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: exchangeMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ValidatorServer).Exchange(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Validator_ServiceDesc is the grpc.ServiceDesc for Validator service.
var Validator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "xdao.wfledger.validator.v1.Validator",
	HandlerType: (*ValidatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Exchange", Handler: _Validator_Exchange_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "validator.proto",
}

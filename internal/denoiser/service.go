package denoiser

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Service wiring for satlink.denoiser.v1.DenoiserService. Messages travel as
// google.protobuf.Struct so no generated message package is needed.

const (
	ServiceName        = "satlink.denoiser.v1.DenoiserService"
	CorrectFullMethod  = "/" + ServiceName + "/Correct"
	correctMethodName  = "Correct"
	serviceDescProtoID = "satlink/denoiser/v1/denoiser.proto"
)

// #region client-interface

// DenoiserServiceClient is the client API for DenoiserService.
type DenoiserServiceClient interface {
	Correct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type denoiserServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDenoiserServiceClient binds the service to a connection.
func NewDenoiserServiceClient(cc grpc.ClientConnInterface) DenoiserServiceClient {
	return &denoiserServiceClient{cc: cc}
}

func (c *denoiserServiceClient) Correct(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, CorrectFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion client-interface

// #region server-interface

// DenoiserServiceServer is the server API for DenoiserService.
type DenoiserServiceServer interface {
	Correct(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDenoiserServiceServer attaches srv to a gRPC server.
func RegisterDenoiserServiceServer(s grpc.ServiceRegistrar, srv DenoiserServiceServer) {
	s.RegisterService(&DenoiserServiceDesc, srv)
}

func correctHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DenoiserServiceServer).Correct(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: CorrectFullMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DenoiserServiceServer).Correct(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// DenoiserServiceDesc describes the service for grpc.Server.RegisterService.
var DenoiserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DenoiserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: correctMethodName,
			Handler:    correctHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceDescProtoID,
}

// #endregion server-interface

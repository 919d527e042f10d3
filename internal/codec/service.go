package codec

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region names
// ServiceName is the fully qualified gRPC service the client talks to.
const ServiceName = "persona.v1.CreativeService"

const (
	generateImageMethod  = "/" + ServiceName + "/GenerateImage"
	classifyIntentMethod = "/" + ServiceName + "/ClassifyIntent"
)
// #endregion names

// #region server
// CreativeServer is the server side of the creative service. Messages are
// google.protobuf.Struct so no generated stubs are needed on either side.
type CreativeServer interface {
	GenerateImage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ClassifyIntent(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterCreativeServer registers srv on s.
func RegisterCreativeServer(s grpc.ServiceRegistrar, srv CreativeServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CreativeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenerateImage", Handler: unaryHandler(generateImageMethod, CreativeServer.GenerateImage)},
		{MethodName: "ClassifyIntent", Handler: unaryHandler(classifyIntentMethod, CreativeServer.ClassifyIntent)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "persona/v1/creative.proto",
}

type unaryMethod func(CreativeServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CreativeServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CreativeServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
// #endregion server

package streamapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name, mirroring the
// package-qualified name protoc would generate from a driftfilter.proto.
const ServiceName = "driftfilter.streamapi.v1.DriftFilter"

// serviceDesc is the hand-assembled stand-in for a protoc-generated
// _grpc.pb.go file's ServiceDesc. grpc.Server only ever needs this
// descriptor plus a handler per method; a generated file would produce
// the exact same shape, just with typed request/response structs instead
// of structpb.Struct.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*driftFilterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProcessFix",
			Handler:    processFixHandler,
		},
		{
			MethodName: "ProcessTrajectory",
			Handler:    processTrajectoryHandler,
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamMarkers",
			Handler:       streamMarkersHandler,
			ServerStreams: true,
		},
	},
	Metadata: "driftfilter/streamapi.proto",
}

// driftFilterServer is the interface grpc.Server dispatches onto — the
// handler functions below type-assert srv back to *Server. Declaring it
// keeps the ServiceDesc's HandlerType meaningful the way a generated
// XxxServer interface would, without generating one.
type driftFilterServer interface {
	ProcessFix(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ProcessTrajectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StreamMarkers(*structpb.Struct, markerStream) error
}

var _ driftFilterServer = (*Server)(nil)

// RegisterService registers the DriftFilter service with grpcServer,
// mirroring the teacher's RegisterService(grpcServer, server) in
// grpc_server.go.
func RegisterService(grpcServer *grpc.Server, server *Server) {
	grpcServer.RegisterService(&serviceDesc, server)
}

func processFixHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(driftFilterServer).ProcessFix(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ProcessFix"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(driftFilterServer).ProcessFix(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func processTrajectoryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(driftFilterServer).ProcessTrajectory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ProcessTrajectory"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(driftFilterServer).ProcessTrajectory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func streamMarkersHandler(srv interface{}, stream grpc.ServerStream) error {
	req := new(structpb.Struct)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(driftFilterServer).StreamMarkers(req, stream)
}

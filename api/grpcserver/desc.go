package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"matchd/wire"
)

// The service descriptor is written by hand against the wire package, so no
// generated bindings are checked in. Method names are part of the API
// contract.
const serviceName = "matchd.Engine"

// EngineServer is the handler set the descriptor dispatches to.
type EngineServer interface {
	RegisterClient(context.Context, *wire.RegisterRequest) (*wire.RegisterResponse, error)
	SubmitOrder(context.Context, *wire.SubmitRequest) (*wire.SubmitResponse, error)
	CancelOrder(context.Context, *wire.CancelRequest) (*wire.CancelResponse, error)
	GetDepth(context.Context, *wire.DepthRequest) (*wire.DepthResponse, error)
	Events(*wire.EventsRequest, grpc.ServerStreamingServer[wire.EventRecord]) error
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*EngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterClient", Handler: registerClientHandler},
		{MethodName: "SubmitOrder", Handler: submitOrderHandler},
		{MethodName: "CancelOrder", Handler: cancelOrderHandler},
		{MethodName: "GetDepth", Handler: getDepthHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "Events", Handler: eventsHandler, ServerStreams: true},
	},
	Metadata: "matchd/wire",
}

func registerClientHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.RegisterRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).RegisterClient(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/RegisterClient",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).RegisterClient(ctx, req.(*wire.RegisterRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func submitOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.SubmitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).SubmitOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/SubmitOrder",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).SubmitOrder(ctx, req.(*wire.SubmitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func cancelOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).CancelOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/CancelOrder",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).CancelOrder(ctx, req.(*wire.CancelRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getDepthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wire.DepthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServer).GetDepth(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + serviceName + "/GetDepth",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServer).GetDepth(ctx, req.(*wire.DepthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func eventsHandler(srv any, stream grpc.ServerStream) error {
	in := new(wire.EventsRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(EngineServer).Events(in, &grpc.GenericServerStream[wire.EventsRequest, wire.EventRecord]{ServerStream: stream})
}

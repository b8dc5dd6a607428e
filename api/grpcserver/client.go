package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"matchd/wire"
)

// EngineClient is the hand-written counterpart of the service descriptor.
// Dial with grpc.WithDefaultCallOptions(grpc.ForceCodecV2(wire.Codec{})) or
// pass the codec per call.
type EngineClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineClient(cc grpc.ClientConnInterface) *EngineClient {
	return &EngineClient{cc: cc}
}

func (c *EngineClient) RegisterClient(ctx context.Context, in *wire.RegisterRequest, opts ...grpc.CallOption) (*wire.RegisterResponse, error) {
	out := new(wire.RegisterResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/RegisterClient", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) SubmitOrder(ctx context.Context, in *wire.SubmitRequest, opts ...grpc.CallOption) (*wire.SubmitResponse, error) {
	out := new(wire.SubmitResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/SubmitOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) CancelOrder(ctx context.Context, in *wire.CancelRequest, opts ...grpc.CallOption) (*wire.CancelResponse, error) {
	out := new(wire.CancelResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/CancelOrder", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) GetDepth(ctx context.Context, in *wire.DepthRequest, opts ...grpc.CallOption) (*wire.DepthResponse, error) {
	out := new(wire.DepthResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/GetDepth", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *EngineClient) Events(ctx context.Context, in *wire.EventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[wire.EventRecord], error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], "/"+serviceName+"/Events", opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[wire.EventsRequest, wire.EventRecord]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

package grpcserver

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"matchd/domain/orderbook"
	"matchd/service"
	"matchd/wire"
)

func startServer(t *testing.T) (*EngineClient, *service.OrderService) {
	t.Helper()

	svc, err := service.NewOrderService(service.Config{})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ForceServerCodecV2(wire.Codec{}))
	NewServer(svc).Register(srv)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodecV2(wire.Codec{})),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return NewEngineClient(conn), svc
}

func TestRegisterSubmitDepth(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	reg, err := c.RegisterClient(ctx, &wire.RegisterRequest{Client: 1})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !reg.Accepted {
		t.Fatal("register not accepted")
	}
	if reg2, err := c.RegisterClient(ctx, &wire.RegisterRequest{Client: 1}); err != nil || reg2.Accepted {
		t.Fatalf("duplicate register: %v accepted=%v", err, reg2.Accepted)
	}

	sub, err := c.SubmitOrder(ctx, &wire.SubmitRequest{
		Client: 1, Side: uint32(orderbook.Buy), Price: 10050, Qty: 30,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.OrderID != 1 {
		t.Errorf("order id = %d, want 1", sub.OrderID)
	}

	d, err := c.GetDepth(ctx, &wire.DepthRequest{})
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if len(d.Bids) != 2 || d.Bids[1].Price != 10050 || d.Bids[1].Volume != 30 {
		t.Errorf("bid depth %+v", d.Bids)
	}

	if _, err := c.CancelOrder(ctx, &wire.CancelRequest{Client: 1, OrderID: sub.OrderID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
}

func TestErrorMapping(t *testing.T) {
	c, _ := startServer(t)
	ctx := context.Background()

	_, err := c.SubmitOrder(ctx, &wire.SubmitRequest{Client: 9, Side: uint32(orderbook.Buy), Price: 1, Qty: 1})
	if status.Code(err) != codes.NotFound {
		t.Errorf("unknown client: code %v, want NotFound", status.Code(err))
	}

	if _, err := c.RegisterClient(ctx, &wire.RegisterRequest{Client: 1}); err != nil {
		t.Fatal(err)
	}
	_, err = c.SubmitOrder(ctx, &wire.SubmitRequest{Client: 1, Side: 99, Price: 1, Qty: 1})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("bad side: code %v, want InvalidArgument", status.Code(err))
	}
	_, err = c.CancelOrder(ctx, &wire.CancelRequest{Client: 1, OrderID: 42})
	if status.Code(err) != codes.NotFound {
		t.Errorf("unknown order: code %v, want NotFound", status.Code(err))
	}
	_, err = c.RegisterClient(ctx, &wire.RegisterRequest{Client: 0})
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("zero client id: code %v, want InvalidArgument", status.Code(err))
	}
}

func TestEventsStream(t *testing.T) {
	c, svc := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := c.RegisterClient(ctx, &wire.RegisterRequest{Client: 1}); err != nil {
		t.Fatal(err)
	}

	stream, err := c.Events(ctx, &wire.EventsRequest{Client: 1})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	// The server installs the tap asynchronously once the stream opens;
	// submitting before that would race past the subscriber.
	for svc.Subscribers() == 0 {
		if ctx.Err() != nil {
			t.Fatal("subscription never installed")
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.SubmitOrder(ctx, &wire.SubmitRequest{
		Client: 1, Side: uint32(orderbook.Sell), Price: 10000, Qty: 5,
	}); err != nil {
		t.Fatal(err)
	}

	var kinds []orderbook.EventKind
	for len(kinds) < 2 {
		rec, err := stream.Recv()
		if err != nil {
			t.Fatalf("recv: %v", err)
		}
		kinds = append(kinds, orderbook.EventKind(rec.Kind))
	}
	if kinds[0] != orderbook.KindNew || kinds[1] != orderbook.KindNewAck {
		t.Errorf("streamed kinds %v, want [NEW NEW_ACK]", kinds)
	}
}

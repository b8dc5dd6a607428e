// Package grpcserver adapts OrderService to gRPC.
package grpcserver

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"matchd/domain/orderbook"
	"matchd/engine"
	"matchd/service"
	"matchd/wire"
)

// eventBuffer is the per-subscriber queue depth. The tap runs under the
// engine lock, so it never blocks; a subscriber that falls this far behind
// loses events and must resync from the journal topic.
const eventBuffer = 256

type Server struct {
	svc *service.OrderService
}

func NewServer(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

// Register attaches the engine service to g.
func (s *Server) Register(g *grpc.Server) {
	g.RegisterService(&serviceDesc, s)
}

// -------------------- Commands --------------------

func (s *Server) RegisterClient(ctx context.Context, req *wire.RegisterRequest) (*wire.RegisterResponse, error) {
	if req.Client == 0 {
		return nil, status.Error(codes.InvalidArgument, "client id must be nonzero")
	}
	// Remote clients receive their events over the Events stream, not a
	// callback.
	accepted := s.svc.RegisterClient(orderbook.ClientID(req.Client), nil)
	log.Printf("[gRPC] RegisterClient client=%d accepted=%v", req.Client, accepted)
	return &wire.RegisterResponse{Accepted: accepted}, nil
}

func (s *Server) SubmitOrder(ctx context.Context, req *wire.SubmitRequest) (*wire.SubmitResponse, error) {
	id, err := s.svc.SubmitOrder(
		orderbook.ClientID(req.Client),
		orderbook.Side(req.Side),
		orderbook.Price(req.Price),
		req.Qty,
	)
	if err != nil {
		return nil, toStatus(err)
	}
	log.Printf("[gRPC] SubmitOrder client=%d side=%v price=%v qty=%d order=%d",
		req.Client, orderbook.Side(req.Side), orderbook.Price(req.Price), req.Qty, id)
	return &wire.SubmitResponse{OrderID: uint64(id)}, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *wire.CancelRequest) (*wire.CancelResponse, error) {
	err := s.svc.CancelOrder(orderbook.ClientID(req.Client), orderbook.OrderID(req.OrderID))
	if err != nil {
		return nil, toStatus(err)
	}
	log.Printf("[gRPC] CancelOrder client=%d order=%d", req.Client, req.OrderID)
	return &wire.CancelResponse{}, nil
}

// -------------------- Queries --------------------

func (s *Server) GetDepth(ctx context.Context, req *wire.DepthRequest) (*wire.DepthResponse, error) {
	d := s.svc.Depth()
	return &wire.DepthResponse{
		Bids: toLevels(d.Bids),
		Asks: toLevels(d.Asks),
	}, nil
}

// Events streams event records as they are emitted. Client zero receives
// all clients' events.
func (s *Server) Events(req *wire.EventsRequest, stream grpc.ServerStreamingServer[wire.EventRecord]) error {
	ch := make(chan *wire.EventRecord, eventBuffer)
	cancel := s.svc.Subscribe(func(rec *wire.EventRecord) {
		if req.Client != 0 && rec.Client != req.Client {
			return
		}
		select {
		case ch <- rec:
		default:
			log.Printf("[gRPC] events subscriber client=%d lagging, dropped seq=%d", req.Client, rec.Seq)
		}
	})
	defer cancel()

	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec := <-ch:
			if err := stream.Send(rec); err != nil {
				return err
			}
		}
	}
}

// -------------------- Converters --------------------

func toLevels(levels []orderbook.LevelDepth) []wire.LevelEntry {
	out := make([]wire.LevelEntry, 0, len(levels))
	for _, lvl := range levels {
		entry := wire.LevelEntry{
			Price:  int64(lvl.Price),
			Market: lvl.Market,
			Volume: lvl.Volume,
		}
		for _, o := range lvl.Orders {
			entry.Orders = append(entry.Orders, wire.OrderEntry{
				Client:      uint64(o.Client),
				Order:       uint64(o.Order),
				Outstanding: o.Outstanding,
			})
		}
		out = append(out, entry)
	}
	return out
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, engine.ErrUnknownClient), errors.Is(err, engine.ErrUnknownOrder):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, engine.ErrInvalidSide),
		errors.Is(err, engine.ErrInvalidPrice),
		errors.Is(err, engine.ErrInvalidQuantity):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, engine.ErrAlreadyTerminal):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, engine.ErrBookInconsistency):
		return status.Error(codes.Internal, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

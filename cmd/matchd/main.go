package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"google.golang.org/grpc"

	"matchd/api/grpcserver"
	"matchd/infra/audit"
	"matchd/infra/journal"
	"matchd/infra/kafka"
	"matchd/jobs/broadcaster"
	"matchd/service"
	"matchd/wire"
)

func main() {
	var (
		listen     = flag.String("listen", ":50051", "gRPC listen address")
		dataDir    = flag.String("data", "./data", "directory for journal and audit segments")
		brokers    = flag.String("brokers", "", "comma-separated Kafka brokers (empty disables publishing)")
		eventTopic = flag.String("event-topic", "matchd.events", "topic for the journaled event stream")
		tickTopic  = flag.String("tick-topic", "matchd.ticks", "topic for the execution tick feed")
	)
	flag.Parse()

	// ---------------- Journal ----------------

	jnl, err := journal.Open(filepath.Join(*dataDir, "journal"))
	if err != nil {
		log.Fatalf("journal init failed: %v", err)
	}
	defer jnl.Close()

	// ---------------- Audit trail ----------------

	trail, err := audit.Open(audit.Config{
		Dir:         filepath.Join(*dataDir, "audit"),
		SegmentSize: 64 * 1024 * 1024,
	})
	if err != nil {
		log.Fatalf("audit init failed: %v", err)
	}
	defer trail.Close()

	// ---------------- Kafka ----------------

	var brokerList []string
	if *brokers != "" {
		brokerList = strings.Split(*brokers, ",")
	}

	var ticks *kafka.Producer
	if len(brokerList) > 0 {
		ticks = kafka.NewProducer(brokerList, *tickTopic)
		defer ticks.Close()
	}

	// ---------------- Service ----------------

	svc, err := service.NewOrderService(service.Config{
		Journal: jnl,
		Audit:   trail,
		Ticks:   ticks,
	})
	if err != nil {
		log.Fatalf("service init failed: %v", err)
	}

	// ---------------- Background jobs ----------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(brokerList) > 0 {
		bc, err := broadcaster.New(jnl, brokerList, *eventTopic)
		if err != nil {
			log.Fatalf("broadcaster init failed: %v", err)
		}
		defer bc.Close()
		bc.Start(ctx)
	} else {
		log.Println("[matchd] no brokers configured, event publishing disabled")
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodecV2(wire.Codec{}))
	grpcserver.NewServer(svc).Register(grpcSrv)

	go func() {
		<-ctx.Done()
		grpcSrv.GracefulStop()
	}()

	fmt.Printf("matchd engine running on %s\n", *listen)

	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}

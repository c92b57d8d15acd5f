package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"

	"google.golang.org/grpc"

	"github.com/danielpatrickdp/satlink/go-controller/internal/denoiser"
)

// Reference denoiser that reads the payload off the systematic prefix. Useful
// for exercising the AI path without a trained model.
func main() {
	addr := flag.String("addr", envOr("DENOISER_ADDR", "localhost:50071"), "listen address")
	flag.Parse()

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("listen %s: %v", *addr, err)
	}

	srv := grpc.NewServer()
	denoiser.RegisterDenoiserServiceServer(srv, denoiser.NewServer(nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Printf("[AI] shutting down")
		srv.GracefulStop()
	}()

	log.Printf("[AI] denoiser stub listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

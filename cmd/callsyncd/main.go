package main

import (
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

	"github.com/sebas/callkeeper/internal/logger"
	"github.com/sebas/callkeeper/internal/syncserver"
	callsyncv1 "github.com/sebas/callkeeper/pkg/callsync/v1"
)

func main() {
	listenAddr := flag.String("listen", ":9815", "gRPC listen address")
	logLevel := flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	logger.InitLogger(os.Stdout)
	logger.SetLevel(*logLevel)

	listener, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		slog.Error("Failed to listen", "addr", *listenAddr, "error", err)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	srv := syncserver.New()
	callsyncv1.RegisterCallSyncServer(grpcServer, srv)

	go func() {
		slog.Info("Starting call sync server", "addr", *listenAddr)
		if err := grpcServer.Serve(listener); err != nil {
			slog.Error("Server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Received signal, shutting down",
		"signal", sig,
		"records", srv.RecordCount(),
		"anonymized", srv.AnonymizedCount(),
	)

	grpcServer.GracefulStop()
}

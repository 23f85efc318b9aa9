package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/MikeMC777/ordenes-checkout/internal/config"
	"github.com/MikeMC777/ordenes-checkout/internal/customer"
	"github.com/MikeMC777/ordenes-checkout/internal/logging"
	"github.com/MikeMC777/ordenes-checkout/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logging.New("customer-service", cfg.LogLevel)
	cfg.Log(log)

	pool, err := storage.OpenPostgres(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres")
	}
	defer pool.Close()

	l, err := net.Listen("tcp", listenAddr(cfg.CustomerSvcAddr))
	if err != nil {
		log.WithError(err).Fatal("listen")
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(logUnary(log)))
	customer.RegisterCustomerServiceServer(srv, customer.NewService(customer.NewPGRepo(pool), log))

	go func() {
		log.WithField("addr", l.Addr().String()).Info("customer-service listening")
		if err := srv.Serve(l); err != nil {
			log.WithError(err).Fatal("grpc server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		srv.Stop()
	}
	log.Info("customer-service stopped")
}

// listenAddr turns the dial address (host:port) into something we can bind on.
func listenAddr(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return ":" + port
}

func logUnary(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := log.WithFields(logrus.Fields{
			"method":  info.FullMethod,
			"code":    status.Code(err).String(),
			"latency": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("rpc failed")
		} else {
			entry.Debug("rpc")
		}
		return resp, err
	}
}

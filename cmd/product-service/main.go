package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ordenes-checkout/internal/config"
	"github.com/MikeMC777/ordenes-checkout/internal/logging"
	prod "github.com/MikeMC777/ordenes-checkout/internal/product"
	"github.com/MikeMC777/ordenes-checkout/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logging.New("product-service", cfg.LogLevel)
	cfg.Log(log)

	ctx := context.Background()

	var repo prod.Repository
	switch cfg.ProductStoreDriver {
	case "mysql":
		db, err := storage.OpenMySQL(ctx, cfg.MySQLDSN)
		if err != nil {
			log.WithError(err).Fatal("mysql")
		}
		defer db.Close()
		repo = prod.NewMySQLRepo(db)
	case "postgres":
		pool, err := storage.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("postgres")
		}
		defer pool.Close()
		repo = prod.NewPGRepo(pool)
	default:
		log.WithField("driver", cfg.ProductStoreDriver).Fatal("unknown PRODUCT_STORE_DRIVER")
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{Addr: cfg.ProductSvcAddr, Handler: newRouter(repo, log)}
	go func() {
		log.WithField("addr", cfg.ProductSvcAddr).Info("product-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("product-service stopped")
}

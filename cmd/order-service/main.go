package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/ordenes-checkout/docs"
	"github.com/MikeMC777/ordenes-checkout/internal/config"
	"github.com/MikeMC777/ordenes-checkout/internal/idempotency"
	"github.com/MikeMC777/ordenes-checkout/internal/logging"
	ord "github.com/MikeMC777/ordenes-checkout/internal/order"
	"github.com/MikeMC777/ordenes-checkout/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logging.New("order-service", cfg.LogLevel)
	cfg.Log(log)

	ctx := context.Background()

	pool, err := storage.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres")
	}
	defer pool.Close()

	ext, err := ord.NewExt(cfg.CustomerSvcAddr, cfg.ProductSvcBaseURL)
	if err != nil {
		log.WithError(err).Fatal("customer service client")
	}
	defer ext.Close()

	svc := ord.NewService(ord.NewPGRepo(pool), ext.Products, ext.Customers,
		ord.WithLogger(log),
		ord.WithAggregateDuplicates(cfg.AggregateDuplicates),
	)

	var idem idempotency.Store
	if cfg.RedisAddr != "" {
		rdb, err := storage.OpenRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.WithError(err).Fatal("redis")
		}
		defer rdb.Close()
		idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL)
	}

	gin.SetMode(gin.ReleaseMode)
	r := newRouter(svc, idem, log)
	docs.SwaggerInfo.BasePath = "/"
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.RunLambda {
		adapter := ginadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return
	}

	srv := &http.Server{Addr: cfg.OrderSvcAddr, Handler: r}
	go func() {
		log.WithField("addr", cfg.OrderSvcAddr).Info("order-service listening")
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
	log.Info("order-service stopped")
}

// cmd/order-service/main.go
package main

import (
	"context"

	"meridian/internal/pkg/bootstrap"
	"meridian/internal/pkg/httpclient"
	"meridian/internal/pkg/idempotency"
	"meridian/internal/pkg/logger"
	"meridian/internal/pkg/mq"
	"meridian/internal/service/order/application"
	"meridian/internal/service/order/infrastructure"
	"meridian/internal/service/order/infrastructure/adapter"
	"meridian/internal/service/order/interfaces"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
)

const (
	serviceName = "order-service"
	servicePort = 8084
)

// main 函数是应用的"组装根" (Composition Root)：
// 创建并组装所有依赖项，然后交给 bootstrap 启动。
func main() {
	var (
		kafkaWriter *kafka.Writer
		redisClient *redis.Client
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) error {
			cfg := appCtx.Config
			tracer := otel.Tracer(serviceName)

			// 1. 持久化：MySQL 订单仓储
			db, err := infrastructure.NewMysqlDB(cfg.Infra.Mysql.DSN)
			if err != nil {
				return err
			}
			orderRepo := infrastructure.NewGormOrderRepository(db)

			// 2. 商品服务出站适配器：Nacos 发现 + 可追踪 HTTP 客户端
			httpClient := httpclient.NewClient(tracer, appCtx.Nacos)
			inventoryClient := adapter.NewProductHTTPAdapter(httpClient)

			// 3. 订单事件旁路：Kafka
			kafkaWriter = mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, cfg.App.OrderEventsTopic)
			eventProducer := infrastructure.NewOrderEventProducerAdapter(kafkaWriter)

			// 4. 下单幂等回放缓存：Redis
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Infra.Redis.Addr})
			idemStore := idempotency.NewRedisStore(redisClient, cfg.App.IdempotencyTTL)

			// 5. 应用服务 + HTTP 接口
			orderService := application.NewOrderApplicationService(orderRepo, inventoryClient, eventProducer, tracer)
			handler := interfaces.NewOrderHandler(orderService)
			handler.RegisterRoutes(appCtx.Mux, idempotency.Middleware(idemStore))
			return nil
		},
		OnShutdown: func(ctx context.Context) {
			if kafkaWriter != nil {
				if err := kafkaWriter.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("Error closing kafka writer")
				}
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					logger.Logger().Error().Err(err).Msg("Error closing redis client")
				}
			}
		},
	})
}

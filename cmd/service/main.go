package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pushkindt/pushkind-orders/config"
	"github.com/pushkindt/pushkind-orders/internal/producer"
	"github.com/pushkindt/pushkind-orders/internal/repository"
	"github.com/pushkindt/pushkind-orders/internal/service"
	transport "github.com/pushkindt/pushkind-orders/internal/transport/http"
	"github.com/pushkindt/pushkind-orders/pkg/database"
	"github.com/pushkindt/pushkind-orders/pkg/jwtutil"
	"github.com/pushkindt/pushkind-orders/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	cfg := config.Load(log)
	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repos := repository.New(db)

	var bus service.EventBus
	if cfg.Kafka.Enabled {
		kafkaProducer := producer.NewOrderProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		bus = kafkaProducer
		log.Info("Kafka producer включён", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	pricing := service.NewPricingService(repos, cfg.Pricing)

	svc := transport.Services{
		Orders:      service.NewOrderService(repos, pricing, bus, log),
		Products:    service.NewProductService(repos, log),
		Categories:  service.NewCategoryService(repos),
		Tags:        service.NewTagService(repos),
		PriceLevels: service.NewPriceLevelService(repos),
		Customers:   service.NewCustomerService(repos),
		Discounts:   service.NewDiscountService(repos, log),
		Pricing:     pricing,
	}

	jwtProvider := jwtutil.NewProvider(cfg.JWT.SigningKey)
	e := transport.NewRouter(svc, jwtProvider, log)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Запуск HTTP сервера", zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil {
			log.Info("HTTP сервер остановлен", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Остановка HTTP сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	log.Info("HTTP сервер остановлен корректно")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelichko/ridepool/config"
	"github.com/avelichko/ridepool/internal/cache"
	"github.com/avelichko/ridepool/internal/email"
	"github.com/avelichko/ridepool/internal/kafka"
	"github.com/avelichko/ridepool/internal/lock"
	"github.com/avelichko/ridepool/internal/repository"
	"github.com/avelichko/ridepool/internal/service/booking"
	"github.com/avelichko/ridepool/internal/service/rides"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTL)*time.Second)

	vehicleRepo := repository.NewVehicleRepository(pool)
	rideRepo := repository.NewRideRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	bookingService := booking.NewBookingService(
		bookingRepo,
		rideRepo,
		lock.New(cfg.Booking.LockWait()),
		producer,
		cfg.Kafka.RideEventsTopic,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	rideService := rides.NewRideService(
		rideRepo,
		vehicleRepo,
		bookingService,
		redisCache,
		producer,
		cfg.Kafka.RideEventsTopic,
		logger,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(logger)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.RideEvent) error {
			return emailSender.Send(ctx, event)
		}); err != nil {
			logger.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepMinutes := cfg.Worker.CompletionSweepMinutes
	if sweepMinutes <= 0 {
		sweepMinutes = 5
	}
	sweepTicker := time.NewTicker(time.Duration(sweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			completed, err := rideService.CompleteDeparted(ctx)
			if err != nil {
				logger.Error("complete departed rides", zap.Error(err))
				continue
			}
			if len(completed) > 0 {
				logger.Info("completed departed rides", zap.Int("count", len(completed)))
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

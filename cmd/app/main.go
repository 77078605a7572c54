package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelichko/ridepool/api"
	"github.com/avelichko/ridepool/config"
	"github.com/avelichko/ridepool/internal/auth"
	"github.com/avelichko/ridepool/internal/bootstrap"
	"github.com/avelichko/ridepool/internal/cache"
	"github.com/avelichko/ridepool/internal/kafka"
	"github.com/avelichko/ridepool/internal/lock"
	"github.com/avelichko/ridepool/internal/repository"
	"github.com/avelichko/ridepool/internal/service/booking"
	"github.com/avelichko/ridepool/internal/service/rides"
	"github.com/avelichko/ridepool/internal/service/users"
	"github.com/avelichko/ridepool/internal/service/vehicles"
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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	tokens := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTL)*time.Hour)

	userRepo := repository.NewUserRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	rideRepo := repository.NewRideRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	rideLocks := lock.New(cfg.Booking.LockWait())

	userService := users.NewUserService(userRepo, tokens)
	vehicleService := vehicles.NewVehicleService(vehicleRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		rideRepo,
		rideLocks,
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

	router := api.NewRouter(api.Services{
		Users:    userService,
		Vehicles: vehicleService,
		Rides:    rideService,
		Bookings: bookingService,
	}, tokens, cfg.HTTP.AllowedOrigins)

	logger.Info("starting http server", zap.String("address", cfg.HTTP.Address))
	if err := bootstrap.Run(ctx, cfg.HTTP.Address, router); err != nil {
		logger.Fatal("server error", zap.Error(err))
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

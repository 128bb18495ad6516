package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/food-inventory/internal/adapter/handler"
	"github.com/rl1809/food-inventory/internal/adapter/handler/pb"
	"github.com/rl1809/food-inventory/internal/adapter/storage"
	"github.com/rl1809/food-inventory/internal/config"
	"github.com/rl1809/food-inventory/internal/core/service"
	"github.com/rl1809/food-inventory/internal/logging"
	"github.com/rl1809/food-inventory/internal/port"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	store, err := storage.Open(ctx, storage.Options{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("connected to database", slog.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("schema migrated")
	}

	// Initialize Redis list cache, if configured
	var cache port.ListCache
	if cfg.Cache.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, list cache disabled", slog.Any("error", err))
		} else {
			cache = storage.NewRedisAdapter(rdb, cfg.Cache.TTL)
			logger.Info("connected to redis", slog.String("addr", cfg.Cache.Addr))
		}
	}

	foodService := service.NewFoodService(store, cache, logger)

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryRequestID(logger)))
	pb.RegisterFoodServiceServer(grpcServer, handler.NewGRPCHandler(foodService))
	healthServer := health.NewServer()
	healthServer.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	go func() {
		logger.Info("gRPC server listening", slog.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", slog.Any("error", err))
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(foodService, logger).Routes(),
	}

	go func() {
		logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", slog.Any("error", err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")

	return nil
}

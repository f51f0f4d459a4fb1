package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/retailermedia/internal/config"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"github.com/mansoorceksport/retailermedia/internal/repository"
	"github.com/mansoorceksport/retailermedia/internal/server"
	"github.com/mansoorceksport/retailermedia/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.JSON)

	logger.Infof("Starting Retailer Media Service...")

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, cfg.OTEL)
	if err != nil {
		logger.Warnf("Failed to initialize OpenTelemetry: %v", err)
	}
	if otelProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelProvider.Shutdown(shutdownCtx); err != nil {
				logger.Warnf("Error shutting down OpenTelemetry: %v", err)
			}
		}()
	}

	mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
	if cfg.OTEL.Enabled {
		mongoOpts.SetMonitor(otelmongo.NewMonitor())
	}
	mongoClient, err := mongo.Connect(ctx, mongoOpts)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	defer redisClient.Close()

	if err := ping(ctx, mongoClient, redisClient); err != nil {
		logger.Fatalf("%v", err)
	}
	logger.Infof("MongoDB and Redis connected")

	mongoDB := mongoClient.Database(cfg.MongoDB.Database)

	indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := repository.NewMongoFieldMetadataRepository(mongoDB).EnsureIndexes(indexCtx); err != nil {
		logger.Warnf("Failed to ensure metadata indexes: %v", err)
	}
	cancel()

	app, err := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     mongoDB,
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatalf("Failed to build app: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Infof("Shutting down gracefully...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Errorf("Error during shutdown: %v", err)
		}
	}()

	logger.Infof("Server starting on port %s (media backend: %s)", cfg.Server.Port, cfg.Media.Backend)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// ping checks MongoDB and Redis concurrently
func ping(ctx context.Context, mongoClient *mongo.Client, redisClient *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := mongoClient.Ping(gctx, nil); err != nil {
			return fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := redisClient.Ping(gctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return nil
	})
	return g.Wait()
}

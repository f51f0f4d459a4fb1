package main

import (
	"context"
	"time"

	"github.com/mansoorceksport/retailermedia/internal/config"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"github.com/mansoorceksport/retailermedia/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// defaultFields are the upload fields of the stock design configuration form
var defaultFields = []domain.FieldMetadata{
	{Code: "head_shortcut_icon", Path: "design/head/shortcut_icon", BackendModel: domain.BackendModelFavicon},
	{Code: "header_logo_src", Path: "design/header/logo_src", BackendModel: domain.BackendModelImage},
	{Code: "email_logo", Path: "design/email/logo", BackendModel: domain.BackendModelImage},
	{Code: "watermark_image_image", Path: "design/watermark/image_image", BackendModel: domain.BackendModelImage},
	{Code: "watermark_small_image_image", Path: "design/watermark/small_image_image", BackendModel: domain.BackendModelImage},
	{Code: "watermark_thumbnail_image", Path: "design/watermark/thumbnail_image", BackendModel: domain.BackendModelImage},
	{Code: "watermark_swatch_image_image", Path: "design/watermark/swatch_image_image", BackendModel: domain.BackendModelImage},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.JSON)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		logger.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	defer redisClient.Close()

	mongoRepo := repository.NewMongoFieldMetadataRepository(client.Database(cfg.MongoDB.Database))
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("Failed to create indexes: %v", err)
	}
	// writes go through the cache so a running API sees the new rules
	repo := repository.NewCachedFieldMetadataRepository(mongoRepo, repository.NewRedisCacheRepository(redisClient))

	for i := range defaultFields {
		field := defaultFields[i]
		if err := repo.Upsert(ctx, &field); err != nil {
			logger.Errorf("Failed to seed %s: %v", field.Code, err)
			continue
		}
		logger.Infof("Seeded %s (%s)", field.Code, field.BackendModel)
	}
}

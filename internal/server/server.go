package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/retailermedia/internal/config"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/handler"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"github.com/mansoorceksport/retailermedia/internal/middleware"
	"github.com/mansoorceksport/retailermedia/internal/repository"
	"github.com/mansoorceksport/retailermedia/internal/service"
	"github.com/mansoorceksport/retailermedia/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
)

const idempotencyTTL = 24 * time.Hour

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client

	// Optional overrides, built from Config when nil
	Metadata domain.FieldMetadataRepository
	Uploader domain.Uploader
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) (*fiber.App, error) {
	cfg := deps.Config

	metadataRepo := deps.Metadata
	if metadataRepo == nil {
		metadataRepo = repository.NewCachedFieldMetadataRepository(
			repository.NewMongoFieldMetadataRepository(deps.MongoDB),
			repository.NewRedisCacheRepository(deps.RedisClient),
		)
	}

	uploader := deps.Uploader
	if uploader == nil {
		var err error
		uploader, err = newUploader(cfg)
		if err != nil {
			return nil, err
		}
	}

	// Initialize services
	factory := service.NewBackendModelFactory(metadataRepo, cfg.Server.MaxUploadSizeMB)
	processor := service.NewFileProcessor(uploader, factory, metadataRepo)
	stores := service.NewStoreResolver(cfg.Media.Stores, cfg.Media.DefaultStore)

	// Initialize handlers
	uploadHandler := handler.NewUploadHandler(processor, stores)
	metadataHandler := handler.NewMetadataHandler(metadataRepo)

	app := fiber.New(fiber.Config{
		AppName: "Retailer Media API",
		// per-field limits are enforced by the backend model, the body limit only caps the transport
		BodyLimit:    int(bodyLimitMB(cfg.Server.MaxUploadSizeMB) * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(telemetry.FiberMiddleware())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestID} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID, X-Store-Code, X-Request-ID",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "retailer-media",
		})
	})

	if cfg.Media.Backend == config.MediaBackendLocal {
		app.Static("/media", cfg.Media.Root)
	}

	v1 := app.Group("/v1")

	admin := v1.Group("/admin",
		middleware.VerifyAdminToken(cfg.JWT.Secret),
		middleware.AuthorizeRole(domain.RoleAdmin, domain.RoleDesigner),
	)
	if deps.RedisClient != nil {
		admin.Use(middleware.IdempotencyMiddleware(deps.RedisClient, idempotencyTTL))
	}

	design := admin.Group("/design")
	design.Post("/files/:fieldId", uploadHandler.SaveTemporary)
	design.Get("/metadata", metadataHandler.List)
	design.Put("/metadata/:code", middleware.AuthorizeRole(domain.RoleAdmin), metadataHandler.Upsert)
	design.Delete("/metadata/:code", middleware.AuthorizeRole(domain.RoleAdmin), metadataHandler.Delete)

	return app, nil
}

// newUploader builds the media uploader selected by MEDIA_BACKEND
func newUploader(cfg *config.Config) (domain.Uploader, error) {
	switch cfg.Media.Backend {
	case config.MediaBackendS3:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		uploader, err := repository.NewSeaweedS3Uploader(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 uploader: %w", err)
		}
		return uploader, nil
	default:
		return repository.NewLocalMediaUploader(afero.NewOsFs(), cfg.Media.Root), nil
	}
}

func bodyLimitMB(maxUploadMB int64) int64 {
	if maxUploadMB < 16 {
		return 16
	}
	return maxUploadMB + 1
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	logger.Errorf("request %v failed: %v", c.Locals(middleware.RequestIDKey), err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

package repository

import (
	"context"
	"testing"

	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupTestDB spins up a fresh MongoDB container for the test
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MongoDB container test in short mode")
	}
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("failed to disconnect mongo: %v", err)
		}
	})

	return client.Database("test_db")
}

func TestMongoFieldMetadataRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMongoFieldMetadataRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.EnsureIndexes(ctx))

	logo := &domain.FieldMetadata{
		Code:              "header_logo_src",
		Path:              "design/header/logo_src",
		BackendModel:      domain.BackendModelImage,
		AllowedExtensions: []string{"png", "svg"},
		MaxFileSizeKB:     512,
	}
	require.NoError(t, repo.Upsert(ctx, logo))
	assert.False(t, logo.UpdatedAt.IsZero())

	// Replace keeps a single document per code
	logo.MaxFileSizeKB = 1024
	require.NoError(t, repo.Upsert(ctx, logo))

	metadata, err := repo.Get(ctx)
	require.NoError(t, err)
	require.Len(t, metadata, 1)
	assert.Equal(t, int64(1024), metadata["header_logo_src"].MaxFileSizeKB)
	assert.Equal(t, []string{"png", "svg"}, metadata["header_logo_src"].AllowedExtensions)

	// a second code on the same path would make path lookups ambiguous
	duplicate := &domain.FieldMetadata{
		Code:         "header_logo_alt",
		Path:         "design/header/logo_src",
		BackendModel: domain.BackendModelImage,
	}
	assert.ErrorIs(t, repo.Upsert(ctx, duplicate), domain.ErrInvalidInput)

	invalid := &domain.FieldMetadata{Code: "broken"}
	assert.ErrorIs(t, repo.Upsert(ctx, invalid), domain.ErrInvalidInput)

	require.NoError(t, repo.Delete(ctx, "header_logo_src"))
	assert.ErrorIs(t, repo.Delete(ctx, "header_logo_src"), domain.ErrNotFound)
}

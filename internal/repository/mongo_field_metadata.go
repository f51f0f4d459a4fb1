package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/retailermedia/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fieldMetadataCollection = "design_config_metadata"

// MongoFieldMetadataRepository stores design field metadata in MongoDB
type MongoFieldMetadataRepository struct {
	collection *mongo.Collection
}

func NewMongoFieldMetadataRepository(db *mongo.Database) *MongoFieldMetadataRepository {
	return &MongoFieldMetadataRepository{
		collection: db.Collection(fieldMetadataCollection),
	}
}

// EnsureIndexes creates the unique indexes on field code and configuration path
func (r *MongoFieldMetadataRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "path", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create metadata index: %w", err)
	}
	return nil
}

// Get returns every metadata entry keyed by field code
func (r *MongoFieldMetadataRepository) Get(ctx context.Context) (map[string]domain.FieldMetadata, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to query field metadata: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []domain.FieldMetadata
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode field metadata: %w", err)
	}

	metadata := make(map[string]domain.FieldMetadata, len(entries))
	for _, e := range entries {
		metadata[e.Code] = e
	}
	return metadata, nil
}

// Upsert creates or replaces the entry for meta.Code
func (r *MongoFieldMetadataRepository) Upsert(ctx context.Context, meta *domain.FieldMetadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	meta.UpdatedAt = time.Now()

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"code": meta.Code},
		meta,
		options.Replace().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: path %q is already registered by another field", domain.ErrInvalidInput, meta.Path)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert field metadata: %w", err)
	}
	return nil
}

// Delete removes the entry for code
func (r *MongoFieldMetadataRepository) Delete(ctx context.Context, code string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return fmt.Errorf("failed to delete field metadata: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

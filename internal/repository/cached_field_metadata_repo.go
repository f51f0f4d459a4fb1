package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/logger"
)

const (
	fieldMetadataCacheKey = "design:config:metadata"
	fieldMetadataCacheTTL = 5 * time.Minute
)

// CachedFieldMetadataRepository wraps a metadata repository with Redis caching
type CachedFieldMetadataRepository struct {
	source domain.FieldMetadataRepository
	cache  *RedisCacheRepository
}

// NewCachedFieldMetadataRepository creates a new cached metadata repository
func NewCachedFieldMetadataRepository(source domain.FieldMetadataRepository, cache *RedisCacheRepository) *CachedFieldMetadataRepository {
	return &CachedFieldMetadataRepository{
		source: source,
		cache:  cache,
	}
}

// Get returns the metadata map, served from cache when possible
func (r *CachedFieldMetadataRepository) Get(ctx context.Context) (map[string]domain.FieldMetadata, error) {
	var metadata map[string]domain.FieldMetadata
	if err := r.cache.Get(ctx, fieldMetadataCacheKey, &metadata); err == nil {
		return metadata, nil
	} else if !errors.Is(err, ErrCacheMiss) {
		logger.Warnf("field metadata cache read failed: %v", err)
	}

	// Cache miss - fetch from the source
	metadata, err := r.source.Get(ctx)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, fieldMetadataCacheKey, metadata, fieldMetadataCacheTTL)

	return metadata, nil
}

// Upsert writes through and invalidates the cached map
func (r *CachedFieldMetadataRepository) Upsert(ctx context.Context, meta *domain.FieldMetadata) error {
	if err := r.source.Upsert(ctx, meta); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, fieldMetadataCacheKey)
	return nil
}

// Delete removes through and invalidates the cached map
func (r *CachedFieldMetadataRepository) Delete(ctx context.Context, code string) error {
	if err := r.source.Delete(ctx, code); err != nil {
		return err
	}
	_ = r.cache.Delete(ctx, fieldMetadataCacheKey)
	return nil
}

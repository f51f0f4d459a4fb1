package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingMetadataRepo is an in-memory FieldMetadataRepository that counts reads
type countingMetadataRepo struct {
	entries map[string]domain.FieldMetadata
	gets    int
}

func (r *countingMetadataRepo) Get(ctx context.Context) (map[string]domain.FieldMetadata, error) {
	r.gets++
	out := make(map[string]domain.FieldMetadata, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out, nil
}

func (r *countingMetadataRepo) Upsert(ctx context.Context, meta *domain.FieldMetadata) error {
	r.entries[meta.Code] = *meta
	return nil
}

func (r *countingMetadataRepo) Delete(ctx context.Context, code string) error {
	if _, ok := r.entries[code]; !ok {
		return domain.ErrNotFound
	}
	delete(r.entries, code)
	return nil
}

func setupCache(t *testing.T) (*RedisCacheRepository, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCacheRepository(client), mr
}

func TestCachedFieldMetadataRepository_Get(t *testing.T) {
	cache, mr := setupCache(t)
	source := &countingMetadataRepo{entries: map[string]domain.FieldMetadata{
		"head_shortcut_icon": {Code: "head_shortcut_icon", Path: "design/head/shortcut_icon", BackendModel: domain.BackendModelFavicon},
	}}
	repo := NewCachedFieldMetadataRepository(source, cache)
	ctx := context.Background()

	first, err := repo.Get(ctx)
	require.NoError(t, err)
	second, err := repo.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, source.gets, "second read must be served from Redis")
	assert.Equal(t, first["head_shortcut_icon"].Path, second["head_shortcut_icon"].Path)
	assert.True(t, mr.Exists(fieldMetadataCacheKey))
	assert.Equal(t, fieldMetadataCacheTTL, mr.TTL(fieldMetadataCacheKey))
}

func TestCachedFieldMetadataRepository_InvalidatesOnWrite(t *testing.T) {
	cache, mr := setupCache(t)
	source := &countingMetadataRepo{entries: map[string]domain.FieldMetadata{}}
	repo := NewCachedFieldMetadataRepository(source, cache)
	ctx := context.Background()

	_, err := repo.Get(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(fieldMetadataCacheKey))

	require.NoError(t, repo.Upsert(ctx, &domain.FieldMetadata{Code: "email_logo", Path: "design/email/logo", BackendModel: domain.BackendModelImage}))
	assert.False(t, mr.Exists(fieldMetadataCacheKey))

	metadata, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Contains(t, metadata, "email_logo")
	assert.Equal(t, 2, source.gets)

	require.NoError(t, repo.Delete(ctx, "email_logo"))
	assert.False(t, mr.Exists(fieldMetadataCacheKey))

	assert.ErrorIs(t, repo.Delete(ctx, "email_logo"), domain.ErrNotFound)
}

func TestCachedFieldMetadataRepository_CorruptCacheFallsBack(t *testing.T) {
	cache, mr := setupCache(t)
	require.NoError(t, mr.Set(fieldMetadataCacheKey, "not json"))
	source := &countingMetadataRepo{entries: map[string]domain.FieldMetadata{
		"email_logo": {Code: "email_logo", Path: "design/email/logo", BackendModel: domain.BackendModelImage},
	}}
	repo := NewCachedFieldMetadataRepository(source, cache)

	metadata, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Contains(t, metadata, "email_logo")
	assert.Equal(t, 1, source.gets)
}

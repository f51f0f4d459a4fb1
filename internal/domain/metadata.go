package domain

import (
	"context"
	"time"
)

// Backend model kinds understood by the backend model factory
const (
	BackendModelFile    = "file"
	BackendModelImage   = "image"
	BackendModelFavicon = "favicon"
)

// FieldMetadata describes one design configuration field that accepts uploads
type FieldMetadata struct {
	Code              string    `bson:"code" json:"code" validate:"required,max=128"`
	Path              string    `bson:"path" json:"path" validate:"required,max=255"`
	BackendModel      string    `bson:"backend_model,omitempty" json:"backend_model,omitempty" validate:"omitempty,oneof=file image favicon"`
	AllowedExtensions []string  `bson:"allowed_extensions,omitempty" json:"allowed_extensions,omitempty" validate:"omitempty,dive,required,alphanum,max=16"`
	MaxFileSizeKB     int64     `bson:"max_file_size_kb,omitempty" json:"max_file_size_kb,omitempty" validate:"gte=0"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updated_at"`
}

// MetadataProvider returns upload field metadata keyed by field code
type MetadataProvider interface {
	Get(ctx context.Context) (map[string]FieldMetadata, error)
}

// FieldMetadataRepository stores field metadata
type FieldMetadataRepository interface {
	MetadataProvider
	Upsert(ctx context.Context, meta *FieldMetadata) error
	Delete(ctx context.Context, code string) error
}

// StoreContext carries the store a request is scoped to
type StoreContext struct {
	Code         string
	MediaBaseURL string
}

// URLResolver resolves a store code to its media URL context
type URLResolver interface {
	Resolve(code string) (StoreContext, error)
}

// UploadService stages uploaded design files
type UploadService interface {
	SaveTemporary(ctx context.Context, store StoreContext, fieldID string, file *UploadedFile) UploadOutcome
}

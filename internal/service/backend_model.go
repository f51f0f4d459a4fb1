package service

import (
	"context"
	"sort"
	"strings"

	"github.com/mansoorceksport/retailermedia/internal/domain"
)

var (
	defaultImageExtensions   = []string{"jpg", "jpeg", "gif", "png"}
	defaultFaviconExtensions = []string{"ico", "png", "gif", "jpg", "jpeg", "apng", "svg"}
)

// fileBackendModel validates uploads for a file-type configuration field
type fileBackendModel struct {
	extensions []string
	maxSizeKB  int64
}

func (m *fileBackendModel) AllowedExtensions() []string {
	return m.extensions
}

func (m *fileBackendModel) MaxFileSizeKB() int64 {
	return m.maxSizeKB
}

// ValidateMaxSize rejects files larger than the configured limit
func (m *fileBackendModel) ValidateMaxSize(file *domain.UploadedFile) error {
	if m.maxSizeKB > 0 && file.Size > m.maxSizeKB*1024 {
		return domain.NewFileTooLargeError(m.maxSizeKB)
	}
	return nil
}

// BackendModelFactory builds backend models from the metadata registered for a configuration path
type BackendModelFactory struct {
	metadata         domain.MetadataProvider
	defaultMaxSizeKB int64
}

// NewBackendModelFactory creates a factory; defaultMaxSizeMB applies to fields without their own limit
func NewBackendModelFactory(metadata domain.MetadataProvider, defaultMaxSizeMB int64) *BackendModelFactory {
	return &BackendModelFactory{
		metadata:         metadata,
		defaultMaxSizeKB: defaultMaxSizeMB * 1024,
	}
}

// CreateByPath returns the backend model of the field registered at path.
// A path claimed by more than one field code is a configuration error.
func (f *BackendModelFactory) CreateByPath(ctx context.Context, path string) (domain.BackendModel, error) {
	metadata, err := f.metadata.Get(ctx)
	if err != nil {
		return nil, domain.NewIOError("Unable to load the design configuration metadata.", err)
	}

	var matches []string
	for code, meta := range metadata {
		if meta.Path == path {
			matches = append(matches, code)
		}
	}
	switch len(matches) {
	case 0:
		return nil, domain.NewConfigurationError("No backend model is registered for path %q.", path)
	case 1:
		return f.Create(metadata[matches[0]])
	default:
		sort.Strings(matches)
		return nil, domain.NewConfigurationError("Path %q is registered by several fields: %s.", path, strings.Join(matches, ", "))
	}
}

// Create builds the backend model described by meta
func (f *BackendModelFactory) Create(meta domain.FieldMetadata) (domain.BackendModel, error) {
	model := &fileBackendModel{
		extensions: meta.AllowedExtensions,
		maxSizeKB:  meta.MaxFileSizeKB,
	}
	if model.maxSizeKB <= 0 {
		model.maxSizeKB = f.defaultMaxSizeKB
	}

	switch meta.BackendModel {
	case domain.BackendModelFile:
		if len(model.extensions) == 0 {
			return nil, domain.NewConfigurationError("Allowed extensions are not configured for %q.", meta.Code)
		}
	case domain.BackendModelImage:
		if len(model.extensions) == 0 {
			model.extensions = defaultImageExtensions
		}
	case domain.BackendModelFavicon:
		if len(model.extensions) == 0 {
			model.extensions = defaultFaviconExtensions
		}
	default:
		return nil, domain.NewConfigurationError("Unknown backend model %q for %q.", meta.BackendModel, meta.Code)
	}
	return model, nil
}

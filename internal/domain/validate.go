package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a metadata entry
func (m *FieldMetadata) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if m.BackendModel == BackendModelFile && len(m.AllowedExtensions) == 0 {
		return fmt.Errorf("%w: backend model %q requires allowed_extensions", ErrInvalidInput, BackendModelFile)
	}
	return nil
}

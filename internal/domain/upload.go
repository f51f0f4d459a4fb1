package domain

import (
	"context"
	"encoding/json"
	"io"
)

// FileDir is the design file directory below the media root
const FileDir = "design/file"

// TmpFileDir is where uploads are staged until the design configuration is saved
const TmpFileDir = "tmp/" + FileDir

// UploadedFile is an incoming file, independent of the transport that delivered it
type UploadedFile struct {
	FieldID     string
	Name        string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ValidateFunc is a validation callback run by the uploader before writing
type ValidateFunc func(file *UploadedFile) error

// SaveOptions configures a single uploader save
type SaveOptions struct {
	AllowedExtensions []string
	AllowRenameFiles  bool
	FilesDispersion   bool
	// MaxFileSizeKB caps the bytes actually written, whatever Size claims; 0 disables it
	MaxFileSizeKB int64
	Validators    map[string]ValidateFunc
}

// SavedFile is what an uploader reports after a successful write.
// Path points inside the storage backend and must not reach API callers.
type SavedFile struct {
	Name string
	File string
	Size int64
	Type string
	Path string
}

// Uploader writes files into a media storage area
type Uploader interface {
	// Save validates file against opts and writes it below destination,
	// a path relative to the media root.
	Save(ctx context.Context, file *UploadedFile, destination string, opts SaveOptions) (*SavedFile, error)
}

// ValidationRule is the per-request view of a field's upload constraints
type ValidationRule struct {
	FieldID             string
	AllowedExtensions   []string
	MaxSizeValidatorRef string
}

// BackendModel validates uploads for one configuration path
type BackendModel interface {
	AllowedExtensions() []string
	MaxFileSizeKB() int64
	ValidateMaxSize(file *UploadedFile) error
}

// ValidatorFactory builds backend models from field metadata
type ValidatorFactory interface {
	Create(meta FieldMetadata) (BackendModel, error)
	CreateByPath(ctx context.Context, path string) (BackendModel, error)
}

// UploadResult is the public description of a staged file
type UploadResult struct {
	Name string `json:"name"`
	File string `json:"file"`
	Size int64  `json:"size"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// UploadFailure is the structured error returned to the admin UI
type UploadFailure struct {
	Message string `json:"error"`
	Code    int    `json:"errorcode"`
}

// UploadOutcome holds exactly one of Result or Failure
type UploadOutcome struct {
	Result  *UploadResult
	Failure *UploadFailure
}

// Success wraps a result
func Success(result *UploadResult) UploadOutcome {
	return UploadOutcome{Result: result}
}

// Failure wraps a message and code
func Failure(message string, code int) UploadOutcome {
	return UploadOutcome{Failure: &UploadFailure{Message: message, Code: code}}
}

// OK reports whether the outcome is a success
func (o UploadOutcome) OK() bool {
	return o.Failure == nil && o.Result != nil
}

// MarshalJSON renders either the result or the failure shape
func (o UploadOutcome) MarshalJSON() ([]byte, error) {
	if o.Failure != nil {
		return json.Marshal(o.Failure)
	}
	return json.Marshal(o.Result)
}

package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ErrorKind classifies upload failures
type ErrorKind int

const (
	KindConfiguration ErrorKind = iota + 1
	KindValidation
	KindIO
)

// Error codes reported to the admin UI in the "errorcode" field
const (
	CodeConfiguration   = 1
	CodeValidation      = 2
	CodeIO              = 3
	CodeFileNotUploaded = 666
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// UploadError is raised by the upload collaborators and mapped to a Failure
// outcome by the file processor.
type UploadError struct {
	Kind    ErrorKind
	Code    int
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports a misconfigured form field or store
func NewConfigurationError(format string, args ...any) *UploadError {
	return &UploadError{Kind: KindConfiguration, Code: CodeConfiguration, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError reports a file rejected by extension or size rules
func NewValidationError(format string, args ...any) *UploadError {
	return &UploadError{Kind: KindValidation, Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewIOError reports a failed write to the media storage
func NewIOError(message string, err error) *UploadError {
	return &UploadError{Kind: KindIO, Code: CodeIO, Message: message, Err: err}
}

// ErrFileNotUploaded is returned when the request carried no file for the field
var ErrFileNotUploaded = &UploadError{Kind: KindValidation, Code: CodeFileNotUploaded, Message: "File was not uploaded."}

// ErrDisallowedFileType is returned when the extension is outside the allowed set
var ErrDisallowedFileType = &UploadError{Kind: KindValidation, Code: CodeValidation, Message: "Disallowed file type."}

// NewFileTooLargeError reports a file above the field's size limit
func NewFileTooLargeError(maxKB int64) *UploadError {
	return NewValidationError("The file you're uploading exceeds the server size limit of %d kilobytes.", maxKB)
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mansoorceksport/retailermedia/internal/domain"
	"github.com/mansoorceksport/retailermedia/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "retailer-media/service"

// FileProcessor stages design configuration uploads in the temporary media directory
type FileProcessor struct {
	uploader domain.Uploader
	factory  domain.ValidatorFactory
	metadata domain.MetadataProvider
	uploads  metric.Int64Counter
}

// NewFileProcessor creates a new file processor
func NewFileProcessor(
	uploader domain.Uploader,
	factory domain.ValidatorFactory,
	metadata domain.MetadataProvider,
) *FileProcessor {
	uploads, err := otel.Meter(instrumentationName).Int64Counter("design_file_uploads",
		metric.WithDescription("Design file uploads by outcome"),
	)
	if err != nil {
		logger.Warnf("failed to create upload counter: %v", err)
	}
	return &FileProcessor{
		uploader: uploader,
		factory:  factory,
		metadata: metadata,
		uploads:  uploads,
	}
}

// SaveTemporary saves the file uploaded for fieldID to the temporary media
// directory. It never returns an error: every failure is reported as a
// Failure outcome carrying the message and code shown by the admin form.
func (p *FileProcessor) SaveTemporary(ctx context.Context, store domain.StoreContext, fieldID string, file *domain.UploadedFile) domain.UploadOutcome {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "FileProcessor.SaveTemporary",
		trace.WithAttributes(
			attribute.String("design.field_id", fieldID),
			attribute.String("store.code", store.Code),
		),
	)
	defer span.End()

	log := logger.With(logger.Fields{"field_id": fieldID, "store": store.Code})

	result, err := p.save(ctx, fieldID, file)
	if err != nil {
		outcome := failureFrom(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome.Failure.Message)
		p.count(ctx, "failure", outcome.Failure.Code)
		log.WithError(err).Warn("design file upload rejected")
		return outcome
	}

	result.URL = TmpMediaURL(store.MediaBaseURL, result.File)

	span.SetAttributes(attribute.String("design.file", result.File), attribute.Int64("design.size", result.Size))
	p.count(ctx, "success", 0)
	log.WithField("file", result.File).Info("design file staged")
	return domain.Success(result)
}

func (p *FileProcessor) save(ctx context.Context, fieldID string, file *domain.UploadedFile) (*domain.UploadResult, error) {
	rule, model, err := p.ruleFor(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if file != nil {
		upload := *file
		upload.FieldID = fieldID
		file = &upload
	}

	saved, err := p.uploader.Save(ctx, file, domain.TmpFileDir, domain.SaveOptions{
		AllowedExtensions: rule.AllowedExtensions,
		AllowRenameFiles:  true,
		FilesDispersion:   false,
		MaxFileSizeKB:     model.MaxFileSizeKB(),
		Validators: map[string]domain.ValidateFunc{
			"size": model.ValidateMaxSize,
		},
	})
	if err != nil {
		return nil, err
	}

	// saved.Path stays internal
	return &domain.UploadResult{
		Name: saved.Name,
		File: PrepareFile(saved.File),
		Size: saved.Size,
		Type: saved.Type,
	}, nil
}

// ruleFor resolves the validation rule and backend model registered for a field code
func (p *FileProcessor) ruleFor(ctx context.Context, fieldID string) (domain.ValidationRule, domain.BackendModel, error) {
	metadata, err := p.metadata.Get(ctx)
	if err != nil {
		return domain.ValidationRule{}, nil, domain.NewIOError("Unable to load the design configuration metadata.", err)
	}

	meta, ok := metadata[fieldID]
	if fieldID == "" || !ok || meta.BackendModel == "" {
		return domain.ValidationRule{}, nil, domain.NewConfigurationError("The backend model isn't specified for %q.", fieldID)
	}

	model, err := p.factory.Create(meta)
	if err != nil {
		return domain.ValidationRule{}, nil, err
	}

	return domain.ValidationRule{
		FieldID:             fieldID,
		AllowedExtensions:   model.AllowedExtensions(),
		MaxSizeValidatorRef: meta.Path,
	}, model, nil
}

func (p *FileProcessor) count(ctx context.Context, result string, code int) {
	if p.uploads == nil {
		return
	}
	p.uploads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
		attribute.Int("errorcode", code),
	))
}

// failureFrom maps any error to the structured failure shown to the admin UI
func failureFrom(err error) domain.UploadOutcome {
	var uploadErr *domain.UploadError
	if errors.As(err, &uploadErr) {
		return domain.Failure(uploadErr.Message, uploadErr.Code)
	}
	return domain.Failure(err.Error(), 0)
}

// TmpMediaURL builds the public URL of a file staged in the temporary design directory
func TmpMediaURL(mediaBaseURL, file string) string {
	return strings.TrimRight(mediaBaseURL, "/") + "/" + domain.TmpFileDir + "/" + PrepareFile(file)
}

// PrepareFile converts backslashes to slashes and strips leading slashes
func PrepareFile(file string) string {
	return strings.TrimLeft(strings.ReplaceAll(file, "\\", "/"), "/")
}

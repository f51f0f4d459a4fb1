package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	appConfig "github.com/mansoorceksport/retailermedia/internal/config"
	"github.com/mansoorceksport/retailermedia/internal/domain"
)

// s3API is the part of the S3 client the uploader needs
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// SeaweedS3Uploader stores media in an S3-compatible bucket (SeaweedFS, MinIO, AWS)
type SeaweedS3Uploader struct {
	client s3API
	bucket string
}

// NewSeaweedS3Uploader creates a new S3 uploader and makes sure the bucket exists
func NewSeaweedS3Uploader(ctx context.Context, cfg appConfig.S3Config) (*SeaweedS3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	// Path-style addressing is required by SeaweedFS and MinIO
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	u := newSeaweedS3Uploader(client, cfg.Bucket)
	if err := u.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func newSeaweedS3Uploader(client s3API, bucket string) *SeaweedS3Uploader {
	return &SeaweedS3Uploader{client: client, bucket: bucket}
}

// Save validates and uploads file under the destination key prefix.
// With AllowRenameFiles a taken key becomes name_1, name_2, ...; the put is
// conditional on the key being absent so a racing upload is not overwritten.
func (u *SeaweedS3Uploader) Save(ctx context.Context, file *domain.UploadedFile, destination string, opts domain.SaveOptions) (*domain.SavedFile, error) {
	if err := checkUpload(file, opts); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(limitContent(file.Content, opts.MaxFileSizeKB))
	if err != nil {
		return nil, domain.NewIOError("The file cannot be saved.", err)
	}
	if exceedsLimit(int64(len(body)), opts.MaxFileSizeKB) {
		return nil, domain.NewFileTooLargeError(opts.MaxFileSizeKB)
	}

	name := correctFileName(file.Name)
	prefix := ""
	if opts.FilesDispersion {
		prefix = dispersionPath(name)
	}
	dir := strings.Trim(destination, "/") + prefix

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attempts := 1
	if opts.AllowRenameFiles {
		attempts = maxRenameAttempts
	}
	for attempt := 0; attempt < attempts; attempt++ {
		candidate := candidateName(name, attempt)
		key := dir + "/" + candidate

		input := &s3.PutObjectInput{
			Bucket:      aws.String(u.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		}
		if opts.AllowRenameFiles {
			exists, err := u.exists(ctx, key)
			if err != nil {
				return nil, domain.NewIOError("The file cannot be saved.", err)
			}
			if exists {
				continue
			}
			input.IfNoneMatch = aws.String("*")
		}

		if _, err := u.client.PutObject(ctx, input); err != nil {
			if isPreconditionFailed(err) {
				continue
			}
			return nil, domain.NewIOError("The file cannot be saved.", fmt.Errorf("failed to upload file to S3: %w", err))
		}

		return &domain.SavedFile{
			Name: candidate,
			File: prefix + "/" + candidate,
			Size: int64(len(body)),
			Type: file.ContentType,
			Path: fmt.Sprintf("s3://%s/%s", u.bucket, dir),
		}, nil
	}

	return nil, domain.NewIOError("The file cannot be saved.", errors.New("no free object key"))
}

func (u *SeaweedS3Uploader) exists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NotFound" || apiErr.ErrorCode() == "NoSuchKey") {
		return false, nil
	}
	return false, err
}

func isPreconditionFailed(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed"
}

// ensureBucket checks if bucket exists, creating it if necessary
func (u *SeaweedS3Uploader) ensureBucket(ctx context.Context) error {
	_, err := u.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(u.bucket),
	})
	if err != nil {
		_, err = u.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(u.bucket),
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", u.bucket, err)
		}
	}
	return nil
}

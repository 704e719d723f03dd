// Package storage is the object-storage boundary. The core hands it bytes and
// gets back an opaque BlobRef; retry and versioning live on the other side.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"eschool/internal/apperr"
	"eschool/internal/config"
	"eschool/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awsmiddleware "github.com/aws/smithy-go/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BlobStore accepts a binary blob and returns a location/identifier; deletion
// by identifier.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (model.BlobRef, error)
	Delete(ctx context.Context, ref model.BlobRef) error
}

type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Client builds the S3 client from config, pointing at the configured
// S3-compatible endpoint.
func NewS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	s3Config, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
		awsconfig.WithAPIOptions([]func(*awsmiddleware.Stack) error{removeDisableGzip()}),
	)
	if err != nil {
		return nil, fmt.Errorf("load S3 config: %w", err)
	}
	return s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3URL)
		o.UsePathStyle = true
	}), nil
}

// NewS3Store wraps an S3 client as a BlobStore writing into the given bucket.
func NewS3Store(client *s3.Client, bucket, baseURL string, logger zerolog.Logger) BlobStore {
	return &s3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("service", "BlobStore").Logger(),
	}
}

// Put stores the blob under a fresh key derived from the content type.
func (s *s3Store) Put(ctx context.Context, data []byte, contentType string) (model.BlobRef, error) {
	key := uuid.NewString() + extensionFor(contentType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to upload blob")
		return model.BlobRef{}, apperr.External("upload blob", err)
	}
	return model.BlobRef{
		Bucket:      s.bucket,
		Key:         key,
		Location:    fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, key),
		ContentType: contentType,
	}, nil
}

// Delete removes the blob referenced by ref; the ref's own bucket wins over
// the store default so stale references still resolve.
func (s *s3Store) Delete(ctx context.Context, ref model.BlobRef) error {
	bucket := ref.Bucket
	if bucket == "" {
		bucket = s.bucket
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("key", ref.Key).Msg("Failed to delete blob")
		return apperr.External("delete blob", err)
	}
	return nil
}

func extensionFor(contentType string) string {
	if _, sub, ok := strings.Cut(contentType, "/"); ok && sub != "" {
		return "." + sub
	}
	return ""
}

// removeDisableGzip is a workaround for S3 signature errors with some
// S3-compatible services. See: https://github.com/supabase/storage/issues/577
func removeDisableGzip() func(*awsmiddleware.Stack) error {
	return func(stack *awsmiddleware.Stack) error {
		if _, ok := stack.Finalize.Get("DisableAcceptEncodingGzip"); ok {
			_, err := stack.Finalize.Remove("DisableAcceptEncodingGzip")
			return err
		}
		return nil
	}
}

// Package storage uploads profile images to object storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"passin/internal/domain"
)

// Config selects the storage provider.
type Config struct {
	Provider string
	Bucket   string
	Region   string
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// New returns an ObjectStorage. Provider "s3" writes to the configured bucket; anything else
// discards uploads and returns a local placeholder URL.
func New(cfg Config, awsCfg aws.Config, logger *slog.Logger) domain.ObjectStorage {
	switch cfg.Provider {
	case "s3":
		return &s3Storage{
			client: s3.NewFromConfig(awsCfg),
			bucket: cfg.Bucket,
			region: cfg.Region,
			logger: logger,
		}
	case "noop", "":
		return &noopStorage{logger: logger}
	default:
		logger.Warn("unknown storage provider, using noop", "provider", cfg.Provider)
		return &noopStorage{logger: logger}
	}
}

type s3Storage struct {
	client s3API
	bucket string
	region string
	logger *slog.Logger
}

func (s *s3Storage) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("could not upload image: %w", err)
	}
	s.logger.InfoContext(ctx, "image uploaded to S3", "bucket", s.bucket, "key", key)
	return objectURL(s.bucket, s.region, key), nil
}

func objectURL(bucket, region, key string) string {
	u := url.URL{
		Scheme: "https",
		Host:   fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, region),
		Path:   "/" + key,
	}
	return u.String()
}

type noopStorage struct {
	logger *slog.Logger
}

func (n *noopStorage) Put(ctx context.Context, key, _ string, body io.Reader) (string, error) {
	written, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", fmt.Errorf("could not read image: %w", err)
	}
	n.logger.InfoContext(ctx, "image would be uploaded (noop)", "key", key, "bytes", written)
	return "noop://" + key, nil
}

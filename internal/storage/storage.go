// Package storage provides S3-compatible object storage for media files.
// Clients never stream bytes through our services; they get time-limited
// presigned URLs and talk to the object store directly.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Service defines the interface for storage operations.
type Service interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	DeleteFile(ctx context.Context, key string) error
	EnsureBucketExists(ctx context.Context) error
	Health(ctx context.Context) error
}

type service struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
	log        *slog.Logger
}

// New creates a storage service. Works against AWS S3 or any S3-compatible
// store (MinIO) via S3_ENDPOINT.
func New(ctx context.Context, log *slog.Logger) (Service, error) {
	endpoint := os.Getenv("S3_ENDPOINT")
	accessKey := os.Getenv("S3_ACCESS_KEY")
	secretKey := os.Getenv("S3_SECRET_KEY")
	bucketName := os.Getenv("S3_BUCKET_NAME")
	region := os.Getenv("S3_REGION")
	useSSL := os.Getenv("S3_USE_SSL") == "true"

	if accessKey == "" {
		return nil, fmt.Errorf("S3_ACCESS_KEY environment variable is required")
	}
	if secretKey == "" {
		return nil, fmt.Errorf("S3_SECRET_KEY environment variable is required")
	}
	if bucketName == "" {
		return nil, fmt.Errorf("S3_BUCKET_NAME environment variable is required")
	}
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	}

	if endpoint != "" {
		protocol := "http"
		if useSSL {
			protocol = "https"
		}
		endpointURL := fmt.Sprintf("%s://%s", protocol, endpoint)

		resolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpointURL,
					SigningRegion:     region,
					HostnameImmutable: true,
				}, nil
			},
		)
		loadOpts = append(loadOpts, config.WithEndpointResolverWithOptions(resolver))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// path-style addressing is required for MinIO
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	})

	s := &service{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		log:        log,
	}

	if err := s.EnsureBucketExists(ctx); err != nil {
		log.Warn("failed to ensure bucket exists", "error", err)
	}

	return s, nil
}

// EnsureBucketExists creates the bucket if it doesn't already exist.
func (s *service) EnsureBucketExists(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	s.log.Info("created bucket", "bucket", s.bucketName)
	return nil
}

// GeneratePresignedUploadURL creates a presigned URL for uploading.
func (s *service) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("file key cannot be empty")
	}
	if contentType == "" {
		return "", fmt.Errorf("content type cannot be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("TTL must be positive")
	}

	request, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned upload URL for key %s: %w", key, err)
	}
	return request.URL, nil
}

// GeneratePresignedDownloadURL creates a presigned URL for downloading.
func (s *service) GeneratePresignedDownloadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", fmt.Errorf("file key cannot be empty")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("TTL must be positive")
	}

	request, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned download URL for key %s: %w", key, err)
	}
	return request.URL, nil
}

// DeleteFile removes a file from storage.
func (s *service) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("file key cannot be empty")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}

// Health checks if the storage service is accessible.
func (s *service) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}

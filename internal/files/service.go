// Package files implements the files service: presigned upload and
// download URLs for user media, validated and namespaced per user.
package files

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"prism/internal/storage"

	"github.com/google/uuid"
)

// Service handles business logic for file operations.
type Service struct {
	storage storage.Service
}

// NewService creates a files service.
func NewService(storage storage.Service) *Service {
	return &Service{storage: storage}
}

// ValidateFilename checks if a filename is safe and valid.
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if len(filename) > MaxFilenameLength {
		return fmt.Errorf("filename too long (max %d characters)", MaxFilenameLength)
	}
	if strings.Contains(filename, "..") || strings.Contains(filename, "/") || strings.Contains(filename, "\\") {
		return fmt.Errorf("filename contains invalid characters")
	}
	if filepath.Ext(filename) == "" {
		return fmt.Errorf("filename must have an extension")
	}
	return nil
}

// ValidateContentType checks if a content type is allowed.
func ValidateContentType(contentType string) error {
	if contentType == "" {
		return fmt.Errorf("content type cannot be empty")
	}
	if !AllowedContentTypes[contentType] {
		return fmt.Errorf("content type %s is not allowed", contentType)
	}
	return nil
}

// GenerateUploadURL creates a presigned URL for file upload. Keys are
// namespaced under the uploading user so ownership is visible in the key.
func (s *Service) GenerateUploadURL(ctx context.Context, userID string, req *GenerateUploadURLRequest) (*GenerateUploadURLResponse, error) {
	if err := ValidateFilename(req.Filename); err != nil {
		return nil, fmt.Errorf("invalid filename: %w", err)
	}
	if err := ValidateContentType(req.ContentType); err != nil {
		return nil, fmt.Errorf("invalid content type: %w", err)
	}

	fileKey := fmt.Sprintf("uploads/%s/%s-%s", userID, uuid.New().String(), req.Filename)

	uploadURL, err := s.storage.GeneratePresignedUploadURL(ctx, fileKey, req.ContentType, UploadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &GenerateUploadURLResponse{
		UploadURL: uploadURL,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(UploadURLTTL).Unix(),
	}, nil
}

// GenerateDownloadURL creates a presigned URL for file download.
func (s *Service) GenerateDownloadURL(ctx context.Context, req *GenerateDownloadURLRequest) (*GenerateDownloadURLResponse, error) {
	if req.FileKey == "" {
		return nil, fmt.Errorf("file key cannot be empty")
	}

	downloadURL, err := s.storage.GeneratePresignedDownloadURL(ctx, req.FileKey, DownloadURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return &GenerateDownloadURLResponse{
		DownloadURL: downloadURL,
		ExpiresAt:   time.Now().Add(DownloadURLTTL).Unix(),
	}, nil
}

// DeleteFile removes a file. Only keys under the caller's own namespace
// may be deleted.
func (s *Service) DeleteFile(ctx context.Context, userID, fileKey string) error {
	if fileKey == "" {
		return fmt.Errorf("file key cannot be empty")
	}
	if !strings.HasPrefix(fileKey, fmt.Sprintf("uploads/%s/", userID)) {
		return fmt.Errorf("file key does not belong to user")
	}

	if err := s.storage.DeleteFile(ctx, fileKey); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// HealthCheck checks storage service health.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.storage.Health(ctx)
}

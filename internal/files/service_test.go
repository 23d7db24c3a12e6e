package files

import (
	"context"
	"strings"
	"testing"
	"time"
)

// Fake storage backend recording calls.
type fakeStorage struct {
	deletedKeys []string
	uploadKey   string
}

func (f *fakeStorage) GeneratePresignedUploadURL(ctx context.Context, fileKey, contentType string, ttl time.Duration) (string, error) {
	f.uploadKey = fileKey
	return "https://storage.example.com/upload/" + fileKey, nil
}

func (f *fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, fileKey string, ttl time.Duration) (string, error) {
	return "https://storage.example.com/download/" + fileKey, nil
}

func (f *fakeStorage) DeleteFile(ctx context.Context, fileKey string) error {
	f.deletedKeys = append(f.deletedKeys, fileKey)
	return nil
}

func (f *fakeStorage) EnsureBucketExists(ctx context.Context) error { return nil }
func (f *fakeStorage) Health(ctx context.Context) error             { return nil }

func TestValidateFilename(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"valid", "photo.jpg", false},
		{"empty", "", true},
		{"traversal", "../etc/passwd.jpg", true},
		{"slash", "a/b.jpg", true},
		{"backslash", "a\\b.jpg", true},
		{"no extension", "photo", true},
		{"too long", strings.Repeat("a", 300) + ".jpg", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFilename(tc.filename)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tc.filename, err, tc.wantErr)
			}
		})
	}
}

func TestValidateContentType(t *testing.T) {
	if err := ValidateContentType("image/png"); err != nil {
		t.Errorf("image/png should be allowed: %v", err)
	}
	if err := ValidateContentType("video/mp4"); err != nil {
		t.Errorf("video/mp4 should be allowed: %v", err)
	}
	if err := ValidateContentType("application/x-msdownload"); err == nil {
		t.Error("Executables must not be allowed")
	}
	if err := ValidateContentType(""); err == nil {
		t.Error("Empty content type must be rejected")
	}
}

func TestGenerateUploadURL_NamespacesKeyUnderUser(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewService(storage)

	resp, err := svc.GenerateUploadURL(context.Background(), "user-1", &GenerateUploadURLRequest{
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("GenerateUploadURL failed: %v", err)
	}

	if !strings.HasPrefix(resp.FileKey, "uploads/user-1/") {
		t.Errorf("Key should be namespaced under the user, got %s", resp.FileKey)
	}
	if !strings.HasSuffix(resp.FileKey, "-photo.jpg") {
		t.Errorf("Key should keep the filename, got %s", resp.FileKey)
	}
	if resp.UploadURL == "" {
		t.Error("Expected a presigned URL")
	}
}

func TestGenerateUploadURL_RejectsBadInput(t *testing.T) {
	svc := NewService(&fakeStorage{})

	_, err := svc.GenerateUploadURL(context.Background(), "user-1", &GenerateUploadURLRequest{
		Filename:    "../escape.jpg",
		ContentType: "image/jpeg",
	})
	if err == nil {
		t.Error("Traversal filename must be rejected")
	}

	_, err = svc.GenerateUploadURL(context.Background(), "user-1", &GenerateUploadURLRequest{
		Filename:    "script.sh",
		ContentType: "application/x-sh",
	})
	if err == nil {
		t.Error("Disallowed content type must be rejected")
	}
}

func TestDeleteFile_OwnershipEnforced(t *testing.T) {
	storage := &fakeStorage{}
	svc := NewService(storage)
	ctx := context.Background()

	if err := svc.DeleteFile(ctx, "user-1", "uploads/user-2/abc-photo.jpg"); err == nil {
		t.Error("Deleting another user's key must fail")
	}
	if len(storage.deletedKeys) != 0 {
		t.Errorf("Nothing should have been deleted, got %v", storage.deletedKeys)
	}

	if err := svc.DeleteFile(ctx, "user-1", "uploads/user-1/abc-photo.jpg"); err != nil {
		t.Errorf("Deleting own key failed: %v", err)
	}
	if len(storage.deletedKeys) != 1 {
		t.Errorf("Expected 1 deletion, got %d", len(storage.deletedKeys))
	}
}

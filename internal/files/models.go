package files

import "time"

// GenerateUploadURLRequest asks for a presigned upload URL.
type GenerateUploadURLRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// GenerateUploadURLResponse carries the presigned upload URL and the key
// the client should reference when creating a post.
type GenerateUploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	FileKey   string `json:"file_key"`
	ExpiresAt int64  `json:"expires_at"`
}

// GenerateDownloadURLRequest asks for a presigned download URL.
type GenerateDownloadURLRequest struct {
	FileKey string `json:"file_key" binding:"required"`
}

// GenerateDownloadURLResponse carries the presigned download URL.
type GenerateDownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
	ExpiresAt   int64  `json:"expires_at"`
}

const (
	MaxFilenameLength = 255

	UploadURLTTL   = 15 * time.Minute
	DownloadURLTTL = 1 * time.Hour
)

// AllowedContentTypes whitelists what users may upload.
var AllowedContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
}

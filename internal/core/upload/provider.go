package upload

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// UploadResult represents the result of a file upload
type UploadResult struct {
	URL          string `json:"url"`           // Public URL to access the file
	SecureURL    string `json:"secure_url"`    // HTTPS URL (for Cloudinary)
	FileName     string `json:"file_name"`     // Original filename
	Size         int64  `json:"size"`          // File size in bytes
	Format       string `json:"format"`        // File extension/format
	ResourceType string `json:"resource_type"` // image, video, raw, etc.
	PublicID     string `json:"public_id"`     // Object path inside the store
}

// PublicURL prefers the HTTPS URL when the provider returned one
func (r *UploadResult) PublicURL() string {
	if r.SecureURL != "" {
		return r.SecureURL
	}
	return r.URL
}

// UploadOptions represents upload configuration options
type UploadOptions struct {
	FileName    string // original name, informational
	ContentType string
	Overwrite   bool
	MaxSize     int64 // Max file size in bytes
}

// Provider defines the interface for object store providers. Objects are
// addressed by a slash separated path such as "ocr-images/<uuid>.png".
type Provider interface {
	// Upload stores the content under objectPath
	Upload(ctx context.Context, file io.Reader, objectPath string, options *UploadOptions) (*UploadResult, error)

	// Delete deletes an object by path
	Delete(ctx context.Context, objectPath string) error

	// GetURL gets the public URL for an object
	GetURL(objectPath string) string

	// PathFromURL recovers the object path from a public URL produced by
	// this provider. ok is false for foreign URLs.
	PathFromURL(url string) (objectPath string, ok bool)

	// GetProviderName returns the provider name
	GetProviderName() string
}

// DefaultUploadOptions returns default upload options
func DefaultUploadOptions() *UploadOptions {
	return &UploadOptions{
		ContentType: "application/octet-stream",
		Overwrite:   false,
		MaxSize:     20 * 1024 * 1024, // 20MB
	}
}

// MergeOptions merges custom options with defaults
func MergeOptions(custom *UploadOptions) *UploadOptions {
	defaults := DefaultUploadOptions()

	if custom == nil {
		return defaults
	}

	if custom.FileName != "" {
		defaults.FileName = custom.FileName
	}
	if custom.ContentType != "" {
		defaults.ContentType = custom.ContentType
	}
	if custom.MaxSize > 0 {
		defaults.MaxSize = custom.MaxSize
	}

	defaults.Overwrite = custom.Overwrite

	return defaults
}

// detectContentType detects the content type based on file extension
func detectContentType(ext string) string {
	contentTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".bmp":  "image/bmp",
		".tif":  "image/tiff",
		".tiff": "image/tiff",
	}

	if contentType, ok := contentTypes[strings.ToLower(ext)]; ok {
		return contentType
	}

	return "application/octet-stream"
}

// detectResourceType detects the resource type based on file extension
func detectResourceType(ext string) string {
	imageExts := map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
		".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
	}

	if imageExts[strings.ToLower(ext)] {
		return "image"
	}

	return "raw"
}

// trimURLPrefix strips prefix from url and returns a clean object path
func trimURLPrefix(url, prefix string) (string, bool) {
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}

	objectPath := strings.TrimPrefix(url, prefix)
	if i := strings.IndexAny(objectPath, "?#"); i >= 0 {
		objectPath = objectPath[:i]
	}
	objectPath = strings.TrimPrefix(objectPath, "/")
	if objectPath == "" {
		return "", false
	}

	return objectPath, true
}

// cleanObjectPath rejects paths that would escape the store root
func cleanObjectPath(objectPath string) (string, bool) {
	cleaned := filepath.ToSlash(filepath.Clean("/" + objectPath))
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." {
		return "", false
	}
	return cleaned, true
}

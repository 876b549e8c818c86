package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalProvider implements the object store on the local filesystem
type LocalProvider struct {
	basePath   string // Base directory for uploads
	baseURL    string // Base URL to access files
	publicPath string // Public path for URL generation
}

// NewLocalProvider creates a new local file storage provider
func NewLocalProvider(basePath, baseURL string) (*LocalProvider, error) {
	// Create base directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &LocalProvider{
		basePath:   basePath,
		baseURL:    strings.TrimRight(baseURL, "/"),
		publicPath: "/uploads/",
	}, nil
}

// PublicPath is the URL prefix the files are served under
func (p *LocalProvider) PublicPath() string {
	return p.publicPath
}

// BasePath is the directory files are written to
func (p *LocalProvider) BasePath() string {
	return p.basePath
}

// Upload writes a file to the local filesystem
func (p *LocalProvider) Upload(ctx context.Context, file io.Reader, objectPath string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)

	cleaned, ok := cleanObjectPath(objectPath)
	if !ok {
		return nil, fmt.Errorf("invalid object path: %q", objectPath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filePath := filepath.Join(p.basePath, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	// Check if file exists and overwrite is false
	if !options.Overwrite {
		if _, err := os.Stat(filePath); err == nil {
			return nil, fmt.Errorf("file already exists: %s", cleaned)
		}
	}

	out, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, file)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	if options.MaxSize > 0 && size > options.MaxSize {
		os.Remove(filePath)
		return nil, fmt.Errorf("file size exceeds maximum allowed size: %d bytes", options.MaxSize)
	}

	ext := filepath.Ext(cleaned)
	publicURL := p.GetURL(cleaned)

	return &UploadResult{
		URL:          publicURL,
		SecureURL:    publicURL,
		FileName:     options.FileName,
		Size:         size,
		Format:       strings.TrimPrefix(ext, "."),
		ResourceType: detectResourceType(ext),
		PublicID:     cleaned,
	}, nil
}

// Delete deletes a file from the local filesystem
func (p *LocalProvider) Delete(ctx context.Context, objectPath string) error {
	cleaned, ok := cleanObjectPath(objectPath)
	if !ok {
		return fmt.Errorf("invalid object path: %q", objectPath)
	}

	filePath := filepath.Join(p.basePath, filepath.FromSlash(cleaned))
	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			// already gone
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// GetURL gets the public URL for a file
func (p *LocalProvider) GetURL(objectPath string) string {
	return p.baseURL + p.publicPath + strings.TrimPrefix(objectPath, "/")
}

// PathFromURL strips the public URL prefix
func (p *LocalProvider) PathFromURL(url string) (string, bool) {
	objectPath, ok := trimURLPrefix(url, p.baseURL+p.publicPath)
	if !ok {
		return "", false
	}
	return cleanObjectPath(objectPath)
}

// GetProviderName returns the provider name
func (p *LocalProvider) GetProviderName() string {
	return "Local Storage"
}

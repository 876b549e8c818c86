package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Service provides object storage with provider switching
type Service struct {
	provider     Provider
	providerName string
	folder       string
}

// NewService creates a new upload service that stores objects under folder
func NewService(provider Provider, folder string) *Service {
	return &Service{
		provider:     provider,
		providerName: provider.GetProviderName(),
		folder:       strings.Trim(folder, "/"),
	}
}

// GenerateObjectPath builds "<folder>/<uuid><ext>" with the lower-cased
// extension of filename.
func GenerateObjectPath(folder, filename string) string {
	name := uuid.New().String() + strings.ToLower(filepath.Ext(filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}

// UploadImage stores data under a fresh object path and returns the public
// URL alongside the path.
func (s *Service) UploadImage(ctx context.Context, data []byte, filename, contentType string) (*UploadResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("upload provider not configured")
	}

	objectPath := GenerateObjectPath(s.folder, filename)
	result, err := s.provider.Upload(ctx, bytes.NewReader(data), objectPath, &UploadOptions{
		FileName:    filename,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	if result.PublicID == "" {
		result.PublicID = objectPath
	}

	return result, nil
}

// Delete deletes an object by path
func (s *Service) Delete(ctx context.Context, objectPath string) error {
	if s.provider == nil {
		return fmt.Errorf("upload provider not configured")
	}

	return s.provider.Delete(ctx, objectPath)
}

// GetURL gets the public URL for an object
func (s *Service) GetURL(objectPath string) string {
	if s.provider == nil {
		return ""
	}

	return s.provider.GetURL(objectPath)
}

// PathFromURL recovers the object path of a URL this store produced
func (s *Service) PathFromURL(url string) (string, bool) {
	if s.provider == nil || url == "" {
		return "", false
	}

	return s.provider.PathFromURL(url)
}

// GetProviderName returns the current provider name
func (s *Service) GetProviderName() string {
	return s.providerName
}

package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var cloudinaryVersionRe = regexp.MustCompile(`^v\d+/`)

// CloudinaryProvider implements the object store on Cloudinary. Image public
// IDs carry no extension, so the object path's extension is stripped for API
// calls and kept in URLs.
type CloudinaryProvider struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinaryProvider creates a new Cloudinary provider
func NewCloudinaryProvider(cloudName, apiKey, apiSecret string) (*CloudinaryProvider, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	return &CloudinaryProvider{
		cld:       cld,
		cloudName: cloudName,
	}, nil
}

// Upload uploads a file to Cloudinary
func (p *CloudinaryProvider) Upload(ctx context.Context, file io.Reader, objectPath string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)

	cleaned, ok := cleanObjectPath(objectPath)
	if !ok {
		return nil, fmt.Errorf("invalid object path: %q", objectPath)
	}

	overwrite := options.Overwrite
	params := uploader.UploadParams{
		PublicID:     publicIDFromPath(cleaned),
		ResourceType: "image",
		Overwrite:    &overwrite,
	}

	result, err := p.cld.Upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("Cloudinary upload failed: %s", result.Error.Message)
	}

	return &UploadResult{
		URL:          result.URL,
		SecureURL:    p.GetURL(cleaned),
		FileName:     options.FileName,
		Size:         int64(result.Bytes),
		Format:       result.Format,
		ResourceType: result.ResourceType,
		PublicID:     cleaned,
	}, nil
}

// Delete deletes a file from Cloudinary
func (p *CloudinaryProvider) Delete(ctx context.Context, objectPath string) error {
	params := uploader.DestroyParams{
		PublicID:     publicIDFromPath(objectPath),
		ResourceType: "image",
	}

	result, err := p.cld.Upload.Destroy(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to delete from Cloudinary: %w", err)
	}

	if result.Result != "ok" {
		return fmt.Errorf("Cloudinary delete failed: %s", result.Result)
	}

	return nil
}

// GetURL gets the public URL for a file from Cloudinary
func (p *CloudinaryProvider) GetURL(objectPath string) string {
	return fmt.Sprintf("%s%s", p.urlPrefix(), strings.TrimPrefix(objectPath, "/"))
}

// PathFromURL strips the delivery prefix and an optional version segment
func (p *CloudinaryProvider) PathFromURL(url string) (string, bool) {
	url = strings.Replace(url, "http://", "https://", 1)

	objectPath, ok := trimURLPrefix(url, p.urlPrefix())
	if !ok {
		return "", false
	}
	return cloudinaryVersionRe.ReplaceAllString(objectPath, ""), true
}

// GetProviderName returns the provider name
func (p *CloudinaryProvider) GetProviderName() string {
	return "Cloudinary"
}

func (p *CloudinaryProvider) urlPrefix() string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/", p.cloudName)
}

func publicIDFromPath(objectPath string) string {
	return strings.TrimSuffix(objectPath, path.Ext(objectPath))
}

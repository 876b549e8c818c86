package upload

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Provider implements the object store on AWS S3
type S3Provider struct {
	client     *s3.Client
	bucketName string
	region     string
	baseURL    string // Base URL for accessing files (e.g., CloudFront)
}

// NewS3Provider creates a new AWS S3 provider. baseURL may point to a CDN in
// front of the bucket; empty means the virtual-hosted bucket URL.
func NewS3Provider(ctx context.Context, accessKeyID, secretAccessKey, region, bucketName, baseURL string) (*S3Provider, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("AWS_S3_BUCKET is required for the s3 storage provider")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucketName, region)
	}

	return &S3Provider{
		client:     s3.NewFromConfig(cfg),
		bucketName: bucketName,
		region:     region,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload uploads a file to AWS S3
func (p *S3Provider) Upload(ctx context.Context, file io.Reader, objectPath string, options *UploadOptions) (*UploadResult, error) {
	options = MergeOptions(options)

	key, ok := cleanObjectPath(objectPath)
	if !ok {
		return nil, fmt.Errorf("invalid object path: %q", objectPath)
	}

	ext := path.Ext(key)
	contentType := options.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(ext)
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(p.bucketName),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead, // Make file publicly accessible
	}
	if !options.Overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := p.GetURL(key)

	return &UploadResult{
		URL:          publicURL,
		SecureURL:    publicURL,
		FileName:     options.FileName,
		Format:       strings.TrimPrefix(ext, "."),
		ResourceType: detectResourceType(ext),
		PublicID:     key,
	}, nil
}

// Delete deletes a file from AWS S3
func (p *S3Provider) Delete(ctx context.Context, objectPath string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucketName),
		Key:    aws.String(objectPath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// GetURL gets the public URL for a file from S3
func (p *S3Provider) GetURL(objectPath string) string {
	return fmt.Sprintf("%s/%s", p.baseURL, strings.TrimPrefix(objectPath, "/"))
}

// PathFromURL strips the bucket base URL
func (p *S3Provider) PathFromURL(url string) (string, bool) {
	return trimURLPrefix(url, p.baseURL+"/")
}

// GetProviderName returns the provider name
func (p *S3Provider) GetProviderName() string {
	return "AWS S3"
}

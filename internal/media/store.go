// Package media stores uploaded post images in an S3-compatible bucket.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"flock/internal/config"
	"flock/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store uploads media objects and returns their public URLs.
type Store interface {
	Upload(ctx context.Context, filename string, contentType string, body io.Reader) (string, error)
}

// S3Store implements Store against any S3-compatible endpoint.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// allowed image extensions for uploads.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// NewS3Store builds an S3Store from configuration. It returns an error when
// the bucket is not configured; callers may then run without media uploads.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	if cfg.MediaBucket == "" {
		return nil, fmt.Errorf("media bucket not configured")
	}

	client := s3.New(s3.Options{
		Region:       cfg.MediaRegion,
		BaseEndpoint: aws.String(cfg.MediaEndpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.MediaAccessKey, cfg.MediaSecretKey, ""),
	})

	return &S3Store{
		client:  client,
		bucket:  cfg.MediaBucket,
		baseURL: strings.TrimSuffix(cfg.MediaBaseURL, "/"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, filename string, contentType string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", models.NewValidationError("Unsupported image type")
	}

	key := fmt.Sprintf("posts/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		ACL:         "public-read",
	})
	if err != nil {
		return "", models.NewMediaUploadError(err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

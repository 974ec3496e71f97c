package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// SpacesConfig holds configuration for an S3-compatible bucket
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string // host only, e.g. nyc3.digitaloceanspaces.com
	CDNURL    string
}

// SpacesStorage uploads into an S3-compatible object store
type SpacesStorage struct {
	uploader *s3manager.Uploader
	bucket   string
	endpoint string
	cdnURL   string
}

// NewSpacesStorage creates a new S3-compatible storage client
func NewSpacesStorage(config SpacesConfig) (*SpacesStorage, error) {
	if config.Bucket == "" || config.Endpoint == "" {
		return nil, fmt.Errorf("spaces storage needs a bucket and an endpoint")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String("https://" + strings.TrimPrefix(config.Endpoint, "https://")),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create spaces session: %w", err)
	}

	return &SpacesStorage{
		uploader: s3manager.NewUploaderWithClient(s3.New(sess)),
		bucket:   config.Bucket,
		endpoint: strings.TrimPrefix(config.Endpoint, "https://"),
		cdnURL:   strings.TrimRight(config.CDNURL, "/"),
	}, nil
}

// Store streams r to the bucket as a public object and returns its URL
func (s *SpacesStorage) Store(ctx context.Context, r io.Reader, key string) (string, error) {
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ACL:         aws.String("public-read"),
		ContentType: aws.String(ContentType(key)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}
	return s.URL(key), nil
}

// URL returns the public URL for key, preferring the CDN
func (s *SpacesStorage) URL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// Package avatar stores account profile images in S3 compatible object
// storage and hands back a public URL for the uploaded object.
package avatar

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Store persists avatar images.
type Store interface {
	Upload(ctx context.Context, accountID uuid.UUID, contentType string, body io.Reader) (string, error)
}

// StoreConfig holds the object storage settings. BaseEndpoint supports
// MinIO and other S3 compatible backends.
type StoreConfig struct {
	Bucket       string `yaml:"bucket" env:"AVATARS_BUCKET"`
	Region       string `yaml:"region" env:"AVATARS_REGION" env-default:"us-east-1"`
	AccessKey    string `yaml:"access_key" env:"AVATARS_ACCESS_KEY"`
	SecretKey    string `yaml:"secret_key" env:"AVATARS_SECRET_KEY"`
	BaseEndpoint string `yaml:"base_endpoint" env:"AVATARS_BASE_ENDPOINT"`
	PublicURL    string `yaml:"public_url" env:"AVATARS_PUBLIC_URL"`
}

// Enabled reports whether enough settings are present to store avatars.
func (c StoreConfig) Enabled() bool {
	return c.Bucket != ""
}

// S3Store implements Store on top of an S3 bucket.
type S3Store struct {
	cfg    StoreConfig
	client *s3.Client
}

var _ Store = &S3Store{}

func NewS3Store(ctx context.Context, cfg StoreConfig) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load object storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{cfg: cfg, client: client}, nil
}

// Upload writes the image under a per-account key and returns its public
// URL. Re-uploading for the same account overwrites the previous avatar.
func (s *S3Store) Upload(ctx context.Context, accountID uuid.UUID, contentType string, body io.Reader) (string, error) {
	key := fmt.Sprintf("avatars/%s", accountID)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *S3Store) publicURL(key string) string {
	if s.cfg.PublicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.PublicURL, "/"), key)
	}
	if s.cfg.BaseEndpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.cfg.BaseEndpoint, "/"), s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

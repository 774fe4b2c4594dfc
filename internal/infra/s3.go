package infra

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/plitvinphd/azurepdf2png/internal/config"
	"github.com/plitvinphd/azurepdf2png/internal/ports"
)

type s3Client struct {
	client     *minio.Client
	bucket     string
	host       string
	publicURLs bool
	expiry     time.Duration
}

func NewS3Client(ctx context.Context, cfg *config.Config) (ports.S3Client, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init S3 client: %w", err)
	}

	if err := ensureBucket(ctx, client, cfg); err != nil {
		return nil, err
	}

	return newS3Client(client, cfg), nil
}

func newS3Client(client *minio.Client, cfg *config.Config) *s3Client {
	scheme := "http"
	if cfg.S3UseSSL {
		scheme = "https"
	}
	return &s3Client{
		client:     client,
		bucket:     cfg.S3Bucket,
		host:       fmt.Sprintf("%s://%s", scheme, cfg.S3Endpoint),
		publicURLs: cfg.S3PublicURLs,
		expiry:     cfg.URLExpiry,
	}
}

func ensureBucket(ctx context.Context, client *minio.Client, cfg *config.Config) error {
	exists, err := client.BucketExists(ctx, cfg.S3Bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if !cfg.CreateBucket {
		return fmt.Errorf("bucket %q does not exist", cfg.S3Bucket)
	}

	err = client.MakeBucket(ctx, cfg.S3Bucket, minio.MakeBucketOptions{Region: cfg.S3Region})
	if err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", cfg.S3Bucket, err)
	}
	log.Printf("[s3] created bucket %q", cfg.S3Bucket)
	return nil
}

// PutObject загружает файл и возвращает URL для чтения
func (s *s3Client) PutObject(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"uploaded-at": time.Now().Format(time.RFC3339)},
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return s.objectURL(ctx, key)
}

// objectURL — публичная ссылка либо presigned GET на expiry
func (s *s3Client) objectURL(ctx context.Context, key string) (string, error) {
	if s.publicURLs {
		return s.buildPublicURL(key), nil
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u.String(), nil
}

func (s *s3Client) RemoveObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func (s *s3Client) buildPublicURL(key string) string {
	parts := strings.Split(path.Clean(key), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return fmt.Sprintf("%s/%s/%s", s.host, s.bucket, strings.Join(parts, "/"))
}

package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type StorageConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UploadDir string
	BaseURL   string
}

// Storage writes documents to S3 when credentials are configured and to
// the local upload directory otherwise.
type Storage struct {
	cfg      StorageConfig
	client   *s3.S3
	uploader *s3manager.Uploader
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	st := &Storage{cfg: cfg}
	if cfg.Region != "" && cfg.AccessKey != "" && cfg.SecretKey != "" && cfg.Bucket != "" {
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.Region),
			Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}
		st.client = s3.New(sess)
		st.uploader = s3manager.NewUploader(sess)
		return st, nil
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return st, nil
}

func (s *Storage) IsUsingS3() bool {
	return s.uploader != nil
}

// Put stores data under key and returns its public URL.
func (s *Storage) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	key = strings.TrimPrefix(filepath.ToSlash(filepath.Clean(key)), "/")
	if key == "" || key == "." || strings.HasPrefix(key, "..") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	if s.IsUsingS3() {
		_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(s.cfg.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload to S3: %w", err)
		}
		return s.URL(key), nil
	}

	path := filepath.Join(s.cfg.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return s.URL(key), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if s.IsUsingS3() {
		_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		return err
	}
	err := os.Remove(filepath.Join(s.cfg.UploadDir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// URL returns the public URL for key.
func (s *Storage) URL(key string) string {
	if s.IsUsingS3() {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
	return fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.cfg.BaseURL, "/"), key)
}

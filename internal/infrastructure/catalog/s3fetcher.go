package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sharedConfig "accessgate/internal/shared/config"
	"accessgate/internal/shared/logger"
)

// S3Fetcher mirrors catalog YAML files from an S3 bucket to local paths. A
// local file is only downloaded when the remote object is newer, comparing
// the object's LastModified against the local mtime; after download the local
// mtime is pinned to the remote timestamp.
type S3Fetcher struct {
	client  *s3.Client
	bucket  string
	timeout time.Duration
	logger  logger.Interface
}

// NewS3Fetcher creates a fetcher for the configured bucket. A custom endpoint
// enables S3-compatible object stores.
func NewS3Fetcher(cfg *sharedConfig.CatalogConfig, logger logger.Interface) *S3Fetcher {
	options := s3.Options{
		Region: cfg.S3Region,
	}
	if cfg.S3KeyID != "" {
		options.Credentials = credentials.NewStaticCredentialsProvider(cfg.S3KeyID, cfg.S3Secret, "")
	}
	if cfg.S3Endpoint != "" {
		options.BaseEndpoint = aws.String(cfg.S3Endpoint)
		options.UsePathStyle = true
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &S3Fetcher{
		client:  s3.New(options),
		bucket:  cfg.S3Bucket,
		timeout: timeout,
		logger:  logger,
	}
}

// Sync downloads the object at key into localPath when the remote copy is
// newer than the local one. Returns whether a download happened.
func (f *S3Fetcher) Sync(ctx context.Context, key, localPath string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	head, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("failed to head s3://%s/%s: %w", f.bucket, key, err)
	}

	remoteModified := aws.ToTime(head.LastModified)
	if info, err := os.Stat(localPath); err == nil {
		if !remoteModified.After(info.ModTime()) {
			f.logger.Debugw("local catalog file is up to date", "path", localPath, "key", key)
			return false, nil
		}
	}

	obj, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return false, fmt.Errorf("failed to get s3://%s/%s: %w", f.bucket, key, err)
	}
	defer obj.Body.Close()

	if err := writeAtomic(localPath, obj.Body); err != nil {
		return false, err
	}

	// Pin the local mtime to the remote timestamp so the next staleness
	// check compares like with like.
	if err := os.Chtimes(localPath, remoteModified, remoteModified); err != nil {
		f.logger.Warnw("failed to set catalog file mtime", "path", localPath, "error", err)
	}

	f.logger.Infow("downloaded catalog file", "key", key, "path", localPath, "last_modified", remoteModified)
	return true, nil
}

func writeAtomic(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*")
	if err != nil {
		return fmt.Errorf("failed to create temp catalog file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close catalog file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace catalog file %q: %w", path, err)
	}
	return nil
}

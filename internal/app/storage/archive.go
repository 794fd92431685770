package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"media2text/internal/config"
)

// ArchiveStore keeps a copy of delivered archives.
type ArchiveStore interface {
	Put(ctx context.Context, jobID, archivePath string) (string, error)
}

// ObjectKey is the object name used for the archive of jobID.
func ObjectKey(jobID string) string {
	return path.Join("archives", jobID+".zip")
}

// MinioArchiveStore mirrors archives into a MinIO or S3 bucket.
type MinioArchiveStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinioArchiveStore connects to the configured endpoint and makes sure the
// bucket exists.
func NewMinioArchiveStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*MinioArchiveStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("created archive bucket", zap.String("bucket", cfg.Bucket))
	}

	return &MinioArchiveStore{client: client, bucket: cfg.Bucket, logger: logger}, nil
}

// Put uploads the archive and returns its object key.
func (s *MinioArchiveStore) Put(ctx context.Context, jobID, archivePath string) (string, error) {
	key := ObjectKey(jobID)
	info, err := s.client.FPutObject(ctx, s.bucket, key, archivePath, minio.PutObjectOptions{
		ContentType: "application/zip",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload archive: %w", err)
	}
	s.logger.Info("archive mirrored",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int64("size", info.Size),
	)
	return key, nil
}

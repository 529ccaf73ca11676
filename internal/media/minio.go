package media

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
}

// MinioStorage keeps uploads in one bucket, keyed folder/name.
type MinioStorage struct {
	mc     *minio.Client
	bucket string
}

func NewMinioStorage(ctx context.Context, cfg MinioConfig) (*MinioStorage, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		zap.L().Info("minio_bucket_created", zap.String("bucket", cfg.Bucket))
	}
	return &MinioStorage{mc: mc, bucket: cfg.Bucket}, nil
}

func (s *MinioStorage) Put(ctx context.Context, folder, name string, data []byte, contentType string) error {
	_, err := s.mc.PutObject(ctx, s.bucket, folder+"/"+name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

func (s *MinioStorage) Delete(ctx context.Context, folder, name string) error {
	return s.mc.RemoveObject(ctx, s.bucket, folder+"/"+name, minio.RemoveObjectOptions{})
}

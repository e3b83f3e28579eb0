package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"file-vault-api/config"
)

// ErrStorage marks any object storage failure during put or delete.
var ErrStorage = errors.New("object storage error")

type Client struct {
	logger *zap.Logger
	mc     *minio.Client
	bucket string
}

func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,

) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.BucketUploads)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %q: %w", cfg.BucketUploads, err)
	}
	if !exists {
		if err = mc.MakeBucket(ctx, cfg.BucketUploads, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %q: %w", cfg.BucketUploads, err)
		}
		logger.Info("bucket created", zap.String("bucket", cfg.BucketUploads))
	}

	logger.Info("s3 connected successfully", zap.String("bucket", cfg.BucketUploads))

	return &Client{
		logger: logger,
		mc:     mc,
		bucket: cfg.BucketUploads,
	}, nil
}

// Put streams the reader into the object under key as a multi-part upload
// (size unknown up front) and returns the byte count actually stored.
func (c *Client) Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error) {
	info, err := c.mc.PutObject(ctx, c.bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: put %s: %v", ErrStorage, key, err)
	}

	return info.Size, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, key, err)
	}

	return nil
}

// DeleteMany removes all keys in one batched call. Per-key failures are
// returned by key, everything else counts as succeeded.
func (c *Client) DeleteMany(ctx context.Context, keys []string) (succeeded []string, failed map[string]error) {
	objectsCh := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objectsCh <- minio.ObjectInfo{Key: k}
	}
	close(objectsCh)

	failed = make(map[string]error)
	for rerr := range c.mc.RemoveObjects(ctx, c.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		failed[rerr.ObjectName] = fmt.Errorf("%w: %v", ErrStorage, rerr.Err)
	}

	for _, k := range keys {
		if _, bad := failed[k]; !bad {
			succeeded = append(succeeded, k)
		}
	}

	return succeeded, failed
}

func (c *Client) GetBucket() string { return c.bucket }

package s3

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/stratusops/stratus/internal/config"
	"github.com/stratusops/stratus/internal/fault"
	"github.com/stratusops/stratus/internal/storage"
)

// Client adapts a minio connection to the storage facade.
type Client struct {
	mc     *minio.Client
	region string
}

var _ storage.ObjectStore = (*Client)(nil)

func normalizeEndpoint(endpoint string, useSSL bool) (host string, secure bool) {
	secure = useSSL
	if endpoint == "" {
		return "", secure
	}
	// If endpoint contains scheme, parse and strip it; prefer scheme over useSSL flag
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		if u, err := url.Parse(endpoint); err == nil {
			if u.Scheme == "https" {
				secure = true
			} else if u.Scheme == "http" {
				secure = false
			}
			// Keep host:port as endpoint for minio.New
			return u.Host, secure
		}
	}
	return endpoint, secure
}

func New(cfg *config.Config) (*Client, error) {
	endpoint, secure := normalizeEndpoint(cfg.S3Endpoint, cfg.S3UseSSL)
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: secure,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, err
	}
	return &Client{mc: mc, region: cfg.S3Region}, nil
}

func (c *Client) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	buckets, err := c.mc.ListBuckets(ctx)
	if err != nil {
		return nil, fault.FromObjectStore(err, "list buckets")
	}
	out := make([]storage.BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, storage.BucketInfo{Name: b.Name, Created: b.CreationDate})
	}
	return out, nil
}

func (c *Client) ListObjects(ctx context.Context, bucket string) ([]storage.ObjectInfo, error) {
	out := []storage.ObjectInfo{}
	for obj := range c.mc.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fault.FromObjectStore(obj.Err, "list objects")
		}
		out = append(out, storage.ObjectInfo{Name: obj.Key, ContentType: obj.ContentType, Size: obj.Size})
	}
	return out, nil
}

func (c *Client) MakeBucket(ctx context.Context, name string) error {
	if err := c.mc.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: c.region}); err != nil {
		return fault.FromObjectStore(err, "make bucket")
	}
	return nil
}

func (c *Client) StatObject(ctx context.Context, bucket, key string) error {
	if _, err := c.mc.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return fault.FromObjectStore(err, "stat object")
	}
	return nil
}

func (c *Client) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := c.mc.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fault.FromObjectStore(err, "get object")
	}
	defer obj.Close()
	// GetObject is lazy; read errors surface here, including missing keys.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fault.FromObjectStore(err, "read object")
	}
	return data, nil
}

func (c *Client) PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := c.mc.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return fault.FromObjectStore(err, "put object")
	}
	return nil
}

func (c *Client) RemoveObject(ctx context.Context, bucket, key string) error {
	if err := c.mc.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fault.FromObjectStore(err, "remove object")
	}
	return nil
}

// Package storage is the object-storage facade: one inbound operation maps to
// one call against the object store, with results and vendor failures
// normalized into the fault taxonomy.
package storage

import (
	"context"
	"time"

	"github.com/stratusops/stratus/internal/fault"
)

type BucketInfo struct {
	Name    string
	Created time.Time
}

type ObjectInfo struct {
	Name        string
	ContentType string
	Size        int64
}

// ObjectStore is the narrow slice of the object-store client the facade
// needs. The s3 package provides the production implementation; tests use
// in-memory fakes. Implementations return fault-classified errors.
type ObjectStore interface {
	ListBuckets(ctx context.Context) ([]BucketInfo, error)
	ListObjects(ctx context.Context, bucket string) ([]ObjectInfo, error)
	MakeBucket(ctx context.Context, name string) error
	StatObject(ctx context.Context, bucket, key string) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) error
	RemoveObject(ctx context.Context, bucket, key string) error
}

// FileInfo is the per-blob projection returned to callers.
type FileInfo struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
}

type Service struct {
	store ObjectStore
}

func New(store ObjectStore) *Service { return &Service{store: store} }

// ListBuckets returns the names of all buckets visible to the client.
func (s *Service) ListBuckets(ctx context.Context) ([]string, error) {
	buckets, err := s.store.ListBuckets(ctx)
	if err != nil {
		return nil, fault.Wrapf(err, "Failed to list buckets")
	}
	names := make([]string, 0, len(buckets))
	for _, b := range buckets {
		names = append(names, b.Name)
	}
	return names, nil
}

// ListFiles returns name and content type for every blob in the bucket.
func (s *Service) ListFiles(ctx context.Context, bucket string) ([]FileInfo, error) {
	objects, err := s.store.ListObjects(ctx, bucket)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFoundf("Bucket not found: %s", bucket)
		}
		return nil, fault.Wrapf(err, "Failed to list objects in bucket")
	}
	out := make([]FileInfo, 0, len(objects))
	for _, o := range objects {
		out = append(out, FileInfo{Name: o.Name, ContentType: o.ContentType})
	}
	return out, nil
}

func (s *Service) CreateBucket(ctx context.Context, name string) (string, error) {
	if err := s.store.MakeBucket(ctx, name); err != nil {
		// create is not idempotent here: an existing bucket surfaces the
		// vendor's conflict untouched.
		return "", fault.Wrapf(err, "Failed to create bucket")
	}
	return "Bucket created successfully.", nil
}

// Download returns the raw bytes of a blob. A missing blob is NotFound,
// never a generic failure.
func (s *Service) Download(ctx context.Context, bucket, file string) ([]byte, error) {
	data, err := s.store.GetObject(ctx, bucket, file)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFoundf("File not found.")
		}
		return nil, fault.Wrapf(err, "Failed to download file from bucket")
	}
	return data, nil
}

func (s *Service) Upload(ctx context.Context, bucket, file string, data []byte, contentType string) (string, error) {
	if err := s.store.PutObject(ctx, bucket, file, data, contentType); err != nil {
		return "", fault.Wrapf(err, "Failed to upload file to bucket")
	}
	return "File " + file + " uploaded successfully to bucket " + bucket, nil
}

// Delete removes a blob, surfacing a missing blob as NotFound by checking
// existence first (deletes on the vendor side are silently idempotent).
func (s *Service) Delete(ctx context.Context, bucket, file string) (string, error) {
	if err := s.store.StatObject(ctx, bucket, file); err != nil {
		if fault.IsNotFound(err) {
			return "", fault.NotFoundf("File not found")
		}
		return "", fault.Wrapf(err, "Failed to delete file from bucket")
	}
	if err := s.store.RemoveObject(ctx, bucket, file); err != nil {
		return "", fault.Wrapf(err, "Failed to delete file from bucket")
	}
	return "File " + file + " deleted successfully from bucket " + bucket, nil
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/homecloud/service/internal/config"
)

// MinioBackend implements Backend using a MinIO (or any S3-compatible) service.
type MinioBackend struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioBackend creates a MinIO client for cfg.Endpoint. The bucket is
// cfg.ContainerName. When cfg.PublicBase is empty, object URLs are built from
// the endpoint itself.
func NewMinioBackend(cfg config.StorageConfig) (*MinioBackend, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	publicBase := strings.TrimRight(cfg.PublicBase, "/")
	if publicBase == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBase = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.ContainerName)
	}

	return &MinioBackend{
		client:     client,
		bucket:     cfg.ContainerName,
		publicBase: publicBase,
	}, nil
}

// EnsureContainer creates the bucket if it is missing and gives new buckets a
// public-read policy so object URLs resolve in a browser.
func (s *MinioBackend) EnsureContainer(ctx context.Context) (bool, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return false, fmt.Errorf("create bucket %q: %w", s.bucket, err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return true, fmt.Errorf("set bucket policy: %w", err)
	}
	return true, nil
}

// Put streams reader to the bucket under name. size must be the exact byte count.
func (s *MinioBackend) Put(ctx context.Context, name string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", name, err)
	}
	return nil
}

// Get reads the whole object.
func (s *MinioBackend) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyMinio("get object", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyMinio("read object", err)
	}
	return data, nil
}

// Remove deletes the object. S3 treats deleting a missing key as success, so
// the object is checked first to keep the not-found contract.
func (s *MinioBackend) Remove(ctx context.Context, name string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		return classifyMinio("stat object", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return classifyMinio("remove object", err)
	}
	return nil
}

// List returns every object under prefix, recursively.
func (s *MinioBackend) List(ctx context.Context, prefix string) ([]BlobDescriptor, error) {
	blobs := make([]BlobDescriptor, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		blobs = append(blobs, BlobDescriptor{
			Name:         obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			URL:          s.publicURL(obj.Key),
		})
	}
	return blobs, nil
}

// URL returns the browser-accessible URL for name.
func (s *MinioBackend) URL(name string) (string, error) {
	return s.publicURL(name), nil
}

// publicURL joins the public base and the escaped object key, keeping "/"
// as the separator.
// For local MinIO: "http://localhost:9000/files/docs/hello%20world.txt"
func (s *MinioBackend) publicURL(name string) string {
	segments := strings.Split(name, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicBase + "/" + strings.Join(segments, "/")
}

func classifyMinio(action string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", action, notFound(err))
	}
	return fmt.Errorf("%s: %w", action, err)
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}

package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"musichub/config"
	"musichub/logger"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var minioClient *minio.Client

// InitMinio 初始化 MinIO 客户端并确保存储桶存在
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 检查存储桶是否存在，不存在则创建
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{
			Region: cfg.MinioRegion,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created bucket", logger.String("bucket", cfg.MinioBucket))
	}

	minioClient = client
	logger.Info("MinIO client initialized", logger.String("bucket", cfg.MinioBucket))
	return nil
}

// GetMinioClient 获取 MinIO 客户端实例
func GetMinioClient() *minio.Client {
	return minioClient
}

// MediaStore uploads and removes catalog media on the object store.
type MediaStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMediaStore creates a MediaStore bound to the configured bucket.
func NewMediaStore(cfg *config.Config) *MediaStore {
	return &MediaStore{
		client:    minioClient,
		bucket:    cfg.MinioBucket,
		publicURL: strings.TrimRight(cfg.MinioPublicURL, "/"),
	}
}

// ObjectName builds a collision-free object key under the given prefix,
// e.g. audio/8f14e45f-xxxx_original.mp3.
func ObjectName(prefix, originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	base := strings.TrimSuffix(filepath.Base(originalFilename), ext)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s/%s_%s%s", strings.Trim(prefix, "/"), uuid.NewString(), base, ext)
}

// Upload stores the object and returns its public URL.
func (s *MediaStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("MinIO client not initialized")
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}

	return s.URLFor(objectName), nil
}

// Remove deletes the object. Missing objects are not an error.
func (s *MediaStore) Remove(ctx context.Context, objectName string) error {
	if s.client == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove object %s: %w", objectName, err)
	}
	return nil
}

// URLFor returns the public URL for an object key.
func (s *MediaStore) URLFor(objectName string) string {
	return s.publicURL + "/" + objectName
}

// ObjectNameFromURL extracts the object key from a public URL previously
// produced by URLFor. Returns "" when the URL does not belong to this store.
func (s *MediaStore) ObjectNameFromURL(rawURL string) string {
	if strings.HasPrefix(rawURL, s.publicURL+"/") {
		return strings.TrimPrefix(rawURL, s.publicURL+"/")
	}
	// Tolerate endpoint changes: fall back to stripping the leading
	// /<bucket>/ path segment.
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimPrefix(u.Path, "/")
	if strings.HasPrefix(path, s.bucket+"/") {
		return strings.TrimPrefix(path, s.bucket+"/")
	}
	return ""
}

// Stats 统计存储桶中指定前缀下的对象
func (s *MediaStore) Stats(ctx context.Context, prefix string) (count int64, totalSize int64, err error) {
	if s.client == nil {
		return 0, 0, fmt.Errorf("MinIO client not initialized")
	}

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return 0, 0, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		count++
		totalSize += object.Size
	}
	return count, totalSize, nil
}

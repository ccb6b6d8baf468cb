package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService keeps shopping list snapshots in an S3-compatible bucket
type StorageService struct {
	client     *minio.Client
	bucketName string
	region     string
}

// Snapshot describes a stored list export
type Snapshot struct {
	Key      string
	Filename string
	Size     int64
	ETag     string
}

// NewStorageService creates a new S3 storage service
func NewStorageService(endpoint, accessKey, secretKey, bucketName, region string, useSSL bool) (*StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}

	return &StorageService{
		client:     client,
		bucketName: bucketName,
		region:     region,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{
			Region: s.region,
		})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// PutSnapshot stores a JSON list export. The object carries its download
// file name and the number of items it lists.
func (s *StorageService) PutSnapshot(ctx context.Context, key string, data []byte, itemCount int) (*Snapshot, error) {
	info, err := s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        "application/json",
		ContentDisposition: attachmentDisposition(key),
		UserMetadata:       map[string]string{"item-count": strconv.Itoa(itemCount)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	return &Snapshot{
		Key:      info.Key,
		Filename: SnapshotFilename(key),
		Size:     info.Size,
		ETag:     info.ETag,
	}, nil
}

// SnapshotURL returns a time-limited link that downloads the snapshot as an
// attachment
func (s *StorageService) SnapshotURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", attachmentDisposition(key))

	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, expiry, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return u.String(), nil
}

// ListKeys returns the object keys under prefix in lexical order, which for
// timestamped snapshots is oldest first
func (s *StorageService) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteKeys removes snapshots in one batch request
func (s *StorageService) DeleteKeys(ctx context.Context, keys []string) error {
	objectsCh := make(chan minio.ObjectInfo)

	go func() {
		defer close(objectsCh)
		for _, key := range keys {
			objectsCh <- minio.ObjectInfo{Key: key}
		}
	}()

	for err := range s.client.RemoveObjects(ctx, s.bucketName, objectsCh, minio.RemoveObjectsOptions{}) {
		if err.Err != nil {
			return fmt.Errorf("failed to delete snapshot %s: %w", err.ObjectName, err.Err)
		}
	}

	return nil
}

// SnapshotFilename is the name a snapshot is saved under when downloaded:
// shopping-lists/20261018T101500.000000000Z.json becomes
// lista-spesa-20261018T101500.json
func SnapshotFilename(key string) string {
	stamp := strings.TrimSuffix(path.Base(key), ".json")
	if i := strings.IndexByte(stamp, '.'); i >= 0 {
		stamp = stamp[:i]
	}
	return "lista-spesa-" + stamp + ".json"
}

func attachmentDisposition(key string) string {
	return fmt.Sprintf("attachment; filename=%q", SnapshotFilename(key))
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrImageNotFound = errors.New("image not found")

// MinioStore keeps images in an S3 compatible bucket under "uploads/".
// Public paths stay /uploads/<folder>/<name>; Open streams them back.
type MinioStore struct {
	client *minio.Client
	bucket string
	now    func() time.Time
}

// NewMinioStore connects to MinIO and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioStore{client: client, bucket: bucket, now: time.Now}, nil
}

func objectKey(path string) (string, bool) {
	rel, ok := relativeKey(path)
	if !ok {
		return "", false
	}
	return "uploads/" + rel, true
}

func (m *MinioStore) Save(ctx context.Context, u Upload, folder string) (string, error) {
	if err := ValidateUpload(u); err != nil {
		return "", err
	}
	if err := checkFolder(folder); err != nil {
		return "", err
	}
	name := UniqueFileName(u.Filename, m.now())
	path := URLPrefix + folder + "/" + name
	key, _ := objectKey(path)

	_, err := m.client.PutObject(ctx, m.bucket, key, u.Body, u.Size, minio.PutObjectOptions{ContentType: u.ContentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return path, nil
}

func (m *MinioStore) Owns(path string) bool {
	_, ok := objectKey(path)
	return ok
}

func (m *MinioStore) Delete(ctx context.Context, path string) (bool, error) {
	key, ok := objectKey(path)
	if !ok {
		return false, nil
	}
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, fmt.Errorf("delete object: %w", err)
	}
	return true, nil
}

// Open streams a stored image.
func (m *MinioStore) Open(ctx context.Context, path string) (io.ReadCloser, string, error) {
	key, ok := objectKey(path)
	if !ok {
		return nil, "", ErrImageNotFound
	}
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object: %w", err)
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrImageNotFound
		}
		return nil, "", fmt.Errorf("stat object: %w", err)
	}
	return obj, info.ContentType, nil
}

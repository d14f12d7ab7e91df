package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"foodgram/internal/utils"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioStorage struct {
	client   *minio.Client
	bucket   string
	endpoint string
	secure   bool
}

func NewMinio(ctx context.Context) (ObjectStorage, error) {
	endpoint := utils.GetConfig("MINIO_ENDPOINT")
	secure := utils.GetConfigBool("MINIO_USE_SSL")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(utils.GetConfig("MINIO_ACCESS_KEY"), utils.GetConfig("MINIO_SECRET_KEY"), ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect minio: %w", err)
	}

	bucket := utils.GetConfig("MINIO_BUCKET")
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check minio bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create minio bucket: %w", err)
		}
	}

	return &minioStorage{
		client:   client,
		bucket:   bucket,
		endpoint: endpoint,
		secure:   secure,
	}, nil
}

func (m *minioStorage) UploadFile(ctx context.Context, fileName string, image *Image, folder string, allowed ...string) (string, error) {
	if err := checkAllowed(image, allowed); err != nil {
		return "", err
	}

	key := objectKey(folder, fileName, image.Ext)
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(image.Data), int64(len(image.Data)), minio.PutObjectOptions{
		ContentType: image.ContentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload minio: %w", err)
	}
	return key, nil
}

func (m *minioStorage) DeleteFile(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *minioStorage) linkPrefix() string {
	scheme := "http"
	if m.secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, m.endpoint, m.bucket)
}

func (m *minioStorage) GetPublicLinkKey(objectKey string) string {
	return m.linkPrefix() + objectKey
}

func (m *minioStorage) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, m.linkPrefix()) {
		return ""
	}
	return strings.TrimPrefix(link, m.linkPrefix())
}

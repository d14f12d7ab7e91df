package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"slices"
	"strings"

	"foodgram/internal/utils"
)

var (
	AllowImage = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	ErrInvalidDataURI         = errors.New("invalid base64 data URI")
	ErrContentTypeNotAllowed  = errors.New("content type not allowed")
	ErrUnsupportedStorageType = errors.New("unsupported storage driver")
)

type (
	ObjectStorage interface {
		// UploadFile stores image under folder/fileName and returns the object key.
		UploadFile(ctx context.Context, fileName string, image *Image, folder string, allowed ...string) (string, error)
		DeleteFile(ctx context.Context, objectKey string) error
		GetPublicLinkKey(objectKey string) string
		GetObjectKeyFromLink(link string) string
	}

	Image struct {
		Data        []byte
		ContentType string
		Ext         string
	}
)

// New builds the storage backend selected by STORAGE_DRIVER. It returns a nil
// storage when the driver is "none".
func New(ctx context.Context) (ObjectStorage, error) {
	var (
		backend ObjectStorage
		err     error
	)

	switch driver := strings.ToLower(utils.GetConfig("STORAGE_DRIVER")); driver {
	case "", "none":
		return nil, nil
	case "s3":
		backend, err = NewAwsS3(ctx)
	case "minio":
		backend, err = NewMinio(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStorageType, driver)
	}
	if err != nil {
		return nil, err
	}
	return WithCircuitBreaker(backend, "object-storage"), nil
}

// DecodeBase64Image parses a "data:<mime>;base64,<payload>" URI.
func DecodeBase64Image(dataURI string) (*Image, error) {
	meta, payload, ok := strings.Cut(dataURI, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidDataURI
	}

	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if contentType == "" {
		return nil, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidDataURI
	}

	return &Image{
		Data:        data,
		ContentType: contentType,
		Ext:         extensionFor(contentType),
	}, nil
}

func checkAllowed(image *Image, allowed []string) error {
	if len(allowed) > 0 && !slices.Contains(allowed, image.ContentType) {
		return fmt.Errorf("%w: %s", ErrContentTypeNotAllowed, image.ContentType)
	}
	return nil
}

func objectKey(folder, fileName, ext string) string {
	if folder == "" {
		return fileName + ext
	}
	return strings.TrimSuffix(folder, "/") + "/" + fileName + ext
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(contentType, "/"); ok {
		return "." + sub
	}
	return ""
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"foodgram/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type awsS3 struct {
	client *s3.Client
	bucket string
	region string
}

func NewAwsS3(ctx context.Context) (ObjectStorage, error) {
	region := utils.GetConfig("AWS_S3_REGION")

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &awsS3{
		client: s3.NewFromConfig(cfg),
		bucket: utils.GetConfig("AWS_S3_BUCKET"),
		region: region,
	}, nil
}

func (s *awsS3) UploadFile(ctx context.Context, fileName string, image *Image, folder string, allowed ...string) (string, error) {
	if err := checkAllowed(image, allowed); err != nil {
		return "", err
	}

	key := objectKey(folder, fileName, image.Ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(image.Data),
		ContentType: aws.String(image.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return key, nil
}

func (s *awsS3) DeleteFile(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	return err
}

func (s *awsS3) linkPrefix() string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
}

func (s *awsS3) GetPublicLinkKey(objectKey string) string {
	return s.linkPrefix() + objectKey
}

func (s *awsS3) GetObjectKeyFromLink(link string) string {
	if !strings.HasPrefix(link, s.linkPrefix()) {
		return ""
	}
	return strings.TrimPrefix(link, s.linkPrefix())
}

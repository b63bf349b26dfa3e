package filestorage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"calibrify/pkg/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PresignExpires - время жизни ссылки на скачивание сертификата.
const PresignExpires = 15 * time.Minute

type s3ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3FileStorage хранит файлы в S3-совместимом бакете (AWS, MinIO).
type S3FileStorage struct {
	bucket    string
	client    s3ObjectAPI
	presigner s3PresignAPI
}

func NewS3FileStorage(ctx context.Context, cfg config.StorageConfig) (FileStorageInterface, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET не задан")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3FileStorage{
		bucket:    cfg.S3Bucket,
		client:    client,
		presigner: s3.NewPresignClient(client),
	}, nil
}

func (s *S3FileStorage) Save(ctx context.Context, file io.Reader, originalFileName string, prefix string) (string, error) {
	key := objectKey(time.Now(), originalFileName, prefix)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if ct := mime.TypeByExtension(filepath.Ext(originalFileName)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("не удалось загрузить файл в S3: %w", err)
	}
	return key, nil
}

func (s *S3FileStorage) Delete(ctx context.Context, filePath string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filePath),
	})
	if err != nil {
		return fmt.Errorf("не удалось удалить файл из S3: %w", err)
	}
	return nil
}

// URL возвращает presigned GET ссылку.
func (s *S3FileStorage) URL(ctx context.Context, filePath string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filePath),
	}, s3.WithPresignExpires(PresignExpires))
	if err != nil {
		return "", fmt.Errorf("не удалось подписать ссылку: %w", err)
	}
	return req.URL, nil
}

package blob

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/lendlens/internal/config"
)

// Подменяются в тестах.
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
	now = time.Now
)

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 кладёт изображения в S3-совместимое хранилище.
type S3 struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
}

// NewS3 создаёт клиент по настройкам блоб-хранилища. Пустой endpoint означает AWS.
func NewS3(ctx context.Context, cfg config.Blob) (*S3, error) {
	const op = "blob.NewS3"

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// UploadAsset сохраняет объект под случайным ключом и возвращает публичную ссылку.
func (s *S3) UploadAsset(ctx context.Context, data []byte, contentType string) (string, error) {
	const op = "blob.S3.UploadAsset"
	ct, err := imageContentType(data, contentType)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	key := objectKey(now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func objectKey(t time.Time) string {
	return fmt.Sprintf("defaulters/%d/%d/%d/%s", t.Year(), int(t.Month()), t.Day(), uuid.NewString())
}

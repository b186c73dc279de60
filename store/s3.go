package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config carries the connection settings for an S3-compatible store.
// Endpoint is optional; when set, path-style addressing is used so MinIO and
// other emulators work.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string
}

// S3ConfigFromEnv reads the connection settings from the environment.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		AccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY"),
		SecretAccessKey: os.Getenv("STORAGE_SECRET_KEY"),
		Region:          os.Getenv("STORAGE_REGION"),
		Endpoint:        os.Getenv("STORAGE_ENDPOINT"),
	}
}

// S3Store is a blob store backed by an S3-compatible service. Containers map
// to buckets.
type S3Store struct {
	client *s3.Client
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("storage credentials: %w", ErrConfig)
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("storage region: %w", ErrConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client}, nil
}

func (s *S3Store) Put(ctx context.Context, container, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(container),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("put blob %s/%s: %w", container, key, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, container, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%s/%s: %w", container, key, ErrNotFound)
		}
		return nil, fmt.Errorf("get blob %s/%s: %w", container, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s/%s: %w", container, key, err)
	}
	return data, nil
}

// EnsureContainer creates the bucket; a bucket that already exists is success.
func (s *S3Store) EnsureContainer(ctx context.Context, container string) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(container),
	})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		var exists *types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return fmt.Errorf("create container %s: %w", container, err)
	}
	return nil
}

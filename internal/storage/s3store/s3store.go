// Package s3store keeps movie posters in an S3 compatible bucket (AWS or MinIO).
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dom/movie-wallet/internal/config"
	"github.com/dom/movie-wallet/internal/domain"
	"github.com/dom/movie-wallet/internal/storage"
)

// objectAPI is the subset of *s3.Client the store needs.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// New builds an S3 client from the storage config. Static credentials are
// used when an access key is set, otherwise the default AWS chain applies.
func New(ctx context.Context, cfg config.S3Config) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newStore(client, cfg), nil
}

func newStore(client objectAPI, cfg config.S3Config) *Store {
	return &Store{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
	}
}

func publicBaseURL(cfg config.S3Config) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/")
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *Store) Upload(ctx context.Context, file *domain.ImageFile) (*domain.StoredImage, error) {
	key := storage.NewObjectKey(file.ContentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(file.Size()),
		ContentType:   aws.String(file.ContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return &domain.StoredImage{
		URL:       s.baseURL + "/" + key,
		StorageID: key,
	}, nil
}

func (s *Store) Delete(ctx context.Context, storageID string) error {
	if storageID == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", storageID, err)
	}
	return nil
}

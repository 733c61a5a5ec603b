package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appConfig "github.com/kendall-kelly/agenda-api/config"
	"github.com/m-mizutani/goerr/v2"
)

// S3API is the subset of the S3 client used by the blob store
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3BlobStore keeps blobs as objects under a store prefix of one bucket
type S3BlobStore struct {
	client S3API
	bucket string
	prefix string
}

// NewS3BlobStore wraps an existing S3 client
func NewS3BlobStore(client S3API, bucket, store string) *S3BlobStore {
	return &S3BlobStore{
		client: client,
		bucket: bucket,
		prefix: store,
	}
}

// InitS3BlobStore builds the S3 client from the application configuration
func InitS3BlobStore(ctx context.Context, cfg *appConfig.Config) (*S3BlobStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}
	// Without explicit keys the default chain (env, profile, instance role) applies
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)))
	}

	awsConfig, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		// S3-compatible stores (minio, localstack) need path-style addressing
		if cfg.AWSEndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
			o.UsePathStyle = true
		}
	})

	return NewS3BlobStore(client, cfg.AWSS3Bucket, StoreName), nil
}

func (s *S3BlobStore) Name() string {
	return "s3"
}

func (s *S3BlobStore) objectKey(key string) string {
	return path.Join(s.prefix, key)
}

// Get downloads the object for key
func (s *S3BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get object from S3", goerr.Value("key", s.objectKey(key)))
	}
	defer func() {
		if closeErr := out.Body.Close(); closeErr != nil {
			slog.Warn("failed to close S3 object body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read S3 object body", goerr.Value("key", s.objectKey(key)))
	}
	return body, nil
}

// Set overwrites the object for key
func (s *S3BlobStore) Set(ctx context.Context, key string, value []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put object to S3", goerr.Value("key", s.objectKey(key)))
	}
	return nil
}

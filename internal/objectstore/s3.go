package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the connection settings for an S3 compatible endpoint.
type S3Config struct {
	Bucket       string
	Region       string
	EndpointURL  string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// S3Store stores objects in a single bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a client from conf. Static credentials are used when an
// access key is set, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, conf S3Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(conf.Region)}
	if conf.AccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	if conf.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(conf.EndpointURL)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = conf.UsePathStyle
	})

	return &S3Store{client: client, bucket: conf.Bucket}, nil
}

// Put uploads data under key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// Get downloads the object stored under key.
func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer result.Body.Close()

	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body for %s: %w", key, err)
	}
	return body, nil
}

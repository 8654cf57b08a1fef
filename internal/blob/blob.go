// Package blob turns synthesized media bytes into addressable URLs.
package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores media bytes and returns a URL that reaches them.
type Sink interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Config holds S3-compatible storage settings.
type Config struct {
	Bucket    string
	AccountID string
	AccessKey string
	SecretKey string
	// PublicURL is the base URL the bucket is served from.
	PublicURL string
}

// S3Sink uploads media to an S3-compatible bucket (R2 in production).
type S3Sink struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewS3Sink builds an S3 client against the account's R2 endpoint.
func NewS3Sink(ctx context.Context, cfg Config) (*S3Sink, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})

	return &S3Sink{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// Put uploads the object and returns its public URL.
func (s *S3Sink) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

// DataURLSink inlines media as data URLs. Used when no bucket is configured
// and in tests; downstream consumers treat the result like any other URL.
type DataURLSink struct{}

// Put encodes the bytes as a data URL.
func (DataURLSink) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Package media turns stored photo references into URLs a client can load.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ErrInvalidReference is returned for s3:// references without a bucket or key.
var ErrInvalidReference = errors.New("invalid s3 reference")

// Config describes the S3-compatible store photos live in.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for MinIO and other S3-compatible stores
	AccessKey string // optional; the default AWS credential chain is used when empty
	SecretKey string
	URLTTL    time.Duration
}

// Resolver presigns s3://bucket/key references. Any other reference,
// such as an https URL, is returned unchanged.
type Resolver struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

// NewResolver builds a Resolver from cfg.
func NewResolver(ctx context.Context, cfg Config) (*Resolver, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Resolver{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
	}, nil
}

// ResolveURL returns a presigned GET URL for s3:// references.
func (r *Resolver) ResolveURL(ctx context.Context, ref string) (string, error) {
	bucket, key, ok, err := parseS3Ref(ref)
	if err != nil {
		return "", err
	}
	if !ok {
		return ref, nil
	}
	if bucket == "" {
		bucket = r.bucket
	}

	req, err := presignGetObject(r.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref, err)
	}
	return req.URL, nil
}

// parseS3Ref splits s3://bucket/key. ok is false when ref is not an s3
// reference. The bucket segment may be empty (s3:///key) to mean the
// configured default bucket.
func parseS3Ref(ref string) (bucket, key string, ok bool, err error) {
	rest, found := strings.CutPrefix(ref, s3Scheme)
	if !found {
		return "", "", false, nil
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || key == "" {
		return "", "", true, fmt.Errorf("%w: %q", ErrInvalidReference, ref)
	}
	return bucket, key, true, nil
}

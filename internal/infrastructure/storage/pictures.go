// Package storage signs download URLs for profile pictures kept in an S3
// compatible bucket (AWS S3, MinIO, RustFS).
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultRegion = "us-east-1"
	defaultExpiry = 15 * time.Minute
)

var (
	ErrEmptyKey   = errors.New("storage: empty object key")
	ErrInvalidKey = errors.New("storage: object key escapes the key prefix")
)

// PictureStore presigns GET requests for objects under one bucket and key
// prefix.
type PictureStore struct {
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	expiry    time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*PictureStore)

func WithLogger(log *zap.Logger) Option {
	return func(s *PictureStore) { s.log = log }
}

// WithExpiry overrides StorageConfig.PresignExpiration
func WithExpiry(d time.Duration) Option {
	return func(s *PictureStore) { s.expiry = d }
}

// NewPictureStore builds the S3 client from cfg. Static keys are optional;
// without them the default AWS credential chain applies.
func NewPictureStore(ctx context.Context, cfg *config.StorageConfig, opts ...Option) (*PictureStore, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("storage: configuration is required")
	case cfg.Bucket == "":
		return nil, errors.New("storage: bucket is required")
	case (cfg.AccessKey == "") != (cfg.SecretKey == ""):
		return nil, errors.New("storage: access key and secret key must be set together")
	}

	endpoint, err := baseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &PictureStore{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.KeyPrefix, "/"),
		expiry:    cfg.PresignExpiration,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.expiry <= 0 {
		s.expiry = defaultExpiry
	}
	return s, nil
}

// baseEndpoint is empty for AWS itself. A bare host gets https.
func baseEndpoint(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("storage: endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("storage: endpoint scheme %q", u.Scheme)
	}
	return raw, nil
}

func (s *PictureStore) Bucket() string { return s.bucket }

// objectKey joins ref under the prefix. References that climb out of it
// are rejected.
func (s *PictureStore) objectKey(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrEmptyKey
	}
	clean := path.Clean("/" + ref)[1:]
	if clean == "" || strings.Contains(ref, "..") {
		return "", ErrInvalidKey
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

// PresignGet signs a download URL for the stored picture reference. A
// reference that is already an absolute http(s) URL is returned unchanged
// and never expires.
func (s *PictureStore) PresignGet(ctx context.Context, ref string) (string, time.Time, error) {
	if u, err := url.Parse(strings.TrimSpace(ref)); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return u.String(), time.Time{}, nil
	}

	key, err := s.objectKey(ref)
	if err != nil {
		return "", time.Time{}, err
	}
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("storage: presign %s: %w", key, err)
	}

	s.log.Debug("Presigned picture URL", zap.String("bucket", s.bucket), zap.String("key", key))
	return req.URL, s.now().Add(s.expiry), nil
}

package policy

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const maxDocumentBytes = 1 << 20

// S3Config locates policy documents in a bucket. Static keys are optional;
// without them the default AWS credential chain is used.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	LinkTTL         time.Duration
}

// S3Source reads documents from S3 and links to them with presigned URLs.
type S3Source struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	prefix  string
	linkTTL time.Duration
}

func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	linkTTL := cfg.LinkTTL
	if linkTTL <= 0 {
		linkTTL = DefaultCacheTTL
	}
	return &S3Source{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		linkTTL: linkTTL,
	}, nil
}

func (s *S3Source) Fetch(ctx context.Context, docPath string) (string, string, error) {
	key := s.key(docPath)
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		return "", "", fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxDocumentBytes))
	if err != nil {
		return "", "", fmt.Errorf("read s3://%s/%s: %w", s.bucket, key, err)
	}

	link := ""
	req, err := s.presign.PresignGetObject(ctx, input, s3.WithPresignExpires(s.linkTTL))
	if err == nil {
		link = req.URL
	}
	return string(body), link, nil
}

func (s *S3Source) key(docPath string) string {
	docPath = strings.TrimPrefix(docPath, "/")
	if s.prefix == "" {
		return docPath
	}
	return s.prefix + "/" + docPath
}

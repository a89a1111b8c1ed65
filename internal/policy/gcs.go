package policy

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig locates policy documents in a Cloud Storage bucket.
type GCSConfig struct {
	Bucket          string
	Prefix          string
	CredentialsFile string
	Endpoint        string
}

// GCSSource reads documents from Cloud Storage and links to the console
// download URL, which relies on the viewer's own Google login.
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSSource(ctx context.Context, cfg GCSConfig) (*GCSSource, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSSource{client: client, bucket: cfg.Bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (g *GCSSource) Close() error {
	return g.client.Close()
}

func (g *GCSSource) Fetch(ctx context.Context, docPath string) (string, string, error) {
	object := g.object(docPath)
	r, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", "", fmt.Errorf("open gs://%s/%s: %w", g.bucket, object, err)
	}
	defer r.Close()

	body, err := io.ReadAll(io.LimitReader(r, maxDocumentBytes))
	if err != nil {
		return "", "", fmt.Errorf("read gs://%s/%s: %w", g.bucket, object, err)
	}
	return string(body), consoleLink(g.bucket, object), nil
}

func (g *GCSSource) object(docPath string) string {
	docPath = strings.TrimPrefix(docPath, "/")
	if g.prefix == "" {
		return docPath
	}
	return g.prefix + "/" + docPath
}

func consoleLink(bucket, object string) string {
	u := url.URL{
		Scheme: "https",
		Host:   "storage.cloud.google.com",
		Path:   "/" + bucket + "/" + object,
	}
	return u.String()
}

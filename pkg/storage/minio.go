package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// Config points at an S3 compatible bucket. An empty Endpoint uses the
// regular AWS resolver.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// Key returns the object key for a file name under the configured prefix.
func (c Config) Key(name string) string {
	return path.Join(c.Prefix, filepath.Base(name))
}

// ObjectURL returns a path-style URL for key, as served by MinIO.
func (c Config) ObjectURL(key string) string {
	return strings.TrimSuffix(c.Endpoint, "/") + "/" + c.Bucket + "/" + strings.TrimPrefix(key, "/")
}

// ParseURI splits an "s3://bucket/key" reference. ok is false for anything
// else, including a URI without a key.
func ParseURI(uri string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(uri, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", false
	}
	return bucket, key, true
}

// Client uploads rasters and filter outputs.
type Client struct {
	s3  *s3.Client
	cfg Config
	log logrus.FieldLogger
}

func New(ctx context.Context, cfg Config, log logrus.FieldLogger) (*Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	if cfg.Endpoint != "" {
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...any) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               cfg.Endpoint,
				SigningRegion:     cfg.Region,
				HostnameImmutable: true,
			}, nil
		})
		opts = append(opts, config.WithEndpointResolverWithOptions(customResolver))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Client{
		s3: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = cfg.Endpoint != ""
		}),
		cfg: cfg,
		log: log,
	}, nil
}

// EnsureBucket creates the bucket unless it already exists.
func (c *Client) EnsureBucket(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.cfg.Bucket),
	})
	if err == nil {
		return nil
	}
	_, err = c.s3.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(c.cfg.Bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", c.cfg.Bucket, err)
	}
	c.log.WithField("bucket", c.cfg.Bucket).Info("Created bucket")
	return nil
}

// Upload stores the file at fpath and returns its key.
func (c *Client) Upload(ctx context.Context, fpath string) (string, error) {
	file, err := os.Open(fpath)
	if err != nil {
		return "", fmt.Errorf("could not open file %s: %w", fpath, err)
	}
	defer file.Close()

	key := c.cfg.Key(fpath)
	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType(fpath)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", fpath, err)
	}
	c.log.WithFields(logrus.Fields{"file": fpath, "key": key}).Info("uploaded")
	return key, nil
}

// UploadAll makes sure the bucket exists and uploads every path. It keeps
// going past individual failures and returns the first one.
func (c *Client) UploadAll(ctx context.Context, paths []string) error {
	if err := c.EnsureBucket(ctx); err != nil {
		return err
	}
	var first error
	for _, p := range paths {
		if _, err := c.Upload(ctx, p); err != nil {
			c.log.WithError(err).Warn("upload failed")
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Download writes the object at key to dst.
func (c *Client) Download(ctx context.Context, key, dst string) error {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, out.Body); err != nil {
		f.Close()
		return fmt.Errorf("download %s: %w", key, err)
	}
	return f.Close()
}

// Fetch downloads key into dir, keeping the object's base name, and returns
// the local path.
func (c *Client) Fetch(ctx context.Context, key, dir string) (string, error) {
	dst := filepath.Join(dir, path.Base(key))
	if err := c.Download(ctx, key, dst); err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{"key": key, "file": dst}).Info("downloaded")
	return dst, nil
}

func contentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".ppm":
		return "image/x-portable-pixmap"
	}
	return "application/octet-stream"
}

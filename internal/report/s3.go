package report

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/selimozcann/StoreHunter/internal/awscfg"
)

// PutObjectAPI is the subset of the S3 client used for uploads.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the region, endpoint and credentials of the S3 client.
// Bucket and prefix belong to the S3Uploader.
type S3Config struct {
	Region   string
	Endpoint string
	Creds    awscfg.Credentials
}

// S3Uploader stores report documents in a bucket.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Client creates an S3 client; a custom endpoint switches to path-style
// addressing for S3 compatible stores such as MinIO.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := awscfg.Load(ctx, cfg.Region, cfg.Creds)
	if err != nil {
		return nil, err
	}
	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(awsCfg, opts...), nil
}

// NewS3Uploader wraps client. A nil logger falls back to slog.Default.
func NewS3Uploader(client PutObjectAPI, bucket, prefix string, logger *slog.Logger) (*S3Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 upload requires a bucket")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger}, nil
}

// Key names the object for a report generated at at with extension ext.
func (u *S3Uploader) Key(at time.Time, ext string) string {
	name := "storehunter-" + at.UTC().Format("20060102T150405Z") + "." + strings.TrimPrefix(ext, ".")
	return path.Join(u.prefix, name)
}

// Upload stores data under key and returns its s3:// location.
func (u *S3Uploader) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload report to S3: %w", err)
	}
	location := fmt.Sprintf("s3://%s/%s", u.bucket, key)
	u.logger.Info("uploaded report", "location", location, "size_bytes", len(data))
	return location, nil
}

// UploadDocument encodes doc and uploads it as JSON.
func (u *S3Uploader) UploadDocument(ctx context.Context, doc Document, at time.Time) (string, error) {
	data, err := Encode(doc)
	if err != nil {
		return "", err
	}
	return u.Upload(ctx, u.Key(at, "json"), "application/json", data)
}

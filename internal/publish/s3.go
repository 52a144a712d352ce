package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cenkalti/backoff/v4"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/exporter"
)

// DefaultMaxElapsed bounds the retries of a single object upload
const DefaultMaxElapsed = 2 * time.Minute

// ObjectPutter is the subset of the S3 client the publisher uses
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads an output set to an S3-compatible bucket
type S3Publisher struct {
	client     ObjectPutter
	bucket     string
	prefix     string
	maxElapsed time.Duration
	interval   time.Duration
	log        *slog.Logger
}

// NewS3Publisher creates a publisher from the publish configuration. Static
// credentials are used when both keys are set, the default chain otherwise.
func NewS3Publisher(ctx context.Context, cfg config.PublishConfig, log *slog.Logger) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, apperrors.NewConfigError("publish bucket is required", nil)
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load AWS config", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	if cfg.Endpoint != "" && log != nil {
		log.Info("using custom S3 endpoint", slog.String("endpoint", cfg.Endpoint))
	}

	return NewWithClient(client, cfg, log), nil
}

// NewWithClient creates a publisher around an existing client
func NewWithClient(client ObjectPutter, cfg config.PublishConfig, log *slog.Logger) *S3Publisher {
	if log == nil {
		log = slog.Default()
	}
	maxElapsed := cfg.MaxElapsed
	if maxElapsed <= 0 {
		maxElapsed = DefaultMaxElapsed
	}
	return &S3Publisher{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     strings.Trim(cfg.Prefix, "/"),
		maxElapsed: maxElapsed,
		log:        log.With(slog.String("component", "publisher")),
	}
}

// Publish uploads every artifact below dir, keyed by its relative path
func (p *S3Publisher) Publish(ctx context.Context, dir string, artifacts []exporter.Artifact) error {
	start := time.Now()
	var total int64
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(a.Path)))
		if err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("read artifact %s", a.Path), err)
		}

		key := p.Key(a.Path)
		if err := p.putWithRetry(ctx, key, data); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return apperrors.NewNetworkError(fmt.Sprintf("upload s3://%s/%s", p.bucket, key), err)
		}
		total += int64(len(data))
	}

	p.log.InfoContext(ctx, "output set published",
		slog.String("bucket", p.bucket),
		slog.String("prefix", p.prefix),
		slog.Int("objects", len(artifacts)),
		slog.Int64("bytes", total),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Key returns the object key of an artifact path
func (p *S3Publisher) Key(rel string) string {
	if p.prefix == "" {
		return rel
	}
	return path.Join(p.prefix, rel)
}

func (p *S3Publisher) putWithRetry(ctx context.Context, key string, data []byte) error {
	exp := backoff.NewExponentialBackOff()
	exp.MaxElapsedTime = p.maxElapsed
	if p.interval > 0 {
		exp.InitialInterval = p.interval
	}
	policy := backoff.WithContext(exp, ctx)

	attempt := 0
	operation := func() error {
		attempt++
		input := &s3.PutObjectInput{
			Bucket:      aws.String(p.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(ContentType(key)),
		}
		if strings.HasSuffix(key, exporter.GzipSuffix) {
			input.ContentEncoding = aws.String("gzip")
		}

		_, err := p.client.PutObject(ctx, input)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return backoff.Permanent(err)
		}
		p.log.WarnContext(ctx, "s3 upload failed",
			slog.String("key", key),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
		return err
	}

	return backoff.Retry(operation, policy)
}

// ContentType maps an artifact name to the content type it is served with
func ContentType(name string) string {
	name = strings.TrimSuffix(name, exporter.GzipSuffix)
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Package minio stores raw markup of list pages that produced no locations so
// they can be inspected by hand.
package minio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

const keyPrefix = "failed_pages"

// Options configures the connection to an S3-compatible endpoint.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// Archiver writes page snapshots to a bucket.
// It implements pipeline.PageArchiver.
type Archiver struct {
	client *minio.Client
	bucket string
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewArchiver connects to the endpoint. The bucket is created by EnsureBucket.
func NewArchiver(opts Options, clock clockwork.Clock, logger *slog.Logger) (*Archiver, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required")
	}
	if opts.Bucket == "" {
		return nil, fmt.Errorf("SNAPSHOT_BUCKET is required")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Archiver{client: client, bucket: opts.Bucket, clock: clock, logger: logger}, nil
}

// EnsureBucket creates the snapshot bucket when it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", a.bucket, err)
	}
	a.logger.Info("snapshot bucket created", "bucket", a.bucket)
	return nil
}

// Archive stores markup under a dated key, tagged with the page URL and failure kind.
func (a *Archiver) Archive(ctx context.Context, pageURL, markup string, cause error) error {
	kind := domain.ParseErrorKind(cause)
	key := objectKey(a.clock, kind, uuid.NewString())

	_, err := a.client.PutObject(ctx, a.bucket, key,
		strings.NewReader(markup), int64(len(markup)),
		minio.PutObjectOptions{
			ContentType:  "text/html; charset=utf-8",
			UserMetadata: snapshotMetadata(pageURL, kind),
		},
	)
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", key, err)
	}
	a.logger.Info("page snapshot archived", "bucket", a.bucket, "key", key, "url", pageURL)
	return nil
}

func objectKey(clock clockwork.Clock, kind, id string) string {
	return fmt.Sprintf("%s/%s/%s/%s.html", keyPrefix, clock.Now().UTC().Format("2006-01-02"), kind, id)
}

func snapshotMetadata(pageURL, kind string) map[string]string {
	return map[string]string{
		"source-url": pageURL,
		"cause":      kind,
	}
}

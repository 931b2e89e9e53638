// Package outputstore copies finished renders into a GCS bucket.
package outputstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Store uploads files under a fixed prefix of one bucket.
type Store struct {
	gcs    *storage.Client
	bucket string
	prefix string
}

func New(gcs *storage.Client, bucket, prefix string) *Store {
	return &Store{
		gcs:    gcs,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// ParseURL splits a gs://bucket/prefix URL.
func ParseURL(url string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(url, "gs://")
	if rest == url {
		return "", "", fmt.Errorf("%q is not a gs:// URL", url)
	}
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("%q has no bucket", url)
	}
	if len(parts) == 1 {
		return parts[0], "", nil
	}
	return parts[0], strings.Trim(parts[1], "/"), nil
}

// ObjectName is where a local file named localPath is stored.
func (s *Store) ObjectName(localPath string) string {
	return path.Join(s.prefix, filepath.Base(localPath))
}

func contentType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// Upload copies the local file into the bucket and returns its gs:// URL.
func (s *Store) Upload(ctx context.Context, localPath string) (string, error) {
	tracer := otel.Tracer("checkertrace/outputstore")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Store.Upload")
	defer span.End()

	name := s.ObjectName(localPath)
	span.SetAttributes(
		attribute.String("bucket", s.bucket),
		attribute.String("object", name),
	)

	f, err := os.Open(localPath)
	if err != nil {
		err := fmt.Errorf("while opening %s: %w", localPath, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	defer f.Close()

	// Cancelling the writer's context abandons the upload.  Closing it
	// would commit whatever was copied so far.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.gcs.Bucket(s.bucket).Object(name).NewWriter(wctx)
	w.ContentType = contentType(name)

	n, err := io.Copy(w, f)
	if err != nil {
		cancel()
		err := fmt.Errorf("while writing object: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if err := w.Close(); err != nil {
		err := fmt.Errorf("while closing object writer: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(attribute.Int64("bytes", n))
	span.SetStatus(codes.Ok, "")
	return fmt.Sprintf("gs://%s/%s", s.bucket, name), nil
}

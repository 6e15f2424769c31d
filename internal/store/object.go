package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/minio/minio-go/v7"

	"github.com/rickgao/pricesync/internal/table"
)

// Object stores the history as one CSV object in an S3-compatible bucket.
type Object struct {
	client *minio.Client
	bucket string
	key    string
}

// NewObject creates an object store.
func NewObject(client *minio.Client, bucket, key string) *Object {
	return &Object{client: client, bucket: bucket, key: key}
}

func (o *Object) Name() string { return "s3://" + o.bucket + "/" + o.key }

func (o *Object) Read(ctx context.Context) (*table.Table, error) {
	obj, err := o.client.GetObject(ctx, o.bucket, o.key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classifyS3(err)
	}
	defer obj.Close()

	// GetObject is lazy; the request happens on first read.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, classifyS3(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNotFound
	}
	return decodeCSV(bytes.NewReader(data))
}

// Replace uploads the full table in a single PutObject; S3 never exposes a
// partially written object.
func (o *Object) Replace(ctx context.Context, t *table.Table) error {
	data, err := encodeCSV(t)
	if err != nil {
		return err
	}

	_, err = o.client.PutObject(ctx, o.bucket, o.key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv"})
	if err != nil {
		return fmt.Errorf("put %s: %w", o.Name(), classifyS3(err))
	}
	return nil
}

// classifyS3 maps a missing key to ErrNotFound and marks throttling, server
// errors and network faults transient.
func classifyS3(err error) error {
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey":
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return transient(err, true)
	}

	var nerr net.Error
	return transient(err, errors.As(err, &nerr))
}

package iobackend

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
)

// GCSBackend reads an MXF track file from a Google Cloud Storage bucket
// via ranged reads.
type GCSBackend struct {
	client *storage.Client
	bucket string
	object string
}

func NewGCSBackend(client *storage.Client, bucket, object string) *GCSBackend {
	return &GCSBackend{client: client, bucket: bucket, object: object}
}

func (b *GCSBackend) ReadAt(p []byte, off int64) (int, error) {
	ctx := context.Background()
	r, err := b.client.Bucket(b.bucket).Object(b.object).NewRangeReader(ctx, off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	defer r.Close()
	n, err := io.ReadFull(r, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (b *GCSBackend) Size(ctx context.Context) (int64, error) {
	attrs, err := b.client.Bucket(b.bucket).Object(b.object).Attrs(ctx)
	if err != nil {
		return 0, err
	}
	return attrs.Size, nil
}

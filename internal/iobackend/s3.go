package iobackend

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Backend reads an MXF track file stored as a single S3 object via
// ranged GetObject calls, satisfying ReaderAt without downloading the
// whole (potentially many-GiB) file up front.
type S3Backend struct {
	client *s3.Client
	bucket string
	key    string
}

func NewS3Backend(client *s3.Client, bucket, key string) *S3Backend {
	return &S3Backend{client: client, bucket: bucket, key: key}
}

func (b *S3Backend) ReadAt(p []byte, off int64) (int, error) {
	ctx := context.Background()
	rng := fmt.Sprintf("bytes=%d-%d", off, off+int64(len(p))-1)
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
		Range:  aws.String(rng),
	})
	if err != nil {
		return 0, err
	}
	defer out.Body.Close()
	n, err := io.ReadFull(out.Body, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (b *S3Backend) Size(ctx context.Context) (int64, error) {
	out, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(b.bucket), Key: aws.String(b.key)})
	if err != nil {
		return 0, err
	}
	if out.ContentLength == nil {
		return 0, fmt.Errorf("iobackend: S3 object %s/%s has no content-length", b.bucket, b.key)
	}
	return *out.ContentLength, nil
}

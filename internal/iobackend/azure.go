package iobackend

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
)

// AzureBackend reads an MXF track file from an Azure Blob Storage
// container via ranged downloads.
type AzureBackend struct {
	client    *azblob.Client
	container string
	blobName  string
}

func NewAzureBackend(client *azblob.Client, container, blobName string) *AzureBackend {
	return &AzureBackend{client: client, container: container, blobName: blobName}
}

func (b *AzureBackend) ReadAt(p []byte, off int64) (int, error) {
	ctx := context.Background()
	count := int64(len(p))
	resp, err := b.client.DownloadStream(ctx, b.container, b.blobName, &azblob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: off, Count: count},
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.ReadFull(resp.Body, p)
	if err == io.ErrUnexpectedEOF {
		err = io.EOF
	}
	return n, err
}

func (b *AzureBackend) Size(ctx context.Context) (int64, error) {
	props, err := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(b.blobName).GetProperties(ctx, nil)
	if err != nil {
		return 0, err
	}
	if props.ContentLength == nil {
		return 0, nil
	}
	return *props.ContentLength, nil
}

package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureAssetFetcher reads assets from a blob container; the catalog path minus
// its leading slash is the blob name.
type AzureAssetFetcher struct {
	client    *azblob.Client
	container string
}

func NewAzureAssetFetcher(accountName, accountKey, container string) (*AzureAssetFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &AzureAssetFetcher{client: client, container: container}, nil
}

func (s *AzureAssetFetcher) Fetch(ctx context.Context, assetPath string) (*Blob, error) {
	p, err := cleanPath(assetPath)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.DownloadStream(ctx, s.container, blobName(p), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := resp.Body
	defer body.Close()
	return readBlob(p, body)
}

func blobName(p string) string {
	return strings.TrimPrefix(p, "/")
}

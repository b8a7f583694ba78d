package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/homecloud/service/internal/config"
)

// AzureBackend implements Backend on top of Azure Blob Storage.
type AzureBackend struct {
	client    *azblob.Client
	container string
}

// NewAzureBackend creates an Azure Blob client. A connection string takes
// priority over an account key; managed identity is used when neither is set.
// No request is made until the first operation.
func NewAzureBackend(cfg config.StorageConfig) (*AzureBackend, error) {
	var (
		client *azblob.Client
		err    error
	)

	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
		if err != nil {
			return nil, fmt.Errorf("create client from connection string: %w", err)
		}
	case cfg.AccountName != "" && cfg.AccountKey != "":
		cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("create shared key credential: %w", err)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL(cfg.AccountName), cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
	case cfg.AccountName != "" && cfg.UseManagedIdentity:
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("create azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL(cfg.AccountName), cred, nil)
		if err != nil {
			return nil, fmt.Errorf("create client: %w", err)
		}
	default:
		return nil, errors.New("no azure authentication method provided")
	}

	return &AzureBackend{client: client, container: cfg.ContainerName}, nil
}

func serviceURL(accountName string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)
}

// EnsureContainer creates the container; ContainerAlreadyExists is not an error.
func (b *AzureBackend) EnsureContainer(ctx context.Context) (bool, error) {
	_, err := b.client.CreateContainer(ctx, b.container, nil)
	if err == nil {
		return true, nil
	}
	if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return false, nil
	}
	return false, err
}

// Put uploads reader as a block blob, overwriting any existing blob.
func (b *AzureBackend) Put(ctx context.Context, name string, reader io.Reader, _ int64, contentType string) error {
	_, err := b.client.UploadStream(ctx, b.container, name, reader, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	})
	if err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}
	return nil
}

// Get downloads the whole blob.
func (b *AzureBackend) Get(ctx context.Context, name string) ([]byte, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, name, nil)
	if err != nil {
		return nil, classifyAzure("download blob", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob content: %w", err)
	}
	return data, nil
}

// Remove deletes the blob.
func (b *AzureBackend) Remove(ctx context.Context, name string) error {
	if _, err := b.client.DeleteBlob(ctx, b.container, name, nil); err != nil {
		return classifyAzure("delete blob", err)
	}
	return nil
}

// List pages through every blob whose name starts with prefix.
func (b *AzureBackend) List(ctx context.Context, prefix string) ([]BlobDescriptor, error) {
	opts := &azblob.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	blobs := make([]BlobDescriptor, 0)
	pager := b.client.NewListBlobsFlatPager(b.container, opts)
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs: %w", err)
		}

		for _, item := range resp.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			d := BlobDescriptor{Name: *item.Name}
			if props := item.Properties; props != nil {
				if props.ContentLength != nil {
					d.Size = *props.ContentLength
				}
				if props.LastModified != nil {
					d.LastModified = *props.LastModified
				}
			}
			d.URL, _ = b.URL(d.Name)
			blobs = append(blobs, d)
		}
	}
	return blobs, nil
}

// URL returns the blob URL as built by the SDK client.
func (b *AzureBackend) URL(name string) (string, error) {
	return b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(name).URL(), nil
}

// classifyAzure wraps err with ErrNotFound when Azure reports a missing blob or container.
func classifyAzure(action string, err error) error {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("%s: %w", action, notFound(err))
	}
	return fmt.Errorf("%s: %w", action, err)
}

package storage

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homecloud/service/internal/config"
)

const azuriteConnectionString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1"

func TestConnect_SelectsProvider(t *testing.T) {
	b, err := Connect(config.StorageConfig{Provider: config.ProviderMemory, ContainerName: "files"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Connect(config.StorageConfig{Provider: config.ProviderAzure, ConnectionString: azuriteConnectionString, ContainerName: "files"})
	require.NoError(t, err)
	assert.IsType(t, &AzureBackend{}, b)

	b, err = Connect(config.StorageConfig{
		Provider:      config.ProviderMinio,
		Endpoint:      "localhost:9000",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
		ContainerName: "files",
	})
	require.NoError(t, err)
	assert.IsType(t, &MinioBackend{}, b)

	_, err = Connect(config.StorageConfig{Provider: "ftp", ContainerName: "files"})
	assert.Error(t, err)
}

func TestNewAzureBackend_ConnectionString(t *testing.T) {
	b, err := NewAzureBackend(config.StorageConfig{ConnectionString: azuriteConnectionString, ContainerName: "files"})
	require.NoError(t, err)

	url, err := b.URL("a.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://127.0.0.1:10000/devstoreaccount1"), url)
	assert.True(t, strings.HasSuffix(url, "/files/a.txt"), url)
}

func TestNewAzureBackend_SharedKey(t *testing.T) {
	b, err := NewAzureBackend(config.StorageConfig{AccountName: "acct", AccountKey: "a2V5", ContainerName: "files"})
	require.NoError(t, err)

	url, err := b.URL("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "https://acct.blob.core.windows.net/files/a.txt", url)
}

func TestNewAzureBackend_NoCredentials(t *testing.T) {
	_, err := NewAzureBackend(config.StorageConfig{ContainerName: "files"})
	assert.Error(t, err)
}

func azureError(status int, code string) error {
	req := httptest.NewRequest(http.MethodGet, "https://acct.blob.core.windows.net/files/a.txt", nil)
	return &azcore.ResponseError{
		ErrorCode:  code,
		StatusCode: status,
		RawResponse: &http.Response{
			Status:     http.StatusText(status),
			StatusCode: status,
			Header:     http.Header{},
			Body:       http.NoBody,
			Request:    req,
		},
	}
}

func TestClassifyAzure(t *testing.T) {
	err := classifyAzure("download blob", azureError(http.StatusNotFound, "BlobNotFound"))
	assert.ErrorIs(t, err, ErrNotFound)

	err = classifyAzure("download blob", azureError(http.StatusNotFound, "ContainerNotFound"))
	assert.ErrorIs(t, err, ErrNotFound)

	err = classifyAzure("download blob", azureError(http.StatusForbidden, "AuthorizationFailure"))
	assert.NotErrorIs(t, err, ErrNotFound)

	var respErr *azcore.ResponseError
	assert.True(t, errors.As(err, &respErr))
}

func TestMinioBackend_URL(t *testing.T) {
	b, err := NewMinioBackend(config.StorageConfig{
		Endpoint:      "localhost:9000",
		AccessKey:     "minioadmin",
		SecretKey:     "minioadmin",
		ContainerName: "files",
	})
	require.NoError(t, err)
	url, _ := b.URL("docs/a.pdf")
	assert.Equal(t, "http://localhost:9000/files/docs/a.pdf", url)
	url, _ = b.URL("docs/hello world.txt")
	assert.Equal(t, "http://localhost:9000/files/docs/hello%20world.txt", url)
	url, _ = b.URL("100%.txt")
	assert.Equal(t, "http://localhost:9000/files/100%25.txt", url)

	b, err = NewMinioBackend(config.StorageConfig{
		Endpoint:      "s3.example.com",
		AccessKey:     "key",
		SecretKey:     "secret",
		ContainerName: "files",
		UseSSL:        true,
		PublicBase:    "https://cdn.example.com/files/",
	})
	require.NoError(t, err)
	url, _ = b.URL("a.txt")
	assert.Equal(t, "https://cdn.example.com/files/a.txt", url)
}

func TestClassifyMinio(t *testing.T) {
	err := classifyMinio("get object", minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})
	assert.ErrorIs(t, err, ErrNotFound)

	err = classifyMinio("get object", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden})
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPublicReadPolicy(t *testing.T) {
	policy := publicReadPolicy("files")
	assert.Contains(t, policy, `"arn:aws:s3:::files/*"`)
	assert.Contains(t, policy, `"s3:GetObject"`)
}

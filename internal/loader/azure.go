// Azure Blob Storage support for rossby: a dataset path of the form
// azblob://container/blob is downloaded to a local temp file before
// FromNetCDF opens it, the same "resolve to a local handle, then hand
// off to the format reader" split the teacher uses between
// core.MakeAzureConnection and vds.NewVDSHandle.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/rossby-project/rossby/internal/rerror"
)

const azblobScheme = "azblob://"

// IsAzureBlobPath reports whether path names a remote blob rather than
// a local file.
func IsAzureBlobPath(path string) bool {
	return strings.HasPrefix(path, azblobScheme)
}

// FetchAzureBlob downloads container/blob named by an azblob://
// path using accountURL and sasToken, writing it to a temp file and
// returning that file's path. The caller is responsible for deleting
// the returned path once the dataset has been loaded.
func FetchAzureBlob(ctx context.Context, accountURL, sasToken, path string) (string, error) {
	container, blobName, err := parseAzureBlobPath(path)
	if err != nil {
		return "", err
	}

	serviceURL := accountURL
	if sasToken != "" {
		serviceURL = accountURL + "?" + strings.TrimPrefix(sasToken, "?")
	}

	client, err := azblob.NewClientWithNoCredential(serviceURL, nil)
	if err != nil {
		return "", &rerror.ConfigError{Message: "creating azure blob client: " + err.Error()}
	}

	tmp, err := os.CreateTemp("", "rossby-*.nc")
	if err != nil {
		return "", &rerror.ConfigError{Message: "creating temp file: " + err.Error()}
	}
	defer tmp.Close()

	get, err := client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		os.Remove(tmp.Name())
		return "", &rerror.ConfigError{Message: fmt.Sprintf("downloading blob %s/%s: %s", container, blobName, err)}
	}
	defer get.Body.Close()

	if _, err := io.Copy(tmp, get.Body); err != nil {
		os.Remove(tmp.Name())
		return "", &rerror.ConfigError{Message: "writing downloaded blob to disk: " + err.Error()}
	}

	return tmp.Name(), nil
}

func parseAzureBlobPath(path string) (container, blob string, err error) {
	trimmed := strings.TrimPrefix(path, azblobScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &rerror.ConfigError{Message: "azblob path must be azblob://container/blob, got: " + path}
	}
	return parts[0], parts[1], nil
}

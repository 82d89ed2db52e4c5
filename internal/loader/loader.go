package loader

import (
	"context"
	"os"

	"github.com/rossby-project/rossby/internal/dataset"
)

// Load resolves path to a local NetCDF file (downloading it first if it
// names an azblob:// blob) and reads it into a dataset.LoaderResult.
// accountURL/sasToken are only consulted when path is a remote blob.
func Load(ctx context.Context, path, accountURL, sasToken string) (dataset.LoaderResult, error) {
	localPath := path
	if IsAzureBlobPath(path) {
		downloaded, err := FetchAzureBlob(ctx, accountURL, sasToken, path)
		if err != nil {
			return dataset.LoaderResult{}, err
		}
		defer os.Remove(downloaded)
		localPath = downloaded
	}
	return FromNetCDF(localPath)
}

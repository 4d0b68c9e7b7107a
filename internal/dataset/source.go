package dataset

import (
	"context"
	"io"
	"os"

	minioclient "advisory-service/internal/database/minio"
)

// FileSource opens datasets from the local filesystem.
type FileSource struct{}

func (FileSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// MinioSource opens datasets as objects in a MinIO bucket. The object key
// is the configured path of the dataset.
type MinioSource struct {
	Client *minioclient.MinioClient
	Bucket string
}

func (s MinioSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Client.GetFile(ctx, s.Bucket, name)
}

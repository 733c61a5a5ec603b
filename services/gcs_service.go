package services

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// objectStorage is the part of a Cloud Storage bucket the blob store needs
type objectStorage interface {
	NewReader(ctx context.Context, name string) (io.ReadCloser, error)
	NewWriter(ctx context.Context, name, contentType string) io.WriteCloser
}

type gcsBucket struct {
	bucket *storage.BucketHandle
}

func (b *gcsBucket) NewReader(ctx context.Context, name string) (io.ReadCloser, error) {
	return b.bucket.Object(name).NewReader(ctx)
}

func (b *gcsBucket) NewWriter(ctx context.Context, name, contentType string) io.WriteCloser {
	w := b.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType
	return w
}

// GCSBlobStore keeps blobs as Cloud Storage objects under a store prefix
type GCSBlobStore struct {
	objects objectStorage
	prefix  string
}

// InitGCSBlobStore creates a Cloud Storage client using application default credentials
func InitGCSBlobStore(ctx context.Context, bucketName string) (*GCSBlobStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return newGCSBlobStore(&gcsBucket{bucket: client.Bucket(bucketName)}, StoreName), nil
}

func newGCSBlobStore(objects objectStorage, store string) *GCSBlobStore {
	return &GCSBlobStore{objects: objects, prefix: store}
}

func (s *GCSBlobStore) Name() string {
	return "gcs"
}

func (s *GCSBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	name := path.Join(s.prefix, key)
	reader, err := s.objects.NewReader(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.Value("key", name))
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object body", goerr.Value("key", name))
	}
	return body, nil
}

func (s *GCSBlobStore) Set(ctx context.Context, key string, value []byte, contentType string) error {
	name := path.Join(s.prefix, key)
	writer := s.objects.NewWriter(ctx, name, contentType)
	if _, err := writer.Write(value); err != nil {
		_ = writer.Close()
		return goerr.Wrap(err, "failed to write object", goerr.Value("key", name))
	}
	// The upload is committed on Close
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit object", goerr.Value("key", name))
	}
	return nil
}

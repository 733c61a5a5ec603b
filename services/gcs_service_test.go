package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects  map[string][]byte
	readErr  error
	writeErr error
}

type fakeObjectWriter struct {
	bytes.Buffer
	commit func([]byte) error
}

func (w *fakeObjectWriter) Close() error {
	return w.commit(w.Bytes())
}

func (f *fakeObjects) NewReader(ctx context.Context, name string) (io.ReadCloser, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	body, ok := f.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *fakeObjects) NewWriter(ctx context.Context, name, contentType string) io.WriteCloser {
	return &fakeObjectWriter{commit: func(data []byte) error {
		if f.writeErr != nil {
			return f.writeErr
		}
		f.objects[name] = append([]byte(nil), data...)
		return nil
	}}
}

func TestGCSBlobStoreRoundTrip(t *testing.T) {
	objects := &fakeObjects{objects: map[string][]byte{}}
	store := newGCSBlobStore(objects, StoreName)
	ctx := context.Background()

	assert.Equal(t, "gcs", store.Name())

	value, err := store.Get(ctx, DocumentKey)
	require.NoError(t, err)
	assert.Nil(t, value)

	require.NoError(t, store.Set(ctx, DocumentKey, []byte(`[{"id":"1"}]`), DocumentContentType))
	assert.Contains(t, objects.objects, "agenda/appointments.json")

	value, err = store.Get(ctx, DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"1"}]`, string(value))
}

func TestGCSBlobStoreErrors(t *testing.T) {
	objects := &fakeObjects{
		objects:  map[string][]byte{},
		readErr:  errors.New("permission denied"),
		writeErr: errors.New("quota exceeded"),
	}
	store := newGCSBlobStore(objects, StoreName)
	ctx := context.Background()

	_, err := store.Get(ctx, DocumentKey)
	assert.Error(t, err)

	err = store.Set(ctx, DocumentKey, []byte(`[]`), DocumentContentType)
	assert.Error(t, err, "commit failures surface on Close")
	assert.Empty(t, objects.objects)
}

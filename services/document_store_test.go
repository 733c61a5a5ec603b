package services

import (
	"context"
	"errors"
	"testing"

	"github.com/kendall-kelly/agenda-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentStoreReadFallsThrough(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryBlobStore("s3")
	primary.GetErr = errors.New("bucket unreachable")
	fallback := NewMemoryBlobStore("gist")
	fallback.Put(DocumentKey, []byte("["+sampleRecord+"]"))

	store := NewDocumentStore(primary, fallback)
	result := store.Read(ctx)

	assert.Equal(t, "gist", result.Mode)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "r1", result.Items[0].ID)
}

func TestDocumentStoreReadMissingDocumentIsEmpty(t *testing.T) {
	store := NewDocumentStore(NewMemoryBlobStore("s3"))
	result := store.Read(context.Background())

	assert.Equal(t, "s3", result.Mode)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
}

func TestDocumentStoreReadAllBackendsFail(t *testing.T) {
	first := NewMemoryBlobStore("s3")
	first.GetErr = errors.New("down")
	last := NewMemoryBlobStore("gist")
	last.GetErr = errors.New("down")

	result := NewDocumentStore(first, last).Read(context.Background())

	assert.Equal(t, "gist-error", result.Mode)
	assert.Empty(t, result.Items)
}

func TestDocumentStoreNoBackends(t *testing.T) {
	store := NewDocumentStore(nil, nil)
	ctx := context.Background()

	assert.Empty(t, store.Backends())
	result := store.Read(ctx)
	assert.Equal(t, ModeNone, result.Mode)
	assert.Empty(t, result.Items)

	write, err := store.Write(ctx, []models.Appointment{{ID: "x"}})
	assert.ErrorIs(t, err, models.ErrNoStorageAvailable)
	assert.Equal(t, ModeNone, write.Mode)
}

func TestDocumentStoreWriteTargetsPrimaryOnly(t *testing.T) {
	ctx := context.Background()
	primary := NewMemoryBlobStore("s3")
	fallback := NewMemoryBlobStore("gist")
	store := NewDocumentStore(primary, fallback)

	result, err := store.Write(ctx, []models.Appointment{{ID: "x", Cliente: "C"}})
	require.NoError(t, err)
	assert.Equal(t, "s3", result.Mode)
	assert.True(t, result.Confirmed)

	_, ok := primary.Raw(DocumentKey)
	assert.True(t, ok)
	_, ok = fallback.Raw(DocumentKey)
	assert.False(t, ok, "fallback backends are never written")

	read := store.Read(ctx)
	require.Len(t, read.Items, 1)
	assert.Equal(t, "x", read.Items[0].ID)
}

func TestDocumentStoreWriteFailure(t *testing.T) {
	primary := NewMemoryBlobStore("s3")
	primary.SetErr = errors.New("access denied")

	result, err := NewDocumentStore(primary).Write(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, "s3-error", result.Mode)
}

func TestDocumentStoreReadBackIsInformational(t *testing.T) {
	primary := NewMemoryBlobStore("s3")
	store := NewDocumentStore(primary, NewMemoryBlobStore("gist"))

	// The write succeeds even though reading the primary now fails
	primary.GetErr = errors.New("eventually consistent")
	result, err := store.Write(context.Background(), []models.Appointment{})
	require.NoError(t, err)
	assert.Equal(t, "s3", result.Mode)
	assert.False(t, result.Confirmed)
}

func TestDocumentStoreReadRaw(t *testing.T) {
	primary := NewMemoryBlobStore("s3")
	primary.Put(DocumentKey, []byte(`"stored as string"`))

	assert.Equal(t, `"stored as string"`, NewDocumentStore(primary).ReadRaw(context.Background()))
}

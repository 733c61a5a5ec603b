package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory keyed by bucket/key
type fakeS3 struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	getErr       error
	putErr       error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, contentTypes: map[string]string{}}
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	f.objects[key] = body
	f.contentTypes[key] = aws.ToString(params.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func TestS3BlobStoreRoundTrip(t *testing.T) {
	client := newFakeS3()
	store := NewS3BlobStore(client, "crm-bucket", StoreName)
	ctx := context.Background()

	assert.Equal(t, "s3", store.Name())

	value, err := store.Get(ctx, DocumentKey)
	require.NoError(t, err, "a missing key is not an error")
	assert.Nil(t, value)

	require.NoError(t, store.Set(ctx, DocumentKey, []byte(`[]`), DocumentContentType))
	assert.Contains(t, client.objects, "crm-bucket/agenda/appointments.json")
	assert.Equal(t, DocumentContentType, client.contentTypes["crm-bucket/agenda/appointments.json"])

	value, err = store.Get(ctx, DocumentKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))
}

func TestS3BlobStoreErrors(t *testing.T) {
	client := newFakeS3()
	client.getErr = errors.New("AccessDenied")
	client.putErr = errors.New("AccessDenied")
	store := NewS3BlobStore(client, "crm-bucket", StoreName)
	ctx := context.Background()

	_, err := store.Get(ctx, DocumentKey)
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, DocumentKey, []byte(`[]`), DocumentContentType))
}

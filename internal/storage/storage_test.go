package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
)

type fakeS3 struct {
	s3iface.S3API
	put     *s3.PutObjectInput
	body    []byte
	deleted string
	err     error
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = aws.StringValue(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "shop-images", "eu-west-1", "")

	url, err := store.Put(context.Background(), "products/abc", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://shop-images.s3.eu-west-1.amazonaws.com/products/abc", url)
	assert.Equal(t, "shop-images", aws.StringValue(client.put.Bucket))
	assert.Equal(t, "image/png", aws.StringValue(client.put.ContentType))
	assert.Equal(t, []byte("png"), client.body)

	require.NoError(t, store.Delete(context.Background(), "products/abc"))
	assert.Equal(t, "products/abc", client.deleted)

	cdn := NewS3Store(client, "shop-images", "eu-west-1", "https://cdn.example.com/")
	url, err = cdn.Put(context.Background(), "products/def", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/products/def", url)

	client.err = errors.New("access denied")
	_, err = store.Put(context.Background(), "k", "image/png", nil)
	assert.Error(t, err)
	assert.Error(t, store.Delete(context.Background(), "k"))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080/uploads/")

	url, err := store.Put(context.Background(), "products/abc", "image/png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/products/abc", url)

	data, err := os.ReadFile(filepath.Join(dir, "products", "abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, store.Delete(context.Background(), "products/abc"))
	_, err = os.Stat(filepath.Join(dir, "products", "abc"))
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Delete(context.Background(), "products/abc"))
}

func TestLocalStoreStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(filepath.Join(dir, "uploads"), "http://x")

	_, err := store.Put(context.Background(), "../../escape", "text/plain", []byte("x"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "uploads", "escape"))
	assert.NoError(t, err)

	_, err = store.Put(context.Background(), "", "text/plain", nil)
	assert.Error(t, err)
}

func TestNewPicksBackend(t *testing.T) {
	store, err := New(config.StorageConfig{LocalDir: t.TempDir(), PublicURL: "http://x"})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	store, err = New(config.StorageConfig{
		Region: "us-east-1", AccessKeyID: "id", SecretAccessKey: "secret", Bucket: "b",
	})
	require.NoError(t, err)
	assert.IsType(t, &S3Store{}, store)
}

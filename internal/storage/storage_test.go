package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "rooms/r1/a.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/rooms/r1/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "rooms", "r1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	key, ok := KeyFromURL(store.PublicURL(), url)
	require.True(t, ok)
	require.NoError(t, store.Delete(context.Background(), key))
	_, err = os.Stat(filepath.Join(dir, "rooms", "r1", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	assert.NoError(t, store.Delete(context.Background(), key))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "../etc/passwd", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestKeyFromURL(t *testing.T) {
	_, ok := KeyFromURL("/uploads", "https://elsewhere/img.png")
	assert.False(t, ok)
	key, ok := KeyFromURL("https://cdn.example.com", "https://cdn.example.com/rooms/x/y.jpg")
	assert.True(t, ok)
	assert.Equal(t, "rooms/x/y.jpg", key)
}

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   string
	delKey string
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.delKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, f.err
}

func TestS3Store(t *testing.T) {
	fake := &fakeS3{}
	store := &S3Store{client: fake, bucket: "rooms-img", publicURL: "https://rooms-img.s3.sa-east-1.amazonaws.com"}

	url, err := store.Put(context.Background(), "rooms/r1/b.jpg", "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.Equal(t, "https://rooms-img.s3.sa-east-1.amazonaws.com/rooms/r1/b.jpg", url)
	assert.Equal(t, "rooms-img", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.put.ContentType))
	assert.Equal(t, "jpg", fake.body)

	require.NoError(t, store.Delete(context.Background(), "rooms/r1/b.jpg"))
	assert.Equal(t, "rooms/r1/b.jpg", fake.delKey)

	fake.err = errors.New("denied")
	_, err = store.Put(context.Background(), "k", "image/png", strings.NewReader(""))
	assert.ErrorContains(t, err, "denied")
}

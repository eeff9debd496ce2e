package certstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-manager/generic"
)

// =============================================================================
// KEYS
// =============================================================================

func TestNewKey(t *testing.T) {
	key, ct, err := NewKey("Dr Note.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, KeyPrefix))
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.Equal(t, "application/pdf", ct)

	other, _, err := NewKey("Dr Note.PDF")
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	_, _, err = NewKey("payload.exe")
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestValidKey(t *testing.T) {
	assert.True(t, validKey("certificates/abc.pdf"))
	assert.False(t, validKey("other/abc.pdf"))
	assert.False(t, validKey("certificates/../../etc/passwd"))
}

func TestNew_UnknownBackend(t *testing.T) {
	_, err := New(context.Background(), Config{Backend: "ftp"})
	assert.Error(t, err)
}

// =============================================================================
// LOCAL
// =============================================================================

func TestLocalStore_PutGetDelete(t *testing.T) {
	// GIVEN: A local store in a temp dir
	store, err := New(context.Background(), Config{Backend: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	key, ct, err := NewKey("scan.png")
	require.NoError(t, err)

	// WHEN: Storing and reading back
	require.NoError(t, store.Put(ctx, key, strings.NewReader("png-bytes"), 9, ct))
	obj, err := store.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	obj.Body.Close()

	// THEN: Same bytes and content type
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, int64(9), obj.Size)

	// WHEN: Deleting (twice)
	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, generic.ErrCertificateNotFound)
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	err = store.Put(context.Background(), "certificates/../../x.pdf", strings.NewReader("x"), 1, "application/pdf")
	assert.Error(t, err)
}

// =============================================================================
// S3
// =============================================================================

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	data, ok := f.objects[k]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentType:   aws.String(f.types[k]),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutGetDelete(t *testing.T) {
	fake := newFakeS3()
	store := newS3Store(fake, "certs")
	ctx := context.Background()

	key, ct, err := NewKey("note.pdf")
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, key, strings.NewReader("%PDF-1.4"), 8, ct))
	assert.Contains(t, fake.objects, "certs/"+key)

	obj, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer obj.Body.Close()
	data, _ := io.ReadAll(obj.Body)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.Equal(t, int64(8), obj.Size)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, generic.ErrCertificateNotFound)
}

func TestS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/wholspace-backend/errs"
)

// fakeS3 keeps objects in a map and pages listings pageSize keys at a time
type fakeS3 struct {
	mu        sync.Mutex
	objects   map[string][]byte
	pageSize  int
	putErr    error
	failKeys  map[string]bool
	deletions [][]string
}

func newFakeS3(pageSize int) *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: pageSize, failKeys: make(map[string]bool)}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := 0
	if token := aws.ToString(in.ContinuationToken); token != "" {
		start, _ = strconv.Atoi(token)
	}
	end := min(start+f.pageSize, len(keys))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(keys))}
	for _, key := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if end < len(keys) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &s3.DeleteObjectsOutput{}
	var batch []string
	for _, obj := range in.Delete.Objects {
		key := aws.ToString(obj.Key)
		batch = append(batch, key)
		if f.failKeys[key] {
			out.Errors = append(out.Errors, types.Error{Key: obj.Key, Message: aws.String("AccessDenied")})
			continue
		}
		delete(f.objects, key)
	}
	f.deletions = append(f.deletions, batch)
	return out, nil
}

func TestS3PutReturnsPublicURL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeS3(10)

	cdn := newS3(fake, "media", "https://cdn.test/", "eu-west-1")
	url, err := cdn.Put(ctx, "avatars/a/avatar.png", "image/png", bytes.NewReader([]byte("png")), 3)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/avatars/a/avatar.png", url)
	assert.Equal(t, []byte("png"), fake.objects["avatars/a/avatar.png"])

	direct := newS3(fake, "media", "", "eu-west-1")
	url, err = direct.Put(ctx, "k", "image/png", bytes.NewReader([]byte("x")), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/k", url)

	fake.putErr = errors.New("throttled")
	_, err = cdn.Put(ctx, "k", "image/png", bytes.NewReader([]byte("x")), 1)
	require.Error(t, err)
	assert.True(t, errs.IsStoreUnavailable(err))
}

func TestS3DeletePrefixPagesAndBatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeS3(400)
	for i := range 1203 {
		fake.objects[fmt.Sprintf("projects/u/p/%04d.png", i)] = nil
	}
	fake.objects["projects/u/other/thumbnail.png"] = nil

	blob := newS3(fake, "media", "", "us-east-1")
	deleted, err := blob.DeletePrefix(ctx, "projects/u/p/")
	require.NoError(t, err)
	assert.Equal(t, 1203, deleted)

	require.Len(t, fake.deletions, 2)
	assert.Len(t, fake.deletions[0], maxDeleteBatch)
	assert.Len(t, fake.deletions[1], 203)
	assert.Len(t, fake.objects, 1)

	deleted, err = blob.DeletePrefix(ctx, "projects/u/none/")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestS3DeletePrefixReportsPartialFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fake := newFakeS3(10)
	fake.objects["p/a.png"] = nil
	fake.objects["p/b.png"] = nil
	fake.objects["p/c.png"] = nil
	fake.failKeys["p/b.png"] = true

	deleted, err := newS3(fake, "media", "", "us-east-1").DeletePrefix(ctx, "p/")
	require.Error(t, err)
	assert.True(t, errs.IsStoreUnavailable(err))
	assert.Equal(t, 2, deleted)
	assert.Contains(t, fake.objects, "p/b.png")
}

func TestMemoryBlob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	blob := NewMemory("https://cdn.test/")

	url, err := blob.Put(ctx, "p/a.png", "image/png", bytes.NewReader([]byte("abc")), 3)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/p/a.png", url)

	_, err = blob.Put(ctx, "p/short.png", "image/png", bytes.NewReader([]byte("ab")), 3)
	require.Error(t, err)
	_, err = blob.Put(ctx, "p/long.png", "image/png", bytes.NewReader([]byte("abcd")), 3)
	require.Error(t, err)

	_, err = blob.Put(ctx, "p/b.png", "image/png", bytes.NewReader([]byte("b")), 1)
	require.NoError(t, err)
	_, err = blob.Put(ctx, "q/c.png", "image/png", bytes.NewReader([]byte("c")), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p/a.png", "p/b.png", "q/c.png"}, blob.Keys())

	obj, ok := blob.Get("p/a.png")
	require.True(t, ok)
	assert.Equal(t, Object{ContentType: "image/png", Data: []byte("abc")}, obj)

	blob.FailNextDeletes(1)
	_, err = blob.DeletePrefix(ctx, "p/")
	require.Error(t, err)
	assert.Len(t, blob.Keys(), 3)

	deleted, err := blob.DeletePrefix(ctx, "p/")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, []string{"q/c.png"}, blob.Keys())
}

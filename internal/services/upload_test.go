package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	jpegHeader = []byte{0xff, 0xd8, 0xff, 0xe0}
)

func pngBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, pngHeader)
	return data
}

func jpegBytes(size int) []byte {
	data := make([]byte, size)
	copy(data, jpegHeader)
	return data
}

// fakeBlobStore records puts and deletes, and can be told to fail after
// a number of successful writes.
type fakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	puts      []string
	deletes   []string
	failAfter int
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}, failAfter: -1}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAfter >= 0 && len(f.puts) >= f.failAfter {
		return errors.New("blob store unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeBlobStore) PublicURL(key string) string {
	return "/uploads/" + key
}

func TestValidateBatchAccepted(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	verr := svc.ValidateBatch([]Attachment{
		{Filename: "front.jpg", Data: jpegBytes(1024)},
		{Filename: "interior.PNG", Data: pngBytes(2048)},
		{Filename: "rear.jpeg", Data: jpegBytes(512)},
	})

	assert.Nil(t, verr)
}

func TestValidateBatchRejectsTooManyFiles(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	files := make([]Attachment, MaxImagesPerListing+1)
	for i := range files {
		files[i] = Attachment{Filename: fmt.Sprintf("photo-%d.jpg", i), Data: jpegBytes(100)}
	}

	verr := svc.ValidateBatch(files)
	require.NotNil(t, verr)
	assert.Contains(t, verr.Violations[0].Message, "10 images")
}

func TestValidateBatchRejectsDisallowedExtension(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	verr := svc.ValidateBatch([]Attachment{
		{Filename: "listing.gif", Data: jpegBytes(100)},
	})

	require.NotNil(t, verr)
	assert.Contains(t, verr.Violations[0].Message, "listing.gif")
	assert.Contains(t, verr.Violations[0].Message, "only .png, .jpg and .jpeg")
}

func TestValidateBatchRejectsSpoofedContent(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	// Extension says image; bytes say otherwise.
	verr := svc.ValidateBatch([]Attachment{
		{Filename: "honest-name.png", Data: []byte("#!/bin/sh\nrm -rf /\n")},
	})

	require.NotNil(t, verr)
	assert.Contains(t, verr.Violations[0].Message, "honest-name.png")
	assert.Contains(t, verr.Violations[0].Message, "not a supported image format")
}

func TestValidateBatchRejectsOversizedFile(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	verr := svc.ValidateBatch([]Attachment{
		{Filename: "small.jpg", Data: jpegBytes(100)},
		{Filename: "huge.jpg", Data: jpegBytes(MaxImageBytes + 1)},
	})

	require.NotNil(t, verr)
	require.Len(t, verr.Violations, 1)
	assert.Contains(t, verr.Violations[0].Message, "huge.jpg")
	assert.Contains(t, verr.Violations[0].Message, "exceeds")
}

func TestValidateBatchAllowsExactLimit(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	verr := svc.ValidateBatch([]Attachment{
		{Filename: "exact.jpg", Data: jpegBytes(MaxImageBytes)},
	})

	assert.Nil(t, verr)
}

func TestValidateBatchReportsEveryOffender(t *testing.T) {
	svc := NewUploadService(newFakeBlobStore(), nil)

	verr := svc.ValidateBatch([]Attachment{
		{Filename: "a.gif", Data: jpegBytes(100)},
		{Filename: "b.jpg", Data: jpegBytes(MaxImageBytes + 1)},
		{Filename: "ok.png", Data: pngBytes(100)},
	})

	require.NotNil(t, verr)
	joined := verr.Error()
	assert.Contains(t, joined, "a.gif")
	assert.Contains(t, joined, "b.jpg")
	assert.NotContains(t, joined, "ok.png")
}

func TestStoreWritesEveryFile(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := NewUploadService(blobs, nil)

	stored, err := svc.Store(context.Background(), []Attachment{
		{Filename: "front.jpg", Data: jpegBytes(100)},
		{Filename: "rear.png", Data: pngBytes(100)},
	})

	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Len(t, blobs.objects, 2)
	for _, image := range stored {
		assert.True(t, strings.HasPrefix(image.Key, "vehicles/"))
		assert.Equal(t, "/uploads/"+image.Key, image.URL)
	}
	assert.True(t, strings.HasSuffix(stored[0].Key, ".jpg"))
	assert.True(t, strings.HasSuffix(stored[1].Key, ".png"))
}

func TestStoreCleansUpOnMidBatchFailure(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.failAfter = 1
	svc := NewUploadService(blobs, nil)

	stored, err := svc.Store(context.Background(), []Attachment{
		{Filename: "first.jpg", Data: jpegBytes(100)},
		{Filename: "second.jpg", Data: jpegBytes(100)},
	})

	require.Error(t, err)
	assert.Nil(t, stored)
	assert.Empty(t, blobs.objects)
	assert.Len(t, blobs.deletes, 1)
}

func TestSniffContentType(t *testing.T) {
	assert.Equal(t, "image/png", sniffContentType(pngBytes(64)))
	assert.Equal(t, "image/jpeg", sniffContentType(jpegBytes(64)))
	assert.Equal(t, "text/plain", sniffContentType([]byte("just words")))
}

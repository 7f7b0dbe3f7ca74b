package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxImageBytes is the per-file size ceiling for uploaded images.
	MaxImageBytes = 5_000_000

	// MaxImagesPerListing caps the attachment count of one listing.
	MaxImagesPerListing = 10
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Attachment is one uploaded file, already read off the wire.
type Attachment struct {
	Filename string
	Data     []byte
}

// StoredImage is one accepted attachment after it has been written to the
// blob store: the object key plus the stable public reference persisted
// on the listing.
type StoredImage struct {
	Key string
	URL string
}

// BlobStore abstracts the object store uploaded images are written to.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// UploadService gatekeeps image attachments: a batch is checked as a
// whole before a single byte reaches the blob store, and either every
// file is accepted or the entire batch is rejected.
type UploadService struct {
	blobs  BlobStore
	logger *zap.Logger
}

func NewUploadService(blobs BlobStore, logger *zap.Logger) *UploadService {
	return &UploadService{blobs: blobs, logger: logger}
}

// ValidateBatch checks every attachment against the upload rules and
// reports each offending file with the rule it violated. Both the
// declared extension and the sniffed content type must independently be
// an allowed image format, so neither a spoofed filename nor a spoofed
// payload gets through alone.
func (s *UploadService) ValidateBatch(files []Attachment) *ValidationError {
	verr := &ValidationError{}

	if len(files) > MaxImagesPerListing {
		verr.add("images", fmt.Sprintf("At most %d images are allowed per listing", MaxImagesPerListing))
	}

	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if !allowedImageExtensions[ext] {
			verr.add("images", fmt.Sprintf("%s: only .png, .jpg and .jpeg files are allowed", file.Filename))
		}
		if !allowedImageContentTypes[sniffContentType(file.Data)] {
			verr.add("images", fmt.Sprintf("%s: file content is not a supported image format", file.Filename))
		}
		if len(file.Data) > MaxImageBytes {
			verr.add("images", fmt.Sprintf("%s: file exceeds the %d byte limit", file.Filename, MaxImageBytes))
		}
	}

	return verr.orNil()
}

// Store writes a validated batch to the blob store and returns the
// stored references. If any write fails, files stored so far are cleaned
// up and nothing is kept.
func (s *UploadService) Store(ctx context.Context, files []Attachment) ([]StoredImage, error) {
	stored := make([]StoredImage, 0, len(files))
	for _, file := range files {
		key := imageObjectKey(file.Filename)
		contentType := sniffContentType(file.Data)

		err := s.blobs.Put(ctx, key, bytes.NewReader(file.Data), int64(len(file.Data)), contentType)
		if err != nil {
			s.Cleanup(ctx, stored)
			return nil, fmt.Errorf("store image %s: %w", file.Filename, err)
		}
		stored = append(stored, StoredImage{Key: key, URL: s.blobs.PublicURL(key)})
	}
	return stored, nil
}

// Cleanup removes already-stored blobs after a downstream failure, so a
// rejected listing does not leave orphaned images behind. Best-effort:
// failures are logged and swallowed.
func (s *UploadService) Cleanup(ctx context.Context, stored []StoredImage) {
	for _, image := range stored {
		if err := s.blobs.Delete(ctx, image.Key); err != nil && s.logger != nil {
			s.logger.Warn("failed to clean up stored image",
				zap.String("key", image.Key),
				zap.Error(err),
			)
		}
	}
}

func imageObjectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("vehicles/%d-%s%s", time.Now().UnixNano(), uuid.NewString(), ext)
}

func sniffContentType(data []byte) string {
	contentType := http.DetectContentType(data)
	// DetectContentType may append charset parameters for text types.
	if idx := strings.IndexByte(contentType, ';'); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}

package document

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"binary-metadata/core/metadata"
	"binary-metadata/core/storage"
	"binary-metadata/feature/document/models"

	"github.com/minio/minio-go/v7"
)

// keyPrefix namespaces blob objects inside the bucket.
const keyPrefix = "blobs/"

// BlobStore keeps blob contents in object storage under content-addressed keys.
type BlobStore struct {
	client storage.Client
	bucket string
}

// NewBlobStore creates a blob store on bucket.
func NewBlobStore(client storage.Client, bucket string) *BlobStore {
	return &BlobStore{client: client, bucket: bucket}
}

// ObjectKey returns the object key for content with the given digest.
func ObjectKey(digest string) string {
	return keyPrefix + digest[:2] + "/" + digest
}

// Put uploads blob unless identical content is already stored.
func (s *BlobStore) Put(ctx context.Context, blob *metadata.Blob) (models.BlobRef, error) {
	digest := blob.Digest()
	ref := models.BlobRef{
		Key:      ObjectKey(digest),
		Filename: blob.Filename,
		MimeType: blob.MimeType,
		Size:     blob.Size(),
		Digest:   digest,
	}

	_, err := s.client.StatObject(ctx, s.bucket, ref.Key, minio.StatObjectOptions{})
	if err == nil {
		return ref, nil
	}
	if !storage.IsNotFound(err) {
		return models.BlobRef{}, fmt.Errorf("failed to stat blob %s: %w", ref.Key, err)
	}

	contentType := blob.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucket, ref.Key, bytes.NewReader(blob.Data), ref.Size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"filename": blob.Filename},
	})
	if err != nil {
		return models.BlobRef{}, fmt.Errorf("failed to upload blob %s: %w", ref.Key, err)
	}

	return ref, nil
}

// Get downloads the blob referenced by ref and verifies its digest.
func (s *BlobStore) Get(ctx context.Context, ref models.BlobRef) (*metadata.Blob, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, ref.Key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open blob %s: %w", ref.Key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", ref.Key, err)
	}

	blob := &metadata.Blob{
		Key:      ref.Key,
		Filename: ref.Filename,
		MimeType: ref.MimeType,
		Data:     data,
	}
	if ref.Digest != "" && blob.Digest() != ref.Digest {
		return nil, fmt.Errorf("blob %s is corrupted: digest mismatch", ref.Key)
	}
	return blob, nil
}

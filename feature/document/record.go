package document

import (
	"sort"

	"binary-metadata/core/metadata"
	"binary-metadata/feature/document/models"
)

// Record adapts a stored document and its loaded blob contents to metadata.Record.
type Record struct {
	doc   *models.Document
	blobs map[string]*metadata.Blob
}

// NewRecord wraps doc. Blob contents are attached with SetBlob or by the store.
func NewRecord(doc *models.Document) *Record {
	if doc.Fields == nil {
		doc.Fields = models.Fields{}
	}
	if doc.Blobs == nil {
		doc.Blobs = models.BlobRefs{}
	}
	return &Record{doc: doc, blobs: make(map[string]*metadata.Blob)}
}

// Document returns the wrapped document.
func (r *Record) Document() *models.Document {
	return r.doc
}

// ID implements metadata.Record.
func (r *Record) ID() string {
	return r.doc.ID
}

// Type implements metadata.Record.
func (r *Record) Type() string {
	return r.doc.Type
}

// FieldValue implements metadata.Record.
func (r *Record) FieldValue(path string) (any, bool) {
	v, ok := r.doc.Fields[path]
	return v, ok
}

// SetFieldValue implements metadata.Record.
func (r *Record) SetFieldValue(path string, value any) {
	r.doc.Fields[path] = value
}

// Blob implements metadata.Record.
func (r *Record) Blob(path string) *metadata.Blob {
	return r.blobs[path]
}

// SetBlob implements metadata.Record. A nil blob detaches the path.
func (r *Record) SetBlob(path string, blob *metadata.Blob) {
	if blob == nil {
		delete(r.blobs, path)
		delete(r.doc.Blobs, path)
		return
	}
	r.blobs[path] = blob
}

// pendingBlobs returns the paths whose blob content is not stored yet,
// in sorted order.
func (r *Record) pendingBlobs() []string {
	var paths []string
	for path, b := range r.blobs {
		if b.Key == "" {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

package metadata

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// DefaultBlobPath is the blob location used when a mapping does not name one.
const DefaultBlobPath = "file:content"

// FieldMapping associates one metadata key of a binary with one record field.
type FieldMapping struct {
	// MetadataKey is the key as understood by the processor (e.g. "Title", "EXIF:Model").
	MetadataKey string `json:"metadata_key"`

	// FieldPath is the record field that mirrors the metadata key (e.g. "dc:title").
	FieldPath string `json:"field_path"`
}

// MappingDescriptor describes how metadata embedded in one blob of a record
// maps to the record's fields. Descriptors are immutable once registered.
type MappingDescriptor struct {
	// ID is the unique descriptor identifier.
	ID string `json:"id"`

	// BlobPath locates the blob on the record.
	BlobPath string `json:"blob_path"`

	// ProcessorID selects the processor. Empty means the default processor.
	ProcessorID string `json:"processor_id,omitempty"`

	// IgnorePrefix strips group prefixes from extracted keys.
	IgnorePrefix bool `json:"ignore_prefix"`

	// Fields is the ordered list of key/field associations.
	Fields []FieldMapping `json:"fields"`
}

// MetadataKeys returns the mapped metadata keys in declaration order.
func (m *MappingDescriptor) MetadataKeys() []string {
	keys := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		keys = append(keys, f.MetadataKey)
	}
	return keys
}

// FieldPaths returns the mapped record field paths in declaration order.
func (m *MappingDescriptor) FieldPaths() []string {
	paths := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		paths = append(paths, f.FieldPath)
	}
	return paths
}

// FieldFor returns the record field path mapped to a metadata key.
func (m *MappingDescriptor) FieldFor(metadataKey string) (string, bool) {
	for _, f := range m.Fields {
		if f.MetadataKey == metadataKey {
			return f.FieldPath, true
		}
	}
	return "", false
}

// RuleDescriptor activates a set of mappings for records accepted by all of its filters.
type RuleDescriptor struct {
	// ID is the unique rule identifier.
	ID string `json:"id"`

	// Enabled disables the rule entirely when false.
	Enabled bool `json:"enabled"`

	// Priority orders rules from high to low.
	Priority int `json:"priority"`

	// FilterIDs must all pass, evaluated in order.
	FilterIDs []string `json:"filter_ids"`

	// MappingIDs are the mappings activated by this rule.
	MappingIDs []string `json:"mapping_ids"`

	// Async routes the mappings to the asynchronous set.
	Async bool `json:"async"`
}

// Blob is an immutable binary payload attached to a record.
type Blob struct {
	// Key is the storage object key the content was loaded from, if any.
	Key string `json:"key,omitempty"`

	// Filename is the original file name.
	Filename string `json:"filename"`

	// MimeType is the content type of the payload.
	MimeType string `json:"mime_type,omitempty"`

	// Data holds the raw content. It must not be modified after construction.
	Data []byte `json:"-"`
}

// Digest returns the hex encoded BLAKE3 digest of the blob content.
func (b *Blob) Digest() string {
	sum := blake3.Sum256(b.Data)
	return hex.EncodeToString(sum[:])
}

// Size returns the content length in bytes.
func (b *Blob) Size() int64 {
	return int64(len(b.Data))
}

// WithData returns a copy of the blob carrying new content.
// The storage key is cleared because the content no longer matches it.
func (b *Blob) WithData(data []byte) *Blob {
	return &Blob{
		Filename: b.Filename,
		MimeType: b.MimeType,
		Data:     data,
	}
}

// Changes records which record fields and blobs were modified by the event
// being processed. A nil *Changes reports nothing as dirty.
type Changes struct {
	Fields map[string]bool
	Blobs  map[string]bool
}

// NewChanges creates an empty change set.
func NewChanges() *Changes {
	return &Changes{
		Fields: make(map[string]bool),
		Blobs:  make(map[string]bool),
	}
}

// MarkField flags a field path as dirty.
func (c *Changes) MarkField(path string) *Changes {
	c.Fields[path] = true
	return c
}

// MarkBlob flags a blob path as dirty.
func (c *Changes) MarkBlob(path string) *Changes {
	c.Blobs[path] = true
	return c
}

// FieldDirty reports whether the field path changed.
func (c *Changes) FieldDirty(path string) bool {
	if c == nil {
		return false
	}
	return c.Fields[path]
}

// BlobDirty reports whether the blob at path changed.
func (c *Changes) BlobDirty(path string) bool {
	if c == nil {
		return false
	}
	return c.Blobs[path]
}

// AnyFieldDirty reports whether at least one of the paths changed.
func (c *Changes) AnyFieldDirty(paths []string) bool {
	for _, p := range paths {
		if c.FieldDirty(p) {
			return true
		}
	}
	return false
}

// Empty reports whether nothing changed.
func (c *Changes) Empty() bool {
	return c == nil || (len(c.Fields) == 0 && len(c.Blobs) == 0)
}

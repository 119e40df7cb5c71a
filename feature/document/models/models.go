package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Fields holds the typed field values of a document keyed by field path
// (e.g. "dc:title"). It is stored as a JSON column; time.Time values are
// stored as {"$date": "<RFC3339>"} and come back as time.Time.
type Fields map[string]any

// dateKey marks an encoded time.Time inside the fields column.
const dateKey = "$date"

// Value implements driver.Valuer.
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	encoded := make(map[string]any, len(f))
	for k, v := range f {
		if t, ok := v.(time.Time); ok {
			v = map[string]string{dateKey: t.Format(time.RFC3339Nano)}
		}
		encoded[k] = v
	}
	b, err := json.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode fields: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (f *Fields) Scan(src any) error {
	out := Fields{}
	if err := scanJSON(src, &out); err != nil {
		return fmt.Errorf("failed to decode fields: %w", err)
	}
	for k, v := range out {
		t, ok, err := decodeDate(v)
		if err != nil {
			return fmt.Errorf("failed to decode field %s: %w", k, err)
		}
		if ok {
			out[k] = t
		}
	}
	*f = out
	return nil
}

// decodeDate reports whether v is an encoded date and returns it.
func decodeDate(v any) (time.Time, bool, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return time.Time{}, false, nil
	}
	raw, ok := m[dateKey].(string)
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// BlobRef points at a blob stored in object storage.
type BlobRef struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size"`
	Digest   string `json:"digest"`
}

// BlobRefs maps blob paths (e.g. "file:content") to stored blobs.
type BlobRefs map[string]BlobRef

// Value implements driver.Valuer.
func (b BlobRefs) Value() (driver.Value, error) {
	if b == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blob refs: %w", err)
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (b *BlobRefs) Scan(src any) error {
	out := BlobRefs{}
	if err := scanJSON(src, &out); err != nil {
		return fmt.Errorf("failed to decode blob refs: %w", err)
	}
	*b = out
	return nil
}

func scanJSON(src any, dst any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// Document is a stored record: a typed field map plus attached blobs.
type Document struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Type      string    `gorm:"column:type;size:64;index;not null" json:"type"`
	Fields    Fields    `gorm:"column:fields;type:json" json:"fields"`
	Blobs     BlobRefs  `gorm:"column:blobs;type:json" json:"blobs"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name used by Document.
func (Document) TableName() string {
	return "documents"
}

// Columns lists the columns the documents table must provide.
var Columns = []string{"id", "type", "fields", "blobs", "created_at", "updated_at"}

// DescriptorList is the response body of the descriptor listing endpoints.
type DescriptorList[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// MetadataResponse is the response body of a metadata read.
type MetadataResponse struct {
	DocumentID string         `json:"document_id"`
	BlobPath   string         `json:"blob_path"`
	Processor  string         `json:"processor"`
	Metadata   map[string]any `json:"metadata"`
}

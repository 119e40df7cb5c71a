package metadata_test

import (
	"context"
	"sync"

	"binary-metadata/core/metadata"
)

// memRecord is an in-memory metadata.Record.
type memRecord struct {
	id     string
	typ    string
	fields map[string]any
	blobs  map[string]*metadata.Blob
	sets   []string
}

func newRecord(id string) *memRecord {
	return &memRecord{
		id:     id,
		typ:    "Picture",
		fields: make(map[string]any),
		blobs:  make(map[string]*metadata.Blob),
	}
}

func (r *memRecord) ID() string   { return r.id }
func (r *memRecord) Type() string { return r.typ }

func (r *memRecord) FieldValue(path string) (any, bool) {
	v, ok := r.fields[path]
	return v, ok
}

func (r *memRecord) SetFieldValue(path string, value any) {
	r.sets = append(r.sets, path)
	r.fields[path] = value
}

func (r *memRecord) Blob(path string) *metadata.Blob {
	return r.blobs[path]
}

func (r *memRecord) SetBlob(path string, blob *metadata.Blob) {
	r.blobs[path] = blob
}

// countingFilters accepts filters listed in pass and counts every evaluation.
type countingFilters struct {
	mu    sync.Mutex
	pass  map[string]bool
	calls map[string]int
}

func newFilters(pass ...string) *countingFilters {
	f := &countingFilters{pass: make(map[string]bool), calls: make(map[string]int)}
	for _, id := range pass {
		f.pass[id] = true
	}
	return f
}

func (f *countingFilters) CheckFilter(filterID string, _ *metadata.FilterContext) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[filterID]++
	return f.pass[filterID]
}

func (f *countingFilters) count(filterID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[filterID]
}

// verbatimProcessor stores written values per blob digest and returns them on read.
type verbatimProcessor struct {
	mu     sync.Mutex
	stored map[string]map[string]any
	reads  int
	writes int
}

func newVerbatimProcessor() *verbatimProcessor {
	return &verbatimProcessor{stored: make(map[string]map[string]any)}
}

func (p *verbatimProcessor) ReadMetadata(_ context.Context, blob *metadata.Blob, keys []string, _ bool) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	all := p.stored[blob.Digest()]
	out := make(map[string]any)
	if len(keys) == 0 {
		for k, v := range all {
			out[k] = v
		}
		return out, nil
	}
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (p *verbatimProcessor) WriteMetadata(_ context.Context, blob *metadata.Blob, values map[string]string, _ bool) (*metadata.Blob, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes++
	merged := make(map[string]any)
	for k, v := range p.stored[blob.Digest()] {
		merged[k] = v
	}
	for k, v := range values {
		merged[k] = v
	}
	data := append(append([]byte(nil), blob.Data...), byte(p.writes))
	out := blob.WithData(data)
	p.stored[out.Digest()] = merged
	return out, nil
}

// seed stores values for blob as if they had been embedded by a writer.
func (p *verbatimProcessor) seed(blob *metadata.Blob, values map[string]any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stored[blob.Digest()] = values
}

package metadata

import (
	"context"
	"fmt"
)

// Processor reads and writes metadata embedded in one family of binary formats.
type Processor interface {
	// ReadMetadata extracts metadata from blob. An empty keys slice requests
	// everything available. Values are strings, numbers or time.Time.
	ReadMetadata(ctx context.Context, blob *Blob, keys []string, ignorePrefix bool) (map[string]any, error)

	// WriteMetadata embeds values into a copy of blob and returns the copy.
	// The input blob is never modified.
	WriteMetadata(ctx context.Context, blob *Blob, values map[string]string, ignorePrefix bool) (*Blob, error)
}

// Invoker resolves processors by id and calls them, translating failures
// into typed errors. It is safe for concurrent use.
type Invoker struct {
	processors *ProcessorRegistry
	cache      *ExtractCache
}

// NewInvoker creates an invoker. cache may be nil.
func NewInvoker(processors *ProcessorRegistry, cache *ExtractCache) *Invoker {
	return &Invoker{processors: processors, cache: cache}
}

// Processor returns the processor for id, falling back to the default when id is empty.
func (i *Invoker) Processor(id string) (string, Processor, error) {
	if id == "" {
		id = i.processors.DefaultID()
	}
	p, ok := i.processors.Lookup(id)
	if !ok {
		return id, nil, &LookupError{Kind: KindProcessor, ID: id}
	}
	return id, p, nil
}

// Read extracts metadata from blob with the processor identified by processorID.
func (i *Invoker) Read(ctx context.Context, processorID string, blob *Blob, keys []string, ignorePrefix bool) (map[string]any, error) {
	if blob == nil {
		return nil, fmt.Errorf("cannot read metadata from a nil blob")
	}
	id, p, err := i.Processor(processorID)
	if err != nil {
		return nil, err
	}

	read := func() (map[string]any, error) {
		out, err := p.ReadMetadata(ctx, blob, keys, ignorePrefix)
		if err != nil {
			return nil, &InvocationError{ProcessorID: id, Op: OpRead, Err: err}
		}
		if out == nil {
			out = map[string]any{}
		}
		return out, nil
	}

	if i.cache == nil {
		return read()
	}
	return i.cache.GetOrLoad(cacheKey(id, blob, keys, ignorePrefix), read)
}

// Write embeds values into a copy of blob with the processor identified by processorID.
func (i *Invoker) Write(ctx context.Context, processorID string, blob *Blob, values map[string]string, ignorePrefix bool) (*Blob, error) {
	if blob == nil {
		return nil, fmt.Errorf("cannot write metadata into a nil blob")
	}
	id, p, err := i.Processor(processorID)
	if err != nil {
		return nil, err
	}
	out, err := p.WriteMetadata(ctx, blob, values, ignorePrefix)
	if err != nil {
		return nil, &InvocationError{ProcessorID: id, Op: OpWrite, Err: err}
	}
	if out == nil {
		return nil, &InvocationError{ProcessorID: id, Op: OpWrite, Err: fmt.Errorf("processor returned no blob")}
	}
	return out, nil
}

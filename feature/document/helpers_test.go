package document

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"binary-metadata/core/database"
	"binary-metadata/core/metadata"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBucket = "documents"

// memStorage is an in-memory storage.Client.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) BucketExists(context.Context, string) (bool, error) { return true, nil }

func (m *memStorage) MakeBucket(context.Context, string, minio.MakeBucketOptions) error { return nil }

func (m *memStorage) PutObject(_ context.Context, _, key string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	m.puts++
	return minio.UploadInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memStorage) GetObject(_ context.Context, _, key string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", Key: key}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) StatObject(_ context.Context, _, key string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", Key: key}
	}
	return minio.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (m *memStorage) object(key string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeTags(m.objects[key])
}

// jsonProcessor treats blob content as a JSON object of metadata tags.
type jsonProcessor struct {
	mu     sync.Mutex
	reads  int
	writes int
	onRead func()
}

func (p *jsonProcessor) setOnRead(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRead = fn
}

func (p *jsonProcessor) ReadMetadata(_ context.Context, blob *metadata.Blob, keys []string, _ bool) (map[string]any, error) {
	p.mu.Lock()
	p.reads++
	hook := p.onRead
	p.mu.Unlock()
	if hook != nil {
		hook()
	}

	tags := decodeTags(blob.Data)
	if len(keys) == 0 {
		return tags, nil
	}
	out := make(map[string]any)
	for _, k := range keys {
		if v, ok := tags[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (p *jsonProcessor) WriteMetadata(_ context.Context, blob *metadata.Blob, values map[string]string, _ bool) (*metadata.Blob, error) {
	p.mu.Lock()
	p.writes++
	p.mu.Unlock()

	tags := decodeTags(blob.Data)
	for k, v := range values {
		tags[k] = v
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return blob.WithData(data), nil
}

func decodeTags(data []byte) map[string]any {
	tags := make(map[string]any)
	_ = json.Unmarshal(data, &tags)
	return tags
}

func jsonBlob(t *testing.T, tags map[string]any) *metadata.Blob {
	t.Helper()
	data, err := json.Marshal(tags)
	require.NoError(t, err)
	return &metadata.Blob{Filename: "photo.jpg", MimeType: "image/jpeg", Data: data}
}

type fixture struct {
	service   *Service
	store     *Store
	storage   *memStorage
	processor *jsonProcessor
	rules     *metadata.RuleRegistry
}

// newFixture wires a service over in-memory SQLite, in-memory object storage
// and the JSON processor. Rules:
//
//	pictures (sync):  iptc       Title -> dc:title, Description -> dc:description
//	camera   (async): camera     Model -> camera:model
func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	mem := newMemStorage()
	store := NewStore(db, NewBlobStore(mem, testBucket), zap.NewNop())
	require.NoError(t, store.Migrate(context.Background()))

	mappings := metadata.NewMappingRegistry()
	require.NoError(t, mappings.Register(&metadata.MappingDescriptor{
		ID: "iptc",
		Fields: []metadata.FieldMapping{
			{MetadataKey: "Title", FieldPath: "dc:title"},
			{MetadataKey: "Description", FieldPath: "dc:description"},
		},
	}))
	require.NoError(t, mappings.Register(&metadata.MappingDescriptor{
		ID:     "camera",
		Fields: []metadata.FieldMapping{{MetadataKey: "Model", FieldPath: "camera:model"}},
	}))

	rules := metadata.NewRuleRegistry()
	require.NoError(t, rules.Register(&metadata.RuleDescriptor{
		ID: "pictures", Enabled: true, Priority: 10, FilterIDs: []string{"is-picture"}, MappingIDs: []string{"iptc"},
	}))
	require.NoError(t, rules.Register(&metadata.RuleDescriptor{
		ID: "camera", Enabled: true, FilterIDs: []string{"is-picture"}, MappingIDs: []string{"camera"}, Async: true,
	}))

	filters := metadata.FilterFunc(func(id string, fctx *metadata.FilterContext) bool {
		return id == "is-picture" && fctx.Record.Type() == "Picture"
	})

	proc := &jsonProcessor{}
	processors := metadata.NewProcessorRegistry()
	require.NoError(t, processors.Register("json", proc, true))

	resolver := metadata.NewRuleResolver(rules, mappings, filters, zap.NewNop())
	engine := metadata.NewEngine(mappings, resolver, metadata.NewInvoker(processors, nil), zap.NewNop(), metadata.Options{AbortOnError: opts.Strict})

	return &fixture{
		service:   NewService(store, engine, rules, opts, zap.NewNop()),
		store:     store,
		storage:   mem,
		processor: proc,
		rules:     rules,
	}
}

package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProcessor struct {
	reads   int
	writes  int
	readErr error
}

func (p *countingProcessor) ReadMetadata(_ context.Context, _ *Blob, _ []string, _ bool) (map[string]any, error) {
	p.reads++
	if p.readErr != nil {
		return nil, p.readErr
	}
	return map[string]any{"Title": "Photo"}, nil
}

func (p *countingProcessor) WriteMetadata(_ context.Context, blob *Blob, _ map[string]string, _ bool) (*Blob, error) {
	p.writes++
	return blob.WithData(append([]byte("x"), blob.Data...)), nil
}

func TestProcessorRegistry(t *testing.T) {
	reg := NewProcessorRegistry()
	assert.Equal(t, "", reg.DefaultID())

	require.NoError(t, reg.Register("first", &countingProcessor{}, false))
	assert.Equal(t, "first", reg.DefaultID())

	require.NoError(t, reg.Register("exif", &countingProcessor{}, true))
	assert.Equal(t, "exif", reg.DefaultID())

	require.NoError(t, reg.Register("other", &countingProcessor{}, false))
	assert.Equal(t, "exif", reg.DefaultID())

	assert.Error(t, reg.Register("exif", &countingProcessor{}, false))
	assert.Error(t, reg.Register("", &countingProcessor{}, false))
	assert.Equal(t, []string{"exif", "first", "other"}, reg.IDs())

	_, ok := reg.Lookup("missing")
	assert.False(t, ok)
}

func TestMappingRegistry(t *testing.T) {
	reg := NewMappingRegistry()
	require.NoError(t, reg.Register(&MappingDescriptor{ID: "b"}))
	require.NoError(t, reg.Register(&MappingDescriptor{ID: "a", BlobPath: "files:0"}))

	assert.Error(t, reg.Register(&MappingDescriptor{ID: "a"}))
	assert.Error(t, reg.Register(&MappingDescriptor{}))

	b, ok := reg.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, DefaultBlobPath, b.BlobPath)

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "files:0", all[0].BlobPath)
	assert.Equal(t, 2, reg.Len())
}

func TestRuleRegistry_Enabled(t *testing.T) {
	reg := NewRuleRegistry()
	require.NoError(t, reg.Register(&RuleDescriptor{ID: "off", Priority: 9}))
	require.NoError(t, reg.Register(&RuleDescriptor{ID: "on", Enabled: true, Priority: 1}))
	assert.Error(t, reg.Register(&RuleDescriptor{ID: "on"}))

	enabled := reg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].ID)
	assert.Len(t, reg.All(), 2)
}

func TestInvoker(t *testing.T) {
	reg := NewProcessorRegistry()
	proc := &countingProcessor{}
	require.NoError(t, reg.Register("exif", proc, true))
	inv := NewInvoker(reg, nil)
	blob := &Blob{Filename: "a.jpg", Data: []byte("jpeg")}

	t.Run("DefaultProcessor", func(t *testing.T) {
		values, err := inv.Read(context.Background(), "", blob, nil, false)
		require.NoError(t, err)
		assert.Equal(t, "Photo", values["Title"])
	})

	t.Run("UnknownProcessor", func(t *testing.T) {
		_, err := inv.Read(context.Background(), "tika", blob, nil, false)
		var lookupErr *LookupError
		require.True(t, errors.As(err, &lookupErr))
		assert.Equal(t, "tika", lookupErr.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = inv.Write(context.Background(), "tika", blob, nil, false)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("WriteLeavesInputUntouched", func(t *testing.T) {
		out, err := inv.Write(context.Background(), "exif", blob, map[string]string{"Title": "x"}, false)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg"), blob.Data)
		assert.Equal(t, []byte("xjpeg"), out.Data)
		assert.Equal(t, "a.jpg", out.Filename)
	})

	t.Run("NilBlob", func(t *testing.T) {
		_, err := inv.Read(context.Background(), "", nil, nil, false)
		assert.Error(t, err)
		_, err = inv.Write(context.Background(), "", nil, nil, false)
		assert.Error(t, err)
	})

	t.Run("ProcessorFailure", func(t *testing.T) {
		cause := errors.New("exiftool not installed")
		proc.readErr = cause
		defer func() { proc.readErr = nil }()

		_, err := inv.Read(context.Background(), "", blob, nil, false)
		var invErr *InvocationError
		require.True(t, errors.As(err, &invErr))
		assert.Equal(t, "exif", invErr.ProcessorID)
		assert.Equal(t, OpRead, invErr.Op)
		assert.ErrorIs(t, err, cause)
	})
}

func TestChanges_NilIsClean(t *testing.T) {
	var c *Changes
	assert.False(t, c.FieldDirty("dc:title"))
	assert.False(t, c.BlobDirty(DefaultBlobPath))
	assert.True(t, c.Empty())

	c = NewChanges().MarkField("dc:title")
	assert.True(t, c.AnyFieldDirty([]string{"dc:description", "dc:title"}))
	assert.False(t, c.Empty())
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "Model", StripPrefix("EXIF:Model"))
	assert.Equal(t, "Model", StripPrefix("Model"))
	assert.Equal(t, "Title", StripPrefix("XMP:XMP-dc:Title"))
}

package filters

import (
	"testing"

	"binary-metadata/core/descriptor"
	"binary-metadata/core/metadata"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type record struct {
	typ    string
	fields map[string]any
}

func (r *record) ID() string   { return "doc-1" }
func (r *record) Type() string { return r.typ }

func (r *record) FieldValue(path string) (any, bool) {
	v, ok := r.fields[path]
	return v, ok
}

func (r *record) SetFieldValue(path string, value any) { r.fields[path] = value }
func (r *record) Blob(string) *metadata.Blob           { return nil }
func (r *record) SetBlob(string, *metadata.Blob)       {}

func ctx(rec metadata.Record, changes *metadata.Changes) *metadata.FilterContext {
	return &metadata.FilterContext{Record: rec, Changes: changes}
}

func TestFilter_Accept(t *testing.T) {
	picture := &record{typ: "Picture", fields: map[string]any{
		"dc:title":  "Sunset",
		"dc:source": "",
		"width":     640,
	}}

	tests := []struct {
		name    string
		spec    descriptor.FilterSpec
		changes *metadata.Changes
		want    bool
	}{
		{"EmptyAcceptsAll", descriptor.FilterSpec{}, nil, true},
		{"TypeMatch", descriptor.FilterSpec{Types: []string{"File", "Picture"}}, nil, true},
		{"TypeMismatch", descriptor.FilterSpec{Types: []string{"Video"}}, nil, false},
		{"FieldPresent", descriptor.FilterSpec{Fields: []string{"dc:title"}}, nil, true},
		{"FieldBlank", descriptor.FilterSpec{Fields: []string{"dc:source"}}, nil, false},
		{"FieldMissing", descriptor.FilterSpec{Fields: []string{"dc:creator"}}, nil, false},
		{"EqualsStringifies", descriptor.FilterSpec{Equals: map[string]string{"width": "640"}}, nil, true},
		{"EqualsMismatch", descriptor.FilterSpec{Equals: map[string]string{"dc:title": "Dawn"}}, nil, false},
		{"DirtyField", descriptor.FilterSpec{Dirty: []string{"dc:title"}}, metadata.NewChanges().MarkField("dc:title"), true},
		{"DirtyBlob", descriptor.FilterSpec{Dirty: []string{"file:content"}}, metadata.NewChanges().MarkBlob("file:content"), true},
		{"NothingDirty", descriptor.FilterSpec{Dirty: []string{"dc:title"}}, nil, false},
		{"Negate", descriptor.FilterSpec{Types: []string{"Video"}, Negate: true}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.spec).Accept(ctx(picture, tt.changes)))
		})
	}
}

func TestFilter_NilRecordRejects(t *testing.T) {
	assert.False(t, New(descriptor.FilterSpec{}).Accept(ctx(nil, nil)))
}

func TestChecker(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	checker := NewChecker([]descriptor.FilterSpec{
		{ID: "pictures", Types: []string{"Picture"}},
	}, zap.New(core))

	rec := &record{typ: "Picture", fields: map[string]any{}}

	assert.Equal(t, 1, checker.Len())
	assert.True(t, checker.CheckFilter("pictures", ctx(rec, nil)))
	assert.False(t, checker.CheckFilter("ghost", ctx(rec, nil)))

	entries := logs.FilterField(zap.String("filter_id", "ghost")).All()
	assert.Len(t, entries, 1)
}

func TestChecker_DrivesResolver(t *testing.T) {
	mappings := metadata.NewMappingRegistry()
	rules := metadata.NewRuleRegistry()
	assert.NoError(t, mappings.Register(&metadata.MappingDescriptor{ID: "iptc"}))
	assert.NoError(t, rules.Register(&metadata.RuleDescriptor{
		ID: "r", Enabled: true, FilterIDs: []string{"pictures"}, MappingIDs: []string{"iptc"},
	}))

	checker := NewChecker([]descriptor.FilterSpec{{ID: "pictures", Types: []string{"Picture"}}}, zap.NewNop())
	resolver := metadata.NewRuleResolver(rules, mappings, checker, zap.NewNop())

	assert.Equal(t, []string{"iptc"}, resolver.MappingIDs(&record{typ: "Picture"}, nil))
	assert.Empty(t, resolver.MappingIDs(&record{typ: "Video"}, nil))
}

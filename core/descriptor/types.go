package descriptor

// File is the root of a descriptor YAML document.
type File struct {
	Processors []ProcessorSpec `yaml:"processors"`
	Mappings   []MappingSpec   `yaml:"mappings"`
	Rules      []RuleSpec      `yaml:"rules"`
	Filters    []FilterSpec    `yaml:"filters"`
}

// ProcessorSpec declares a processor instance.
type ProcessorSpec struct {
	// ID is the processor id referenced by mappings.
	ID string `yaml:"id"`
	// Type selects the factory building the processor (e.g. "exiftool").
	Type string `yaml:"type"`
	// Default marks the processor used by mappings without a processor.
	Default bool `yaml:"default"`
	// Options are passed verbatim to the factory.
	Options map[string]string `yaml:"options,omitempty"`
}

// MetadataSpec associates a metadata key with a record field.
type MetadataSpec struct {
	Name  string `yaml:"name"`
	Field string `yaml:"field"`
}

// MappingSpec declares a mapping descriptor.
type MappingSpec struct {
	ID           string         `yaml:"id"`
	Blob         string         `yaml:"blob"`
	Processor    string         `yaml:"processor,omitempty"`
	IgnorePrefix bool           `yaml:"ignorePrefix"`
	Metadata     []MetadataSpec `yaml:"metadata"`
}

// RuleSpec declares a rule descriptor.
type RuleSpec struct {
	ID string `yaml:"id"`
	// Enabled defaults to true when omitted.
	Enabled  *bool    `yaml:"enabled,omitempty"`
	Priority int      `yaml:"priority"`
	Async    bool     `yaml:"async"`
	Filters  []string `yaml:"filters"`
	Mappings []string `yaml:"mappings"`
}

// IsEnabled reports the effective enabled flag.
func (r RuleSpec) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// FilterSpec declares a filter. Every non-empty criterion must match.
type FilterSpec struct {
	ID string `yaml:"id"`
	// Types accepts records whose type is listed.
	Types []string `yaml:"types,omitempty"`
	// Fields requires every listed field to carry a value.
	Fields []string `yaml:"fields,omitempty"`
	// Equals requires field values to equal the given strings.
	Equals map[string]string `yaml:"equals,omitempty"`
	// Dirty requires at least one listed field or blob path to be dirty.
	Dirty []string `yaml:"dirty,omitempty"`
	// Negate inverts the result.
	Negate bool `yaml:"negate,omitempty"`
}

package descriptor

import (
	"errors"
	"fmt"
	"os"

	"binary-metadata/core/metadata"

	"gopkg.in/yaml.v3"
)

// LoadFile loads and parses a YAML descriptor file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	for i := range f.Mappings {
		if f.Mappings[i].Blob == "" {
			f.Mappings[i].Blob = metadata.DefaultBlobPath
		}
	}
}

// Validate checks the file for errors that would make it unusable and
// returns warnings for references that will only be skipped at runtime.
func (f *File) Validate() (warnings []string, err error) {
	var errs []error

	processors := make(map[string]struct{})
	defaults := 0
	for _, p := range f.Processors {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("processor with empty id"))
			continue
		}
		if _, dup := processors[p.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate processor id %q", p.ID))
		}
		processors[p.ID] = struct{}{}
		if p.Default {
			defaults++
		}
	}
	if defaults > 1 {
		errs = append(errs, fmt.Errorf("%d processors marked as default, expected at most one", defaults))
	}

	mappings := make(map[string]struct{})
	for _, m := range f.Mappings {
		if m.ID == "" {
			errs = append(errs, fmt.Errorf("mapping with empty id"))
			continue
		}
		if _, dup := mappings[m.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate mapping id %q", m.ID))
		}
		mappings[m.ID] = struct{}{}

		if m.Processor != "" {
			if _, ok := processors[m.Processor]; !ok {
				errs = append(errs, fmt.Errorf("mapping %q references unknown processor %q", m.ID, m.Processor))
			}
		} else if len(processors) == 0 {
			errs = append(errs, fmt.Errorf("mapping %q needs a default processor but none is declared", m.ID))
		}

		keys := make(map[string]struct{})
		for _, md := range m.Metadata {
			if md.Name == "" || md.Field == "" {
				errs = append(errs, fmt.Errorf("mapping %q has an entry without name or field", m.ID))
				continue
			}
			if _, dup := keys[md.Name]; dup {
				errs = append(errs, fmt.Errorf("mapping %q maps metadata %q twice", m.ID, md.Name))
			}
			keys[md.Name] = struct{}{}
		}
	}

	filters := make(map[string]struct{})
	for _, fl := range f.Filters {
		if fl.ID == "" {
			errs = append(errs, fmt.Errorf("filter with empty id"))
			continue
		}
		if _, dup := filters[fl.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate filter id %q", fl.ID))
		}
		filters[fl.ID] = struct{}{}
	}

	rules := make(map[string]struct{})
	for _, r := range f.Rules {
		if r.ID == "" {
			errs = append(errs, fmt.Errorf("rule with empty id"))
			continue
		}
		if _, dup := rules[r.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate rule id %q", r.ID))
		}
		rules[r.ID] = struct{}{}

		for _, id := range r.Mappings {
			if _, ok := mappings[id]; !ok {
				warnings = append(warnings, fmt.Sprintf("rule %q references unknown mapping %q", r.ID, id))
			}
		}
		for _, id := range r.Filters {
			if _, ok := filters[id]; !ok {
				warnings = append(warnings, fmt.Sprintf("rule %q references unknown filter %q", r.ID, id))
			}
		}
	}

	return warnings, errors.Join(errs...)
}

// ProcessorFactory builds a processor from its declaration.
type ProcessorFactory func(spec ProcessorSpec) (metadata.Processor, error)

// Registries bundles the registries built from a descriptor file.
type Registries struct {
	Mappings   *metadata.MappingRegistry
	Rules      *metadata.RuleRegistry
	Processors *metadata.ProcessorRegistry
}

// Build validates f and builds fresh registries from it. factories maps
// processor types to constructors.
func Build(f *File, factories map[string]ProcessorFactory) (*Registries, error) {
	if _, err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptors: %w", err)
	}

	regs := &Registries{
		Mappings:   metadata.NewMappingRegistry(),
		Rules:      metadata.NewRuleRegistry(),
		Processors: metadata.NewProcessorRegistry(),
	}

	for _, p := range f.Processors {
		factory, ok := factories[p.Type]
		if !ok {
			return nil, fmt.Errorf("processor %q has unsupported type %q", p.ID, p.Type)
		}
		proc, err := factory(p)
		if err != nil {
			return nil, fmt.Errorf("failed to build processor %q: %w", p.ID, err)
		}
		if err := regs.Processors.Register(p.ID, proc, p.Default); err != nil {
			return nil, err
		}
	}

	for _, m := range f.Mappings {
		d := &metadata.MappingDescriptor{
			ID:           m.ID,
			BlobPath:     m.Blob,
			ProcessorID:  m.Processor,
			IgnorePrefix: m.IgnorePrefix,
		}
		for _, md := range m.Metadata {
			d.Fields = append(d.Fields, metadata.FieldMapping{MetadataKey: md.Name, FieldPath: md.Field})
		}
		if err := regs.Mappings.Register(d); err != nil {
			return nil, err
		}
	}

	for _, r := range f.Rules {
		d := &metadata.RuleDescriptor{
			ID:         r.ID,
			Enabled:    r.IsEnabled(),
			Priority:   r.Priority,
			FilterIDs:  append([]string(nil), r.Filters...),
			MappingIDs: append([]string(nil), r.Mappings...),
			Async:      r.Async,
		}
		if err := regs.Rules.Register(d); err != nil {
			return nil, err
		}
	}

	return regs, nil
}

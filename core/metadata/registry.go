package metadata

import (
	"fmt"
	"sort"
)

// Registries are populated once at startup and read concurrently afterwards.
// None of them lock; callers must finish registration before sharing them.

// MappingRegistry holds mapping descriptors by id.
type MappingRegistry struct {
	byID map[string]*MappingDescriptor
}

// NewMappingRegistry creates an empty mapping registry.
func NewMappingRegistry() *MappingRegistry {
	return &MappingRegistry{byID: make(map[string]*MappingDescriptor)}
}

// Register adds a descriptor. Duplicate or empty ids are rejected.
func (r *MappingRegistry) Register(d *MappingDescriptor) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("mapping descriptor must have an id")
	}
	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("mapping already registered: %s", d.ID)
	}
	if d.BlobPath == "" {
		d.BlobPath = DefaultBlobPath
	}
	r.byID[d.ID] = d
	return nil
}

// Lookup returns the descriptor for id.
func (r *MappingRegistry) Lookup(id string) (*MappingDescriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns every descriptor sorted by id.
func (r *MappingRegistry) All() []*MappingDescriptor {
	out := make([]*MappingDescriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of descriptors.
func (r *MappingRegistry) Len() int {
	return len(r.byID)
}

// RuleRegistry holds rule descriptors by id.
type RuleRegistry struct {
	byID map[string]*RuleDescriptor
}

// NewRuleRegistry creates an empty rule registry.
func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{byID: make(map[string]*RuleDescriptor)}
}

// Register adds a rule. Duplicate or empty ids are rejected.
func (r *RuleRegistry) Register(d *RuleDescriptor) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("rule descriptor must have an id")
	}
	if _, exists := r.byID[d.ID]; exists {
		return fmt.Errorf("rule already registered: %s", d.ID)
	}
	r.byID[d.ID] = d
	return nil
}

// Lookup returns the rule for id.
func (r *RuleRegistry) Lookup(id string) (*RuleDescriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// All returns every rule, highest priority first, ties broken by id.
func (r *RuleRegistry) All() []*RuleDescriptor {
	out := make([]*RuleDescriptor, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Enabled returns the enabled rules in the same order as All.
func (r *RuleRegistry) Enabled() []*RuleDescriptor {
	all := r.All()
	out := all[:0]
	for _, d := range all {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of rules.
func (r *RuleRegistry) Len() int {
	return len(r.byID)
}

// ProcessorRegistry holds processors by id and designates one default.
type ProcessorRegistry struct {
	byID      map[string]Processor
	defaultID string
}

// NewProcessorRegistry creates an empty processor registry.
func NewProcessorRegistry() *ProcessorRegistry {
	return &ProcessorRegistry{byID: make(map[string]Processor)}
}

// Register adds a processor. The first registered processor becomes the
// default unless asDefault is set on a later one.
func (r *ProcessorRegistry) Register(id string, p Processor, asDefault bool) error {
	if id == "" || p == nil {
		return fmt.Errorf("processor must have an id and an implementation")
	}
	if _, exists := r.byID[id]; exists {
		return fmt.Errorf("processor already registered: %s", id)
	}
	r.byID[id] = p
	if asDefault || r.defaultID == "" {
		r.defaultID = id
	}
	return nil
}

// Lookup returns the processor for id.
func (r *ProcessorRegistry) Lookup(id string) (Processor, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// DefaultID returns the id of the default processor, or "" if none is registered.
func (r *ProcessorRegistry) DefaultID() string {
	return r.defaultID
}

// IDs returns the registered processor ids sorted.
func (r *ProcessorRegistry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

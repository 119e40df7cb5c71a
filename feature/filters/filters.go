package filters

import (
	"slices"

	"binary-metadata/core/descriptor"
	"binary-metadata/core/metadata"
	"binary-metadata/core/utils"

	"go.uber.org/zap"
)

// Filter is a compiled declarative filter.
type Filter struct {
	spec  descriptor.FilterSpec
	types map[string]struct{}
}

// New compiles a filter declaration.
func New(spec descriptor.FilterSpec) *Filter {
	f := &Filter{spec: spec}
	if len(spec.Types) > 0 {
		f.types = make(map[string]struct{}, len(spec.Types))
		for _, t := range spec.Types {
			f.types[t] = struct{}{}
		}
	}
	return f
}

// ID returns the filter id.
func (f *Filter) ID() string {
	return f.spec.ID
}

// Accept evaluates the filter against fctx.
func (f *Filter) Accept(fctx *metadata.FilterContext) bool {
	ok := f.match(fctx)
	if f.spec.Negate {
		return !ok
	}
	return ok
}

func (f *Filter) match(fctx *metadata.FilterContext) bool {
	rec := fctx.Record
	if rec == nil {
		return false
	}

	if f.types != nil {
		if _, ok := f.types[rec.Type()]; !ok {
			return false
		}
	}

	for _, path := range f.spec.Fields {
		v, ok := rec.FieldValue(path)
		if !ok || utils.IsEmpty(v) {
			return false
		}
	}

	for path, want := range f.spec.Equals {
		v, ok := rec.FieldValue(path)
		if !ok || utils.ToString(v) != want {
			return false
		}
	}

	if len(f.spec.Dirty) > 0 {
		return slices.ContainsFunc(f.spec.Dirty, func(path string) bool {
			return fctx.Changes.FieldDirty(path) || fctx.Changes.BlobDirty(path)
		})
	}

	return true
}

// Checker resolves filter ids for the rule resolver. Unknown ids reject.
type Checker struct {
	filters map[string]*Filter
	logger  *zap.Logger
}

// NewChecker compiles the given declarations.
func NewChecker(specs []descriptor.FilterSpec, logger *zap.Logger) *Checker {
	c := &Checker{
		filters: make(map[string]*Filter, len(specs)),
		logger:  logger,
	}
	for _, s := range specs {
		c.filters[s.ID] = New(s)
	}
	return c
}

// CheckFilter implements metadata.FilterChecker.
func (c *Checker) CheckFilter(filterID string, fctx *metadata.FilterContext) bool {
	f, ok := c.filters[filterID]
	if !ok {
		c.logger.Warn("Unknown filter referenced by rule, rejecting", zap.String("filter_id", filterID))
		return false
	}
	return f.Accept(fctx)
}

// Len returns the number of compiled filters.
func (c *Checker) Len() int {
	return len(c.filters)
}

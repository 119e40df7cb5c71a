package metadata

import (
	"sort"

	"go.uber.org/zap"
)

// FilterContext is the evaluation context handed to filters.
type FilterContext struct {
	Record  Record
	Changes *Changes
}

// FilterChecker evaluates a named filter. Implementations must not have side
// effects visible to the resolver.
type FilterChecker interface {
	CheckFilter(filterID string, fctx *FilterContext) bool
}

// FilterFunc adapts a function to FilterChecker.
type FilterFunc func(filterID string, fctx *FilterContext) bool

// CheckFilter implements FilterChecker.
func (f FilterFunc) CheckFilter(filterID string, fctx *FilterContext) bool {
	return f(filterID, fctx)
}

// RuleResolver decides which mappings apply to a record.
type RuleResolver struct {
	rules    *RuleRegistry
	mappings *MappingRegistry
	filters  FilterChecker
	logger   *zap.Logger
}

// NewRuleResolver creates a resolver over the given registries.
func NewRuleResolver(rules *RuleRegistry, mappings *MappingRegistry, filters FilterChecker, logger *zap.Logger) *RuleResolver {
	return &RuleResolver{
		rules:    rules,
		mappings: mappings,
		filters:  filters,
		logger:   logger,
	}
}

// Applies reports whether every filter of rule accepts the context.
// Evaluation stops at the first rejecting filter.
func (r *RuleResolver) Applies(rule *RuleDescriptor, fctx *FilterContext) bool {
	if !rule.Enabled {
		return false
	}
	for _, filterID := range rule.FilterIDs {
		if !r.filters.CheckFilter(filterID, fctx) {
			return false
		}
	}
	return true
}

// ApplicableRules returns the enabled rules accepting rec, highest priority first.
func (r *RuleResolver) ApplicableRules(rec Record, changes *Changes) []*RuleDescriptor {
	fctx := &FilterContext{Record: rec, Changes: changes}
	var out []*RuleDescriptor
	for _, rule := range r.rules.Enabled() {
		if r.Applies(rule, fctx) {
			out = append(out, rule)
		}
	}
	return out
}

// MappingIDs returns the deduplicated mapping ids of every applicable rule,
// sync and async alike, in ascending order.
func (r *RuleResolver) MappingIDs(rec Record, changes *Changes) []string {
	ids := make(map[string]struct{})
	for _, rule := range r.ApplicableRules(rec, changes) {
		for _, id := range rule.MappingIDs {
			ids[id] = struct{}{}
		}
	}
	return sortedIDs(ids)
}

// Resolve returns the synchronous mappings applying to rec, or nil when
// there are none. Asynchronous mappings are handed to event.
func (r *RuleResolver) Resolve(rec Record, changes *Changes, event EventContext) []*MappingDescriptor {
	syncIDs := make(map[string]struct{})
	asyncIDs := make(map[string]struct{})
	owners := make(map[string]string)

	for _, rule := range r.ApplicableRules(rec, changes) {
		target := syncIDs
		if rule.Async {
			target = asyncIDs
		}
		for _, id := range rule.MappingIDs {
			target[id] = struct{}{}
			if _, seen := owners[id]; !seen {
				owners[id] = rule.ID
			}
		}
	}

	if len(asyncIDs) > 0 && event != nil {
		if async := r.lookupAll(sortedIDs(asyncIDs), owners); len(async) > 0 {
			event.SetAsyncMappings(async)
			event.SetAsyncFlag(true)
		}
	}

	if len(syncIDs) == 0 {
		return nil
	}
	resolved := r.lookupAll(sortedIDs(syncIDs), owners)
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

// Lookup resolves mapping ids, logging and dropping unknown ones.
func (r *RuleResolver) Lookup(ids []string) []*MappingDescriptor {
	return r.lookupAll(ids, nil)
}

func (r *RuleResolver) lookupAll(ids []string, owners map[string]string) []*MappingDescriptor {
	out := make([]*MappingDescriptor, 0, len(ids))
	for _, id := range ids {
		d, ok := r.mappings.Lookup(id)
		if !ok {
			r.logger.Warn("Missing binary metadata mapping, check the rule's mapping ids",
				zap.String("mapping_id", id),
				zap.String("rule_id", owners[id]))
			continue
		}
		out = append(out, d)
	}
	return out
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

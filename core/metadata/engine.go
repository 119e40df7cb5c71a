package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"binary-metadata/core/utils"

	"go.uber.org/zap"
)

// Options tunes engine behavior.
type Options struct {
	// AbortOnError stops HandleUpdate and WriteMetadata at the first failing
	// mapping instead of collecting errors and carrying on.
	AbortOnError bool
}

// Engine reconciles record fields with metadata embedded in record blobs.
type Engine struct {
	mappings *MappingRegistry
	resolver *RuleResolver
	invoker  *Invoker
	logger   *zap.Logger
	opts     Options
}

// NewEngine creates a reconciliation engine.
func NewEngine(mappings *MappingRegistry, resolver *RuleResolver, invoker *Invoker, logger *zap.Logger, opts Options) *Engine {
	return &Engine{
		mappings: mappings,
		resolver: resolver,
		invoker:  invoker,
		logger:   logger,
		opts:     opts,
	}
}

// Resolver returns the rule resolver used by the engine.
func (e *Engine) Resolver() *RuleResolver {
	return e.resolver
}

// Mappings returns the mapping registry used by the engine.
func (e *Engine) Mappings() *MappingRegistry {
	return e.mappings
}

// ReadMetadata extracts metadata from blob. An empty processorID selects the
// default processor and an empty keys slice requests everything.
func (e *Engine) ReadMetadata(ctx context.Context, processorID string, blob *Blob, keys []string, ignorePrefix bool) (map[string]any, error) {
	return e.invoker.Read(ctx, processorID, blob, keys, ignorePrefix)
}

// WriteRaw embeds raw values into a copy of blob.
func (e *Engine) WriteRaw(ctx context.Context, processorID string, blob *Blob, values map[string]string, ignorePrefix bool) (*Blob, error) {
	return e.invoker.Write(ctx, processorID, blob, values, ignorePrefix)
}

// HandleSyncUpdate resolves the synchronous mappings for rec and reconciles them.
// Asynchronous mappings are handed to event.
func (e *Engine) HandleSyncUpdate(ctx context.Context, rec Record, changes *Changes, event EventContext) error {
	mappings := e.resolver.Resolve(rec, changes, event)
	if mappings == nil {
		return nil
	}
	return e.HandleUpdate(ctx, mappings, rec, changes, event)
}

// HandleUpdate applies the direction table to each mapping:
//
//	blob dirty, fields dirty   -> record to blob
//	blob dirty, fields clean   -> blob to record (full record refresh)
//	blob clean, fields dirty   -> record to blob
//	blob clean, fields clean   -> nothing
//
// The full record refresh runs at most once per call.
func (e *Engine) HandleUpdate(ctx context.Context, mappings []*MappingDescriptor, rec Record, changes *Changes, event EventContext) error {
	var session Session
	if event != nil {
		session = event.Session()
	}

	refreshed := false
	var errs []error
	for _, m := range mappings {
		var err error
		if rec.Blob(m.BlobPath) == nil {
			continue
		}

		if e.fieldsDirty(m, changes) {
			_, err = e.WriteFromRecordIfNeeded(ctx, m, rec, changes)
		} else if changes.BlobDirty(m.BlobPath) && !refreshed {
			refreshed, err = e.WriteFromBinaryIfNeeded(ctx, m, rec, changes, session)
		}

		if err != nil {
			err = fmt.Errorf("mapping %s: %w", m.ID, err)
			if e.opts.AbortOnError {
				return err
			}
			e.logger.Error("Binary metadata reconciliation failed",
				zap.String("mapping_id", m.ID),
				zap.String("record_id", rec.ID()),
				zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteFromRecordIfNeeded writes record field values into the blob when any
// mapped field is dirty. It reports whether a write happened.
func (e *Engine) WriteFromRecordIfNeeded(ctx context.Context, m *MappingDescriptor, rec Record, changes *Changes) (bool, error) {
	if rec.Blob(m.BlobPath) == nil || !e.fieldsDirty(m, changes) {
		return false, nil
	}
	if err := e.WriteRecordToBlob(ctx, m, rec); err != nil {
		return false, err
	}
	return true, nil
}

// WriteFromBinaryIfNeeded refreshes record fields from blobs when the blob
// of m is dirty and none of its mapped fields are. It reports whether the
// refresh ran.
func (e *Engine) WriteFromBinaryIfNeeded(ctx context.Context, m *MappingDescriptor, rec Record, changes *Changes, session Session) (bool, error) {
	if rec.Blob(m.BlobPath) == nil || !changes.BlobDirty(m.BlobPath) || e.fieldsDirty(m, changes) {
		return false, nil
	}
	return true, e.WriteMetadata(ctx, rec, changes, session)
}

// WriteRecordToBlob replaces the blob of m on rec with a copy carrying the
// current values of the mapped fields.
func (e *Engine) WriteRecordToBlob(ctx context.Context, m *MappingDescriptor, rec Record) error {
	blob := rec.Blob(m.BlobPath)
	if blob == nil {
		return fmt.Errorf("record has no blob at %s", m.BlobPath)
	}
	newBlob, err := e.invoker.Write(ctx, m.ProcessorID, blob, RecordValues(m, rec), m.IgnorePrefix)
	if err != nil {
		return err
	}
	rec.SetBlob(m.BlobPath, newBlob)
	e.logger.Debug("Wrote record fields into blob",
		zap.String("mapping_id", m.ID),
		zap.String("record_id", rec.ID()),
		zap.String("digest", newBlob.Digest()))
	return nil
}

// WriteBlob returns a copy of blob carrying the values of the fields mapped by
// mappingID. The record is not modified.
func (e *Engine) WriteBlob(ctx context.Context, blob *Blob, mappingID string, rec Record) (*Blob, error) {
	m, ok := e.mappings.Lookup(mappingID)
	if !ok {
		return nil, &LookupError{Kind: KindMapping, ID: mappingID}
	}
	return e.invoker.Write(ctx, m.ProcessorID, blob, RecordValues(m, rec), m.IgnorePrefix)
}

// WriteMetadata refreshes rec from its blobs for every mapping activated by
// an applicable rule, persisting rec after each mapping when it already
// exists in storage. Mappings whose fields are dirty in changes are left
// alone so that explicit edits win over embedded metadata.
func (e *Engine) WriteMetadata(ctx context.Context, rec Record, changes *Changes, session Session) error {
	ids := e.resolver.MappingIDs(rec, changes)
	if len(ids) == 0 {
		return nil
	}

	var errs []error
	for _, m := range e.resolver.Lookup(ids) {
		if e.fieldsDirty(m, changes) {
			e.logger.Debug("Skipping refresh of dirty mapping",
				zap.String("mapping_id", m.ID),
				zap.String("record_id", rec.ID()))
			continue
		}
		if err := e.writeBlobToRecord(ctx, m, rec, session); err != nil {
			err = fmt.Errorf("mapping %s: %w", m.ID, err)
			if e.opts.AbortOnError {
				return err
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteBlobToRecord extracts the metadata of one mapping into rec and
// persists rec when it already exists in storage.
func (e *Engine) WriteBlobToRecord(ctx context.Context, rec Record, session Session, mappingID string) error {
	m, ok := e.mappings.Lookup(mappingID)
	if !ok {
		return &LookupError{Kind: KindMapping, ID: mappingID}
	}
	return e.writeBlobToRecord(ctx, m, rec, session)
}

func (e *Engine) writeBlobToRecord(ctx context.Context, m *MappingDescriptor, rec Record, session Session) error {
	blob := rec.Blob(m.BlobPath)
	if blob == nil || len(m.Fields) == 0 {
		return nil
	}

	values, err := e.invoker.Read(ctx, m.ProcessorID, blob, m.MetadataKeys(), m.IgnorePrefix)
	if err != nil {
		return err
	}
	ApplyValues(m, rec, values)
	return e.persist(ctx, rec, session)
}

// persist saves rec only when it already has a storage identity. Saving new
// records is left to the caller.
func (e *Engine) persist(ctx context.Context, rec Record, session Session) error {
	if session == nil || rec.ID() == "" {
		e.logger.Debug("Record has no storage identity, not saving")
		return nil
	}
	exists, err := session.Exists(ctx, rec.ID())
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", rec.ID(), err)
	}
	if !exists {
		e.logger.Debug("Record not found in storage, not saving", zap.String("record_id", rec.ID()))
		return nil
	}
	if err := session.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save record %s: %w", rec.ID(), err)
	}
	return nil
}

// fieldsDirty checks dirty flags only; a field touched with an unchanged
// value still counts as dirty.
func (e *Engine) fieldsDirty(m *MappingDescriptor, changes *Changes) bool {
	return changes.AnyFieldDirty(m.FieldPaths())
}

// RecordValues reads the fields mapped by m from rec as strings keyed by
// metadata key. Missing fields become empty strings.
func RecordValues(m *MappingDescriptor, rec Record) map[string]string {
	values := make(map[string]string, len(m.Fields))
	for _, f := range m.Fields {
		v, _ := rec.FieldValue(f.FieldPath)
		values[f.MetadataKey] = utils.ToString(v)
	}
	return values
}

// ApplyValues stores extracted values into the fields mapped by m. Dates are
// kept as time.Time, everything else is stored as a string. Keys that are
// not mapped, or nil values, are ignored.
func ApplyValues(m *MappingDescriptor, rec Record, values map[string]any) {
	for _, f := range m.Fields {
		v, ok := values[f.MetadataKey]
		if !ok && m.IgnorePrefix {
			v, ok = values[StripPrefix(f.MetadataKey)]
		}
		if !ok || v == nil {
			continue
		}
		rec.SetFieldValue(f.FieldPath, Coerce(v))
	}
}

// Coerce converts an extracted value to the form stored on records.
func Coerce(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	default:
		return utils.ToString(v)
	}
}

// StripPrefix removes a "Group:" prefix from a metadata key.
func StripPrefix(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return key
}

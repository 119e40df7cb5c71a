package document

import (
	"context"
	"errors"
	"fmt"

	"binary-metadata/core/metadata"
	"binary-metadata/feature/document/models"

	"go.uber.org/zap"
)

// ErrInvalidInput is returned for malformed requests.
var ErrInvalidInput = errors.New("invalid input")

// CreateInput describes a new document.
type CreateInput struct {
	Type   string
	Fields map[string]any
	Blobs  map[string]*metadata.Blob
}

// UpdateInput describes a modification. Every listed field and blob is
// marked dirty, even when the value is unchanged.
type UpdateInput struct {
	Fields map[string]any
	Blobs  map[string]*metadata.Blob
}

// Empty reports whether the update carries no change.
func (in UpdateInput) Empty() bool {
	return len(in.Fields) == 0 && len(in.Blobs) == 0
}

// Options tunes the service.
type Options struct {
	// Strict fails writes when a mapping fails instead of saving the document.
	Strict bool
}

// Service keeps documents and their embedded metadata in sync.
type Service struct {
	store  *Store
	engine *metadata.Engine
	rules  *metadata.RuleRegistry
	worker *AsyncWorker
	locks  *keyedMutex
	opts   Options
	logger *zap.Logger
}

// NewService creates a document service.
func NewService(store *Store, engine *metadata.Engine, rules *metadata.RuleRegistry, opts Options, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		rules:  rules,
		locks:  newKeyedMutex(),
		opts:   opts,
		logger: logger,
	}
}

// UseWorker routes asynchronous mappings to w. Without a worker they run
// inline after the document is saved.
func (s *Service) UseWorker(w *AsyncWorker) {
	s.worker = w
}

// Get returns a stored document.
func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.store.Get(ctx, id)
}

// Create stores a new document after reconciling its metadata.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Document, error) {
	if in.Type == "" {
		return nil, fmt.Errorf("%w: document type is required", ErrInvalidInput)
	}

	rec := NewRecord(&models.Document{Type: in.Type})
	changes := applyInput(rec, in.Fields, in.Blobs)

	// The record has no identity yet, so the engine does not persist it.
	event := metadata.NewEvent(nil)
	if err := s.reconcile(ctx, rec, changes, event); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.scheduleAsync(ctx, rec, changes, event)
	return rec.Document(), nil
}

// Update applies in to a stored document after reconciling its metadata.
// Load, reconcile and save run under the document lock.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Document, error) {
	if in.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}

	rec, changes, event, err := s.update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	// Inline async work takes the lock again.
	s.scheduleAsync(ctx, rec, changes, event)
	return rec.Document(), nil
}

func (s *Service) update(ctx context.Context, id string, in UpdateInput) (*Record, *metadata.Changes, *metadata.Event, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}
	changes := applyInput(rec, in.Fields, in.Blobs)

	// The document is saved once below, after every mapping ran.
	event := metadata.NewEvent(nil)
	if err := s.reconcile(ctx, rec, changes, event); err != nil {
		return nil, nil, nil, err
	}

	if err := s.store.Save(ctx, rec); err != nil {
		return nil, nil, nil, err
	}
	return rec, changes, event, nil
}

// Refresh re-extracts every applicable mapping from the document blobs.
func (s *Service) Refresh(ctx context.Context, id string) (*models.Document, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.engine.WriteMetadata(ctx, rec, nil, s.store); err != nil {
		if s.opts.Strict {
			return nil, err
		}
		s.logger.Warn("Metadata refresh finished with errors", zap.String("document_id", id), zap.Error(err))
	}
	return rec.Document(), nil
}

// ReadMetadata extracts metadata from a document blob without modifying it.
func (s *Service) ReadMetadata(ctx context.Context, id, blobPath, processorID string, keys []string, ignorePrefix bool) (*models.MetadataResponse, error) {
	if blobPath == "" {
		blobPath = metadata.DefaultBlobPath
	}

	rec, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	blob := rec.Blob(blobPath)
	if blob == nil {
		return nil, fmt.Errorf("%w: document %s has no blob at %s", ErrInvalidInput, id, blobPath)
	}

	values, err := s.engine.ReadMetadata(ctx, processorID, blob, keys, ignorePrefix)
	if err != nil {
		return nil, err
	}

	return &models.MetadataResponse{
		DocumentID: id,
		BlobPath:   blobPath,
		Processor:  processorID,
		Metadata:   values,
	}, nil
}

// Mappings lists the registered mapping descriptors.
func (s *Service) Mappings() []*metadata.MappingDescriptor {
	return s.engine.Mappings().All()
}

// Rules lists the registered rule descriptors.
func (s *Service) Rules() []*metadata.RuleDescriptor {
	return s.rules.All()
}

// ProcessAsync runs a queued job: it reloads the document, reconciles the
// job's mappings and saves the result.
func (s *Service) ProcessAsync(ctx context.Context, job Job) error {
	unlock := s.locks.Lock(job.DocumentID)
	defer unlock()

	rec, err := s.store.Load(ctx, job.DocumentID)
	if err != nil {
		return err
	}

	mappings := s.engine.Resolver().Lookup(job.MappingIDs)
	if len(mappings) == 0 {
		return nil
	}

	event := metadata.NewEvent(s.store)
	if err := s.engine.HandleUpdate(ctx, mappings, rec, job.Changes, event); err != nil {
		if s.opts.Strict {
			return err
		}
		s.logger.Warn("Async reconciliation finished with errors", zap.String("document_id", job.DocumentID), zap.Error(err))
	}
	return s.store.Save(ctx, rec)
}

func (s *Service) reconcile(ctx context.Context, rec *Record, changes *metadata.Changes, event metadata.EventContext) error {
	err := s.engine.HandleSyncUpdate(ctx, rec, changes, event)
	if err == nil {
		return nil
	}
	if s.opts.Strict {
		return fmt.Errorf("metadata reconciliation failed: %w", err)
	}
	s.logger.Warn("Metadata reconciliation finished with errors",
		zap.String("document_id", rec.ID()),
		zap.Error(err))
	return nil
}

func (s *Service) scheduleAsync(ctx context.Context, rec *Record, changes *metadata.Changes, event *metadata.Event) {
	if !event.Async() {
		return
	}

	ids := make([]string, 0, len(event.AsyncMappings()))
	for _, m := range event.AsyncMappings() {
		ids = append(ids, m.ID)
	}
	job := Job{DocumentID: rec.ID(), MappingIDs: ids, Changes: changes}
	l := s.logger.With(zap.String("document_id", rec.ID()), zap.Strings("mapping_ids", ids))

	if s.worker != nil {
		err := s.worker.Enqueue(job)
		if err == nil {
			l.Debug("Async mappings queued")
			return
		}
		l.Warn("Async mappings not queued, running inline", zap.Error(err))
	}

	if err := s.ProcessAsync(ctx, job); err != nil {
		l.Error("Inline async reconciliation failed", zap.Error(err))
	}
}

// applyInput writes fields and blobs onto rec and records them as dirty.
func applyInput(rec *Record, fields map[string]any, blobs map[string]*metadata.Blob) *metadata.Changes {
	changes := metadata.NewChanges()
	for path, v := range fields {
		rec.SetFieldValue(path, v)
		changes.MarkField(path)
	}
	for path, b := range blobs {
		rec.SetBlob(path, b)
		changes.MarkBlob(path)
	}
	return changes
}

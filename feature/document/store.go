package document

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"binary-metadata/core/database"
	"binary-metadata/core/metadata"
	"binary-metadata/feature/document/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// blobFetchLimit caps concurrent blob downloads per document.
const blobFetchLimit = 4

// Store persists documents in the database and their blobs in object storage.
// It implements metadata.Session.
type Store struct {
	db     *gorm.DB
	blobs  *BlobStore
	logger *zap.Logger
}

// NewStore creates a document store.
func NewStore(db *gorm.DB, blobs *BlobStore, logger *zap.Logger) *Store {
	return &Store{db: db, blobs: blobs, logger: logger}
}

// Migrate creates or updates the documents table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Document{}); err != nil {
		return fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return nil
}

// MissingColumns reports columns of the documents table that are absent.
func (s *Store) MissingColumns() ([]string, error) {
	return database.MissingColumns(s.db, models.Document{}.TableName(), models.Columns)
}

// Exists implements metadata.Session.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Document{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", id, err)
	}
	return count > 0, nil
}

// Get returns the stored document without loading blob contents.
func (s *Store) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}
	return &doc, nil
}

// Load returns the document as a record with every blob downloaded.
func (s *Store) Load(ctx context.Context, id string) (*Record, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := NewRecord(doc)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(blobFetchLimit)
	for path, ref := range doc.Blobs {
		g.Go(func() error {
			blob, err := s.blobs.Get(gctx, ref)
			if err != nil {
				return fmt.Errorf("blob %s: %w", path, err)
			}
			mu.Lock()
			rec.blobs[path] = blob
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", id, err)
	}

	return rec, nil
}

// Create stores a new record, assigning an id when it has none.
func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec.doc.ID == "" {
		rec.doc.ID = uuid.NewString()
	}
	if err := s.uploadPending(ctx, rec); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec.doc).Error; err != nil {
		return fmt.Errorf("failed to create document %s: %w", rec.doc.ID, err)
	}
	s.logger.Debug("Document created", zap.String("document_id", rec.doc.ID))
	return nil
}

// Save implements metadata.Session. Replaced blobs are uploaded first.
func (s *Store) Save(ctx context.Context, rec metadata.Record) error {
	r, ok := rec.(*Record)
	if !ok {
		return fmt.Errorf("unsupported record type %T", rec)
	}
	if err := s.uploadPending(ctx, r); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Save(r.doc).Error; err != nil {
		return fmt.Errorf("failed to save document %s: %w", r.doc.ID, err)
	}
	s.logger.Debug("Document saved", zap.String("document_id", r.doc.ID))
	return nil
}

func (s *Store) uploadPending(ctx context.Context, rec *Record) error {
	for _, path := range rec.pendingBlobs() {
		blob := rec.blobs[path]
		ref, err := s.blobs.Put(ctx, blob)
		if err != nil {
			return fmt.Errorf("blob %s: %w", path, err)
		}
		stored := *blob
		stored.Key = ref.Key
		rec.blobs[path] = &stored
		rec.doc.Blobs[path] = ref
	}
	return nil
}

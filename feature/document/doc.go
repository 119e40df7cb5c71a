// Package document implements the documents feature: stored records whose
// fields are kept in sync with the metadata embedded in their blobs.
//
// # Storage
//
// Documents live in the "documents" table (GORM, MySQL or SQLite) with their
// fields and blob references as JSON columns. Blob contents are stored in
// object storage under content-addressed keys (blobs/<aa>/<blake3 digest>),
// so identical uploads are stored once. Store implements metadata.Session.
//
// # Write Flow
//
// Create and Update turn the request into a metadata.Changes value (every
// provided field and blob is dirty), run the metadata engine synchronously,
// then save the document once. Mappings of asynchronous rules are queued to
// the AsyncWorker pool, which reloads the document, reconciles those mappings
// and saves again. Without a worker, or when the queue is full, they run
// inline after the save.
//
// # Components
//
//   - Store / BlobStore: persistence of documents and blob contents.
//   - Service: create, update, refresh, metadata reads and descriptor listing.
//   - AsyncWorker: errgroup backed pool for asynchronous mappings.
//   - Handler: HTTP endpoints.
//   - Feature: registers the routes with the loader.
//
// # HTTP Endpoints
//
//   - POST  /documents                       : Create a document (JSON or multipart).
//   - GET   /documents/:id                   : Get a document.
//   - PATCH /documents/:id                   : Update fields and/or replace a blob.
//   - GET   /documents/:id/metadata          : Read blob metadata without storing it.
//   - POST  /documents/:id/metadata/refresh  : Re-extract every applicable mapping.
//   - GET   /metadata/mappings               : List mapping descriptors.
//   - GET   /metadata/rules                  : List rule descriptors.
package document

package metadata

import "context"

// Record is the structured entity whose fields mirror embedded metadata.
type Record interface {
	// ID returns the storage identity, or "" for a record that was never persisted.
	ID() string

	// Type returns the record type (e.g. "Picture"), used by filters.
	Type() string

	// FieldValue returns the value stored at path.
	FieldValue(path string) (any, bool)

	// SetFieldValue stores value at path.
	SetFieldValue(path string, value any)

	// Blob returns the blob stored at path, or nil.
	Blob(path string) *Blob

	// SetBlob replaces the blob stored at path.
	SetBlob(path string, blob *Blob)
}

// Session persists records.
type Session interface {
	// Exists reports whether a record with id is present in storage.
	Exists(ctx context.Context, id string) (bool, error)

	// Save persists the record.
	Save(ctx context.Context, rec Record) error
}

// EventContext carries per-event state between the resolver, the engine and
// the async pipeline.
type EventContext interface {
	// Session returns the session used to persist records for this event.
	Session() Session

	// SetAsyncMappings hands mappings over to the asynchronous pipeline.
	SetAsyncMappings(mappings []*MappingDescriptor)

	// SetAsyncFlag marks the event as requiring asynchronous processing.
	SetAsyncFlag(async bool)
}

// Event is the default EventContext implementation.
type Event struct {
	session       Session
	asyncMappings []*MappingDescriptor
	async         bool
}

// NewEvent creates an event bound to session.
func NewEvent(session Session) *Event {
	return &Event{session: session}
}

// Session implements EventContext.
func (e *Event) Session() Session {
	return e.session
}

// SetAsyncMappings implements EventContext.
func (e *Event) SetAsyncMappings(mappings []*MappingDescriptor) {
	e.asyncMappings = mappings
}

// SetAsyncFlag implements EventContext.
func (e *Event) SetAsyncFlag(async bool) {
	e.async = async
}

// AsyncMappings returns the mappings handed over for asynchronous processing.
func (e *Event) AsyncMappings() []*MappingDescriptor {
	return e.asyncMappings
}

// Async reports whether asynchronous processing was requested.
func (e *Event) Async() bool {
	return e.async
}

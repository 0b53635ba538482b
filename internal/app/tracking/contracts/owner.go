package contracts

import "context"

// RecordID identifies an owner record inside a RecordTable.
type RecordID uint64

// OwnerRecord is the state manager of a managed record whose field holds a
// proxied container.
type OwnerRecord interface {
	// Dirty marks the field as modified.
	Dirty(field int)

	// Removed reports an element (or a map key when isKey is set) that left
	// the field's container, so inverse relationships can be maintained.
	Removed(field int, value any, isKey bool)

	// IsDelayed reports whether the field's data is still unloaded.
	IsDelayed(field int) bool

	// LoadDelayedField materializes the field's data into req.Sink.
	LoadDelayedField(ctx context.Context, req LoadRequest) error
}

// RecordTable resolves record ids to live owner records.
type RecordTable interface {
	Lookup(id RecordID) (OwnerRecord, bool)
}

// Handle is a non-owning reference to an owner record. It holds the table and
// the id, never the record itself, so a proxy cannot keep its owner alive.
// The zero Handle refers to no record.
type Handle struct {
	table RecordTable
	id    RecordID
}

// NewHandle returns a handle to record id in table.
func NewHandle(table RecordTable, id RecordID) Handle {
	return Handle{table: table, id: id}
}

func (h Handle) IsZero() bool { return h.table == nil }

func (h Handle) ID() RecordID { return h.id }

// Resolve returns the record, or nil when the handle is zero or the record
// has been evicted from its table.
func (h Handle) Resolve() OwnerRecord {
	if h.table == nil {
		return nil
	}
	rec, ok := h.table.Lookup(h.id)
	if !ok {
		return nil
	}
	return rec
}

// ElementSink receives loaded elements and writes them straight into a
// proxy's backing container, bypassing interception.
type ElementSink interface {
	Append(elem any) error
}

// LoadRequest asks an owner to materialize one delayed field.
type LoadRequest struct {
	Field int
	// Session is a transient session opened for this load when the proxy is
	// detached; nil means the owner should use its own.
	Session Session
	Sink    ElementSink
}

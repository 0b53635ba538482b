package contracts

import "context"

// Session is a unit of store access. Detached delayed proxies open one just
// for the duration of a load.
type Session interface {
	ID() string
	IsClosed() bool
	Close() error
}

// SessionOpener opens transient sessions.
type SessionOpener interface {
	OpenSession(ctx context.Context) (Session, error)
}

// FieldLoad describes one field to read from the store.
type FieldLoad struct {
	OwnerKey string
	Field    string
	Decode   func(raw []byte) (any, error)
	Sink     ElementSink
}

// FieldLoader reads a container field's elements from the store.
type FieldLoader interface {
	LoadField(ctx context.Context, sess Session, req FieldLoad) error
}

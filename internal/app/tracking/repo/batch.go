package repo

import (
	"context"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
)

// FieldFlush is the planned write of one record field.
type FieldFlush struct {
	Owner string
	Field string
	Flush

	tracker tracker.ChangeTracker
}

// Batch collects field flushes that commit together.
type Batch struct {
	flushes []FieldFlush
}

func NewBatch() *Batch {
	return &Batch{}
}

// AddCollection plans the write of a collection field.
func AddCollection[E comparable](ctx context.Context, b *Batch, owner, field string, p proxy.ProxyCollection[E]) error {
	f, err := PlanCollection(ctx, p)
	if err != nil {
		return err
	}
	b.add(owner, field, f, p.ChangeTracker())
	return nil
}

// AddMap plans the write of a map field.
func AddMap[K comparable, V any](b *Batch, owner, field string, p proxy.ProxyMap[K, V]) error {
	f, err := PlanMap(p)
	if err != nil {
		return err
	}
	b.add(owner, field, f, p.ChangeTracker())
	return nil
}

func (b *Batch) add(owner, field string, f Flush, ct tracker.ChangeTracker) {
	if f.Strategy == StrategyNone {
		return
	}
	b.flushes = append(b.flushes, FieldFlush{Owner: owner, Field: field, Flush: f, tracker: ct})
}

func (b *Batch) Flushes() []FieldFlush { return b.flushes }

func (b *Batch) Empty() bool { return len(b.flushes) == 0 }

// Done advances the trackers once the batch is committed.
func (b *Batch) Done() {
	for _, f := range b.flushes {
		f.Done(f.tracker)
	}
	b.flushes = nil
}

// EntryReader streams the stored entries of a map field as encoded key and
// value payloads.
type EntryReader interface {
	ReadEntries(ctx context.Context, sess contracts.Session, owner, field string, fn func(key, value []byte) error) error
}

// Store is what a record needs from a backend: loading delayed fields,
// reading maps and committing batches.
type Store interface {
	contracts.FieldLoader
	EntryReader
	Commit(ctx context.Context, b *Batch) error
}

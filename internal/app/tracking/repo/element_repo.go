package repo

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"github.com/charmbracelet/log"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/models/m_element"
	"github.com/light-bringer/changeproxy/internal/models/m_entry"
	"github.com/light-bringer/changeproxy/internal/pkg/committer"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
	"github.com/light-bringer/changeproxy/internal/pkg/query"
)

// ElementRepo stores container fields in Spanner, one row per element or
// map entry.
type ElementRepo struct {
	client    *spanner.Client
	elements  *m_element.Model
	entries   *m_entry.Model
	committer *committer.Committer
	logger    *log.Logger
}

var _ Store = (*ElementRepo)(nil)

// NewElementRepo creates an ElementRepo. A nil logger uses the process
// default.
func NewElementRepo(client *spanner.Client, logger *log.Logger) *ElementRepo {
	if logger == nil {
		logger = logging.Default()
	}
	return &ElementRepo{
		client:    client,
		elements:  m_element.NewModel(),
		entries:   m_entry.NewModel(),
		committer: committer.NewCommitter(client),
		logger:    logger,
	}
}

// reader returns the snapshot to read from: the session's when it is one of
// ours, a single-use one otherwise.
func (r *ElementRepo) reader(sess contracts.Session) (*spanner.ReadOnlyTransaction, error) {
	s, ok := sess.(*SpannerSession)
	if !ok {
		return r.client.Single(), nil
	}
	if s.IsClosed() {
		return nil, fmt.Errorf("session %s: %w", s.ID(), ErrSessionClosed)
	}
	return s.txn, nil
}

func elementsOf(owner, field string) *query.Builder {
	return query.From(m_element.TableName).
		Where(query.Eq(m_element.OwnerKey, owner)).
		Where(query.Eq(m_element.Field, field))
}

func loadStatement(owner, field string) spanner.Statement {
	return elementsOf(owner, field).
		Select(m_element.Payload).
		OrderBy(m_element.Seq, query.Asc).
		Build()
}

func entriesStatement(owner, field string) spanner.Statement {
	return query.From(m_entry.TableName).
		Select(m_entry.KeyPayload, m_entry.ValuePayload).
		Where(query.Eq(m_entry.OwnerKey, owner)).
		Where(query.Eq(m_entry.Field, field)).
		OrderBy(m_entry.EntryKey, query.Asc).
		Build()
}

// LoadField streams a field's elements in sequence order into req.Sink.
func (r *ElementRepo) LoadField(ctx context.Context, sess contracts.Session, req contracts.FieldLoad) error {
	txn, err := r.reader(sess)
	if err != nil {
		return err
	}

	iter := txn.Query(ctx, loadStatement(req.OwnerKey, req.Field))
	defer iter.Stop()

	n := 0
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to load %s.%s: %w", req.OwnerKey, req.Field, err)
		}

		var payload []byte
		if err := row.Column(0, &payload); err != nil {
			return fmt.Errorf("failed to parse element: %w", err)
		}
		elem, err := req.Decode(payload)
		if err != nil {
			return err
		}
		if err := req.Sink.Append(elem); err != nil {
			return err
		}
		n++
	}

	r.logger.Debug("elements loaded", "owner", req.OwnerKey, "field", req.Field, "rows", n)
	return nil
}

// ReadEntries streams a map field's entries in key order.
func (r *ElementRepo) ReadEntries(ctx context.Context, sess contracts.Session, owner, field string, fn func(key, value []byte) error) error {
	txn, err := r.reader(sess)
	if err != nil {
		return err
	}

	iter := txn.Query(ctx, entriesStatement(owner, field))
	defer iter.Stop()

	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load entries of %s.%s: %w", owner, field, err)
		}

		var key, value []byte
		if err := row.Columns(&key, &value); err != nil {
			return fmt.Errorf("failed to parse entry: %w", err)
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}
}

// ReadElement reads one element row by key.
func (r *ElementRepo) ReadElement(ctx context.Context, owner, field, elemKey string) (*m_element.Data, error) {
	row, err := r.client.Single().ReadRow(ctx, m_element.TableName,
		spanner.Key{owner, field, elemKey}, r.elements.ReadColumns())
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, ErrElementNotFound
		}
		return nil, fmt.Errorf("failed to read element: %w", err)
	}

	var data m_element.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse element: %w", err)
	}
	return &data, nil
}

// CountElements returns the number of stored elements of a field.
func (r *ElementRepo) CountElements(ctx context.Context, sess contracts.Session, owner, field string) (int64, error) {
	txn, err := r.reader(sess)
	if err != nil {
		return 0, err
	}

	iter := txn.Query(ctx, elementsOf(owner, field).Count().Build())
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to count elements: %w", err)
	}
	var n int64
	if err := row.Column(0, &n); err != nil {
		return 0, fmt.Errorf("failed to parse count: %w", err)
	}
	return n, nil
}

// Mutations converts a field flush into Spanner mutations.
func (r *ElementRepo) Mutations(f FieldFlush) []*spanner.Mutation {
	muts := make([]*spanner.Mutation, 0, len(f.Writes))
	for _, w := range f.Writes {
		muts = append(muts, r.mutation(f.Owner, f.Field, f.Target, w))
	}
	return muts
}

func (r *ElementRepo) mutation(owner, field string, target Target, w Write) *spanner.Mutation {
	if target == TargetEntries {
		switch w.Op {
		case OpClear:
			return r.entries.DeleteFieldMut(owner, field)
		case OpDelete:
			return r.entries.DeleteMut(owner, field, w.Key)
		}
		return r.entries.UpsertMut(&m_entry.Data{
			OwnerKey:     owner,
			Field:        field,
			EntryKey:     w.Key,
			KeyPayload:   w.KeyPayload,
			ValuePayload: w.Payload,
		})
	}

	switch w.Op {
	case OpClear:
		return r.elements.DeleteFieldMut(owner, field)
	case OpDelete:
		return r.elements.DeleteMut(owner, field, w.Key)
	}
	return r.elements.UpsertMut(&m_element.Data{
		OwnerKey: owner,
		Field:    field,
		ElemKey:  w.Key,
		Seq:      w.Seq,
		Payload:  w.Payload,
	})
}

// Plan collects the mutations of a batch in order.
func (r *ElementRepo) Plan(b *Batch) *committer.CommitPlan {
	plan := committer.NewPlan()
	for _, f := range b.Flushes() {
		plan.AddMultiple(r.Mutations(f))
	}
	return plan
}

// Commit applies a batch atomically and advances its trackers.
func (r *ElementRepo) Commit(ctx context.Context, b *Batch) error {
	plan := r.Plan(b)
	if err := r.committer.Apply(ctx, plan); err != nil {
		return err
	}
	r.logger.Debug("batch committed", "fields", len(b.Flushes()), "mutations", plan.Count())
	b.Done()
	return nil
}

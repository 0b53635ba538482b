package repo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
	"github.com/light-bringer/changeproxy/internal/app/tracking/tracker"
)

// Target is the table a flush writes to.
type Target int8

const (
	TargetElements Target = iota
	TargetEntries
)

// Op is a row operation.
type Op int8

const (
	OpUpsert Op = iota
	OpDelete
	// OpClear removes every row of the field.
	OpClear
)

// Write is one row operation of a flush.
type Write struct {
	Op      Op
	Key     string
	Seq     int64
	Payload []byte
	// KeyPayload is the encoded map key; nil for collection elements.
	KeyPayload []byte
}

// Strategy names how a flush was planned.
type Strategy string

const (
	// StrategyNone means nothing changed.
	StrategyNone Strategy = "none"
	// StrategyDelta writes only the tracker's added and removed elements.
	StrategyDelta Strategy = "delta"
	// StrategyAppend appends added elements of an ordered collection at
	// the tracker's sequence.
	StrategyAppend Strategy = "append"
	// StrategyRewrite deletes the field and writes every element again.
	StrategyRewrite Strategy = "rewrite"
)

// Flush is the planned write of one container field.
type Flush struct {
	Target   Target
	Strategy Strategy
	Writes   []Write
	// NextSequence is the tracker sequence once the writes are committed,
	// or -1 to leave it alone.
	NextSequence int
}

// Done hands the new sequence to ct after the writes were committed.
func (f Flush) Done(ct tracker.ChangeTracker) {
	if ct != nil && f.NextSequence >= 0 {
		ct.SetNextSequence(f.NextSequence)
	}
}

// keyedByElement reports whether a collection stores its rows keyed by the
// encoded element, as sets do, rather than by position.
func keyedByElement(p any) bool {
	k, ok := p.(proxy.ElementKeyed)
	return ok && k.KeyedByElement()
}

func seqKey(seq int64) string {
	return fmt.Sprintf("%012d", seq)
}

func encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return raw, nil
}

func upsertElement(e any, seq int64, byElement bool) (Write, error) {
	raw, err := encode(e)
	if err != nil {
		return Write{}, err
	}
	key := seqKey(seq)
	if byElement {
		key = string(raw)
	}
	return Write{Op: OpUpsert, Key: key, Seq: seq, Payload: raw}, nil
}

// PlanCollection decides how to write p. Unordered tracked collections
// flush their deltas without loading; ordered ones load first so positions
// are known, append when only additions were made and otherwise rewrite.
func PlanCollection[E comparable](ctx context.Context, p proxy.ProxyCollection[E]) (Flush, error) {
	byElement := keyedByElement(p)
	ct := p.CollectionTracker()
	if ct != nil && ct.IsTracking() && !ct.Ordered() {
		return planDelta(ct, byElement)
	}

	if d, ok := p.(proxy.DelayedProxy); ok && !d.IsLoaded() {
		if err := d.Load(ctx); err != nil {
			return Flush{}, err
		}
	}
	if ct != nil && ct.IsTracking() && len(ct.Removed()) == 0 && len(ct.Changed()) == 0 {
		return planAppend(ct, byElement)
	}
	return planRewrite(p.Values(), byElement)
}

func planDelta[E comparable](ct *tracker.CollectionTracker[E], byElement bool) (Flush, error) {
	f := Flush{Target: TargetElements, Strategy: StrategyDelta, NextSequence: -1}
	for _, e := range append(ct.Added(), ct.Changed()...) {
		w, err := upsertElement(e, 0, byElement)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, w)
	}
	for _, e := range ct.Removed() {
		w, err := upsertElement(e, 0, byElement)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, Write{Op: OpDelete, Key: w.Key})
	}
	if len(f.Writes) == 0 {
		f.Strategy = StrategyNone
	}
	return f, nil
}

func planAppend[E comparable](ct *tracker.CollectionTracker[E], byElement bool) (Flush, error) {
	added := ct.Added()
	next := ct.NextSequence()
	f := Flush{Target: TargetElements, Strategy: StrategyAppend, NextSequence: next + len(added)}
	for i, e := range added {
		w, err := upsertElement(e, int64(next+i), byElement)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, w)
	}
	if len(f.Writes) == 0 {
		f.Strategy = StrategyNone
		f.NextSequence = -1
	}
	return f, nil
}

func planRewrite[E comparable](elems []E, byElement bool) (Flush, error) {
	f := Flush{
		Target:       TargetElements,
		Strategy:     StrategyRewrite,
		Writes:       make([]Write, 0, len(elems)+1),
		NextSequence: len(elems),
	}
	f.Writes = append(f.Writes, Write{Op: OpClear})
	for i, e := range elems {
		w, err := upsertElement(e, int64(i), byElement)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, w)
	}
	return f, nil
}

// PlanMap decides how to write a map field. Key-tracked maps write their
// changed entries; anything else is rewritten.
func PlanMap[K comparable, V any](p proxy.ProxyMap[K, V]) (Flush, error) {
	mt := p.MapTracker()
	if mt == nil || !mt.IsTracking() || !mt.TrackKeys() {
		return planMapRewrite(p)
	}

	f := Flush{Target: TargetEntries, Strategy: StrategyDelta, NextSequence: -1}
	for _, k := range append(mt.Added(), mt.Changed()...) {
		key := k.(K)
		v, ok := p.Get(key)
		if !ok {
			continue
		}
		w, err := upsertEntry(key, v)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, w)
	}
	for _, k := range mt.Removed() {
		raw, err := encode(k)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, Write{Op: OpDelete, Key: string(raw)})
	}
	if len(f.Writes) == 0 {
		f.Strategy = StrategyNone
	}
	return f, nil
}

func planMapRewrite[K comparable, V any](p proxy.ProxyMap[K, V]) (Flush, error) {
	f := Flush{
		Target:       TargetEntries,
		Strategy:     StrategyRewrite,
		Writes:       []Write{{Op: OpClear}},
		NextSequence: -1,
	}
	for k, v := range p.All() {
		w, err := upsertEntry(k, v)
		if err != nil {
			return Flush{}, err
		}
		f.Writes = append(f.Writes, w)
	}
	return f, nil
}

func upsertEntry(k, v any) (Write, error) {
	key, err := encode(k)
	if err != nil {
		return Write{}, err
	}
	val, err := encode(v)
	if err != nil {
		return Write{}, err
	}
	return Write{Op: OpUpsert, Key: string(key), Payload: val, KeyPayload: key}, nil
}

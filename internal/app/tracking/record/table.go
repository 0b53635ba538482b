package record

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/light-bringer/changeproxy/internal/app/tracking/contracts"
	"github.com/light-bringer/changeproxy/internal/pkg/logging"
)

// Table is the set of live records that proxies may refer to. Proxies hold
// a handle into the table, so evicting a record cuts them loose without
// touching the proxies.
type Table struct {
	mu      sync.RWMutex
	next    contracts.RecordID
	records map[contracts.RecordID]*StateManager
	keys    map[string]contracts.RecordID
	logger  *log.Logger
}

var _ contracts.RecordTable = (*Table)(nil)

// NewTable creates an empty table. A nil logger uses the process default.
func NewTable(logger *log.Logger) *Table {
	if logger == nil {
		logger = logging.Default()
	}
	return &Table{
		records: make(map[contracts.RecordID]*StateManager),
		keys:    make(map[string]contracts.RecordID),
		logger:  logger,
	}
}

// Register adds a record with the given store key. An empty key is replaced
// by a random UUID. The loader serves the record's delayed fields and may be
// nil when none are delayed.
func (t *Table) Register(key string, fields []Field, loader contracts.FieldLoader) (*StateManager, error) {
	if key == "" {
		key = uuid.NewString()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.keys[key]; ok {
		return nil, errors.Wrapf(ErrDuplicateKey, "%q", key)
	}
	t.next++
	sm := &StateManager{
		table:   t,
		id:      t.next,
		key:     key,
		fields:  fields,
		values:  make([]any, len(fields)),
		delayed: make([]bool, len(fields)),
		dirty:   newDirtySet(),
		loader:  loader,
		logger:  t.logger,
	}
	t.records[sm.id] = sm
	t.keys[key] = sm.id
	t.logger.Debug("record registered", "record", key, "id", sm.id, "fields", len(fields))
	return sm, nil
}

// Lookup resolves a handle's id.
func (t *Table) Lookup(id contracts.RecordID) (contracts.OwnerRecord, bool) {
	sm, ok := t.Get(id)
	if !ok {
		return nil, false
	}
	return sm, true
}

func (t *Table) Get(id contracts.RecordID) (*StateManager, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	sm, ok := t.records[id]
	return sm, ok
}

func (t *Table) ByKey(key string) (*StateManager, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.keys[key]
	if !ok {
		return nil, false
	}
	return t.records[id], true
}

// Evict removes a record. Handles to it resolve to nil afterwards.
func (t *Table) Evict(id contracts.RecordID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	sm, ok := t.records[id]
	if !ok {
		return false
	}
	delete(t.records, id)
	delete(t.keys, sm.key)
	t.logger.Debug("record evicted", "record", sm.key, "id", id)
	return true
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

package manager

import (
	"github.com/cockroachdb/errors"

	"github.com/light-bringer/changeproxy/internal/app/tracking/proxy"
)

// Kind names a container type a record field can declare. The abstract kinds
// resolve to a default concrete kind.
type Kind string

const (
	KindCollection Kind = "collection"
	KindList       Kind = "list"
	KindQueue      Kind = "queue"
	KindSet        Kind = "set"
	KindSortedSet  Kind = "sorted_set"
	KindMap        Kind = "map"
	KindSortedMap  Kind = "sorted_map"

	KindArrayList     Kind = "array_list"
	KindHashSet       Kind = "hash_set"
	KindLinkedHashSet Kind = "linked_hash_set"
	KindTreeSet       Kind = "tree_set"
	KindHashMap       Kind = "hash_map"
	KindLinkedHashMap Kind = "linked_hash_map"
	KindTreeMap       Kind = "tree_map"
)

var defaults = map[Kind]Kind{
	KindCollection: KindArrayList,
	KindList:       KindArrayList,
	KindQueue:      KindArrayList,
	KindSet:        KindHashSet,
	KindSortedSet:  KindTreeSet,
	KindMap:        KindHashMap,
	KindSortedMap:  KindTreeMap,
}

var concrete = map[Kind]bool{
	KindArrayList:     true,
	KindHashSet:       true,
	KindLinkedHashSet: true,
	KindTreeSet:       true,
	KindHashMap:       true,
	KindLinkedHashMap: true,
	KindTreeMap:       true,
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := defaults[k]; ok || concrete[k] {
		return k, nil
	}
	return "", errors.Wrapf(proxy.ErrUnsupported, "unknown container kind %q", s)
}

// Concrete resolves an abstract kind to its default implementation.
func (k Kind) Concrete() (Kind, bool) {
	if d, ok := defaults[k]; ok {
		return d, true
	}
	return k, concrete[k]
}

func (k Kind) IsMap() bool {
	c, _ := k.Concrete()
	return c == KindHashMap || c == KindLinkedHashMap || c == KindTreeMap
}

func (k Kind) Sorted() bool {
	c, _ := k.Concrete()
	return c == KindTreeSet || c == KindTreeMap
}

// Ordered reports whether iteration follows insertion order.
func (k Kind) Ordered() bool {
	c, _ := k.Concrete()
	return c == KindArrayList || c == KindLinkedHashSet
}

func (k Kind) AllowsDuplicates() bool {
	c, _ := k.Concrete()
	return c == KindArrayList
}

package index

import (
	"sync"

	"github.com/matzehuels/symbol/pkg/errors"
)

type entry[T comparable] struct {
	value  T
	weight Weight[T]
	key    float64
	seq    uint64
}

// less orders entries by key, then by insertion sequence.
func less[T comparable](a, b *entry[T]) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.seq < b.seq
}

type color bool

const (
	red   color = false
	black color = true
)

type node[T comparable] struct {
	entry               *entry[T]
	left, right, parent *node[T]
	height              int   // maintained by the height discipline
	color               color // maintained by the color discipline
}

// Tree is a weight-ordered balanced binary search tree.
//
// The zero value is not usable - use New to create a Tree.
type Tree[T comparable] struct {
	mu         sync.RWMutex
	root       *node[T]
	entries    map[T]*entry[T]
	seq        uint64
	discipline Strategy
	ager       Ager[T]
}

// New creates an empty tree. StrategyHeight and StrategyColor select the
// incremental balancing discipline directly; StrategyWeight and
// StrategyHybrid keep the tree height-balanced between rebuilds.
// An unknown strategy fails with INVALID_MODE.
func New[T comparable](s Strategy) (*Tree[T], error) {
	if _, err := ParseStrategy(string(s)); err != nil {
		return nil, err
	}
	d := StrategyHeight
	if s == StrategyColor {
		d = StrategyColor
	}
	return &Tree[T]{entries: make(map[T]*entry[T]), discipline: d}, nil
}

// SetAger installs the age function used by hybrid rebalancing.
// A nil ager makes hybrid rebalancing equivalent to weight rebalancing.
func (t *Tree[T]) SetAger(a Ager[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ager = a
}

// Discipline returns the incremental balancing discipline in effect,
// StrategyHeight or StrategyColor.
func (t *Tree[T]) Discipline() Strategy {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.discipline
}

// Len returns the number of entries.
func (t *Tree[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Insert adds v with the given weight. If v is already present it is re-keyed:
// the old entry is removed and v is inserted again as the newest entry.
// The weight is evaluated before the tree is modified, so an INVALID_WEIGHT
// error leaves the tree unchanged.
func (t *Tree[T]) Insert(v T, w Weight[T]) error {
	key, err := w.Eval(v)
	if err != nil {
		return err
	}
	return t.InsertKey(v, w, key)
}

// InsertKey is Insert with a key the caller already evaluated from w, for
// callers that must not run w while holding their own locks. w is kept for
// later rebalances but not evaluated here; key must be finite.
func (t *Tree[T]) InsertKey(v T, w Weight[T], key float64) error {
	key, err := checkKey(key)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[v]; ok {
		t.deleteEntry(old)
	}
	t.seq++
	e := &entry[T]{value: v, weight: w, key: key, seq: t.seq}
	t.entries[v] = e
	t.insertEntry(e)
	return nil
}

// Search returns the earliest-inserted value whose cached key equals key.
func (t *Tree[T]) Search(key float64) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n := t.lowerBound(key); n != nil {
		return n.entry.value, true
	}
	var zero T
	return zero, false
}

// Remove deletes the earliest-inserted value whose cached key equals key.
// It reports whether anything was removed; a miss is a no-op.
func (t *Tree[T]) Remove(key float64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.lowerBound(key)
	if n == nil {
		return false
	}
	e := n.entry
	t.deleteEntry(e)
	delete(t.entries, e.value)
	return true
}

// Delete removes v regardless of its key. It reports whether v was present.
func (t *Tree[T]) Delete(v T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[v]
	if !ok {
		return false
	}
	t.deleteEntry(e)
	delete(t.entries, v)
	return true
}

// Contains reports whether v is indexed.
func (t *Tree[T]) Contains(v T) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[v]
	return ok
}

// Key returns the cached key of v.
func (t *Tree[T]) Key(v T) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entries[v]
	if !ok {
		return 0, false
	}
	return e.key, true
}

// Min returns the value with the smallest key.
func (t *Tree[T]) Min() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var zero T
	if t.root == nil {
		return zero, false
	}
	return minNode(t.root).entry.value, true
}

// Max returns the value with the largest key (the latest inserted on ties).
func (t *Tree[T]) Max() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var zero T
	if t.root == nil {
		return zero, false
	}
	n := t.root
	for n.right != nil {
		n = n.right
	}
	return n.entry.value, true
}

// Range returns the values with lo <= key <= hi in ascending order.
func (t *Tree[T]) Range(lo, hi float64) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []T
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		if n == nil {
			return
		}
		if lo <= n.entry.key {
			walk(n.left)
		}
		if lo <= n.entry.key && n.entry.key <= hi {
			out = append(out, n.entry.value)
		}
		if n.entry.key <= hi {
			walk(n.right)
		}
	}
	walk(t.root)
	return out
}

// Traverse returns the values in the given order. Unknown orders fail with
// INVALID_MODE.
func (t *Tree[T]) Traverse(o Order) ([]T, error) {
	if _, err := ParseOrder(string(o)); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0, len(t.entries))
	var walk func(n *node[T])
	walk = func(n *node[T]) {
		if n == nil {
			return
		}
		if o == PreOrder {
			out = append(out, n.entry.value)
		}
		walk(n.left)
		if o == InOrder {
			out = append(out, n.entry.value)
		}
		walk(n.right)
		if o == PostOrder {
			out = append(out, n.entry.value)
		}
	}
	walk(t.root)
	return out, nil
}

// Values returns the values in ascending key order.
func (t *Tree[T]) Values() []T {
	out, _ := t.Traverse(InOrder)
	return out
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[T]) Height() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return measure(t.root)
}

func (t *Tree[T]) insertEntry(e *entry[T]) {
	if t.discipline == StrategyColor {
		t.rbInsert(e)
		return
	}
	t.root = avlInsert(t.root, e)
}

func (t *Tree[T]) deleteEntry(e *entry[T]) {
	if t.discipline == StrategyColor {
		if n := t.find(e); n != nil {
			t.rbDelete(n)
		}
		return
	}
	t.root = avlDelete(t.root, e)
}

// find locates the node holding e by its composite key.
func (t *Tree[T]) find(e *entry[T]) *node[T] {
	n := t.root
	for n != nil {
		switch {
		case n.entry == e:
			return n
		case less(e, n.entry):
			n = n.left
		default:
			n = n.right
		}
	}
	return nil
}

// lowerBound returns the leftmost node whose key equals key.
func (t *Tree[T]) lowerBound(key float64) *node[T] {
	var found *node[T]
	n := t.root
	for n != nil {
		switch {
		case key < n.entry.key:
			n = n.left
		case key > n.entry.key:
			n = n.right
		default:
			found = n
			n = n.left
		}
	}
	return found
}

func minNode[T comparable](n *node[T]) *node[T] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func measure[T comparable](n *node[T]) int {
	if n == nil {
		return 0
	}
	return 1 + max(measure(n.left), measure(n.right))
}

// Valid checks the ordering invariant and the active discipline's balance
// invariant. It returns an INTERNAL_ERROR describing the first violation.
func (t *Tree[T]) Valid() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	var prev *entry[T]
	var order func(n *node[T]) error
	order = func(n *node[T]) error {
		if n == nil {
			return nil
		}
		if err := order(n.left); err != nil {
			return err
		}
		if prev != nil && !less(prev, n.entry) {
			return errors.New(errors.ErrCodeInternal, "entries out of order at key %v", n.entry.key)
		}
		prev = n.entry
		count++
		return order(n.right)
	}
	if err := order(t.root); err != nil {
		return err
	}
	if count != len(t.entries) {
		return errors.New(errors.ErrCodeInternal, "tree holds %d nodes but %d entries", count, len(t.entries))
	}

	if t.discipline == StrategyColor {
		return checkColor(t.root)
	}
	_, err := checkHeight(t.root)
	return err
}

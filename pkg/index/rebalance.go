package index

import (
	"cmp"
	"slices"
)

// Rebalance re-evaluates every entry's weight and rebuilds the tree with the
// given strategy. Afterwards an in-order traversal yields the values sorted by
// their current weights.
//
// StrategyHeight and StrategyColor re-insert every entry, in original
// insertion order, through the respective discipline and make it the tree's
// discipline from then on. StrategyWeight and StrategyHybrid rebuild a
// midpoint-split tree and keep the current discipline.
//
// All weights are evaluated before the tree is touched and without holding
// the tree lock, so a weight function may read the tree. If any evaluation
// fails the tree is left unchanged and the INVALID_WEIGHT error is returned.
// Entries inserted while the weights are evaluated keep their keys.
func (t *Tree[T]) Rebalance(s Strategy) error {
	if _, err := ParseStrategy(string(s)); err != nil {
		return err
	}

	t.mu.RLock()
	snapshot := bySeq(t.entries)
	ager := t.ager
	t.mu.RUnlock()

	keys := make([]float64, len(snapshot))
	for i, e := range snapshot {
		k, err := e.weight.Eval(e.value)
		if err != nil {
			return err
		}
		if s == StrategyHybrid && ager != nil {
			if age, ok := ager(e.value); ok {
				k, err = checkKey(k + recency(age))
				if err != nil {
					return err
				}
			}
		}
		keys[i] = k
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i, e := range snapshot {
		if t.entries[e.value] == e {
			e.key = keys[i]
		}
	}
	entries := bySeq(t.entries)

	t.root = nil
	switch s {
	case StrategyHeight, StrategyColor:
		t.discipline = s
		for _, e := range entries {
			t.insertEntry(e)
		}
	default:
		slices.SortFunc(entries, func(a, b *entry[T]) int {
			switch {
			case less(a, b):
				return -1
			case less(b, a):
				return 1
			}
			return 0
		})
		t.root = build(entries, nil)
		if t.root != nil {
			paint(t.root, 0, t.root.height-1)
		}
	}
	return nil
}

// bySeq returns the entries in insertion order.
func bySeq[T comparable](m map[T]*entry[T]) []*entry[T] {
	entries := make([]*entry[T], 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	slices.SortFunc(entries, func(a, b *entry[T]) int { return cmp.Compare(a.seq, b.seq) })
	return entries
}

// build creates a perfectly balanced subtree from sorted entries by repeated
// midpoint split, maintaining heights and parent links.
func build[T comparable](entries []*entry[T], parent *node[T]) *node[T] {
	if len(entries) == 0 {
		return nil
	}
	mid := len(entries) / 2
	n := &node[T]{entry: entries[mid], parent: parent}
	n.left = build(entries[:mid], n)
	n.right = build(entries[mid+1:], n)
	updateHeight(n)
	return n
}

// paint colors a midpoint-split tree: nodes on the deepest level are red,
// all others black. Every nil link of such a tree sits at depth deepest or
// deepest+1, so all paths carry the same number of black nodes.
func paint[T comparable](n *node[T], depth, deepest int) {
	if n == nil {
		return
	}
	n.color = black
	if depth == deepest && depth > 0 {
		n.color = red
	}
	paint(n.left, depth+1, deepest)
	paint(n.right, depth+1, deepest)
}

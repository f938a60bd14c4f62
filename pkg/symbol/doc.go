// Package symbol provides an interned, mutable node graph with a balanced
// weight index.
//
// # Overview
//
// A [Store] owns every [Node] it creates. Nodes are interned by name: asking
// the store for the same name twice returns the same *Node. Each node gets a
// creation position that is strictly larger than every position assigned
// before it, and nodes form a doubly linked chain in position order.
//
// Nodes are organized into three kinds of edges:
//
//   - children/parents: an ordered hierarchy; child ∈ parent.children exactly
//     when parent ∈ child.parents
//   - relations: labeled directed edges; every forward entry (a, how, b) is
//     mirrored by an inverse entry (b, "_inverse_"+how, a)
//   - the position chain: [Store.Next] and [Store.Prev]
//
// Adjacency is stored as [NodeID] handles inside the store's arena, so cyclic
// graphs carry no ownership problem.
//
// # Index
//
// Every node is also indexed in an [index.Tree] by a weight, by default its
// position. [WithWeight] supplies a derived weight, [Store.Rebalance]
// re-evaluates all weights, and [Store.Search], [Store.Range] and
// [Store.Ordered] query the index.
//
// # Basic Usage
//
//	s := symbol.New()
//	a, _ := s.Intern("a")
//	b, _ := s.Intern("b")
//	_ = s.Append(a, b)
//	_ = s.Relate(a, b, "owns")
//
// # Concurrency
//
// A Store is safe for concurrent use. Every structural mutation runs under
// one store-wide lock, so a failed validation never commits a partial change.
// Reads take the lock in shared mode; a multi-call traversal is not a
// consistent snapshot unless the caller serializes it against mutation.
//
// Interning and rebalancing are serialized on a second lock and evaluate the
// weight and age functions before taking the store lock. Those functions may
// therefore read the store, but must not call Intern, NewUnique, Rebalance or
// Reset. A node being interned is weighed before it is registered, so it has
// no edges and no index key at that point.
package symbol

// Package index provides a self-balancing binary search tree keyed by a
// numeric weight.
//
// # Overview
//
// A [Tree] keeps values ordered by a weight that is either a fixed number or
// a function of the value ([Fixed], [Derived]). The weight is evaluated when
// the value is inserted and cached as the entry's key; [Tree.Rebalance]
// re-evaluates every weight and rebuilds the tree so that in-order traversal
// follows the current weights again.
//
// # Strategies
//
// Two incremental balancing disciplines are supported:
//
//   - [StrategyHeight]: AVL rotations; every node satisfies
//     |height(left) - height(right)| <= 1
//   - [StrategyColor]: red-black rotations and recoloring; the root is black,
//     no red node has a red child, and every root-to-leaf path carries the
//     same number of black nodes
//
// Two derived strategies only apply to [Tree.Rebalance]:
//
//   - [StrategyWeight]: sort all entries by their current weight and rebuild a
//     perfectly balanced tree by repeated midpoint split
//   - [StrategyHybrid]: add a recency bonus of 1/(1+age_seconds) to the weight
//     of every entry the tree's [Ager] recognizes, then weight-rebuild
//
// A rebuilt tree satisfies both disciplines, so the tree keeps using whichever
// incremental discipline it had before.
//
// # Ties
//
// Entries are ordered by (key, insertion sequence). A new entry whose key
// equals existing keys is therefore placed to the right of all of them, and
// [Tree.Search] and [Tree.Remove] address the earliest-inserted entry of a key.
// This right-biased placement is part of the contract.
//
// # Errors
//
// Weights must evaluate to a finite number; NaN, infinities and nil weight
// functions fail with INVALID_WEIGHT before the tree is touched. Lookups and
// removals of absent keys are not errors: they report false.
//
// # Concurrency
//
// A Tree is safe for concurrent use. Derived weight functions run without the
// tree's lock held, during Insert and Rebalance alike, so they may read the
// same Tree. [Tree.InsertKey] takes a key the caller evaluated already.
package index

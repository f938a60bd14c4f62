// Package walk traverses the graph held by a symbol store.
//
// A walk starts at one root and visits every node reachable through child,
// parent and forward relation edges exactly once. Two parameters shape the
// result:
//
//   - [Mode] picks the frontier: [DepthFirst] uses a stack, [BreadthFirst] a queue.
//   - [Family] picks which family neighbours come first at each node:
//     [ChildrenFirst] or [ParentsFirst]. Forward relation targets always
//     follow the family neighbours; inverse relations are never followed.
//
// Within each neighbour group only unvisited nodes are considered, and they
// are sorted by name before being pushed. Two walks over the same graph
// with the same options therefore produce identical results.
//
// A node reached again after it was emitted is a revisit. Revisits are
// counted in [Result.Revisits] and logged at warn level; they never fail the
// walk.
//
// # Usage
//
//	res, err := walk.Walk(store, root, walk.Options{Mode: walk.BreadthFirst})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Names())
package walk

package symbol

import (
	"cmp"
	"slices"
)

// Relation is one forward relation label of a node and its targets.
type Relation struct {
	Label   string
	Targets []*Node
}

// Edge is a directed edge between two nodes. Child edges have an empty Label.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label,omitempty"`
}

// Reads take the store's read lock. A node that is not interned in the
// store has no children, parents or relations.

// Children returns n's children in order.
func (s *Store) Children(n *Node) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	return s.resolve(n.children)
}

// Parents returns n's parents in order.
func (s *Store) Parents(n *Node) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	return s.resolve(n.parents)
}

// Relations returns n's forward relations sorted by label.
func (s *Store) Relations(n *Node) []Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	labels := sortedLabels(n.relations, false)
	out := make([]Relation, 0, len(labels))
	for _, l := range labels {
		out = append(out, Relation{Label: l, Targets: s.resolve(n.relations[l])})
	}
	return out
}

// Targets returns the distinct targets of n's forward relations, ordered by
// label and then by relation order.
func (s *Store) Targets(n *Node) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	var ids []NodeID
	for _, l := range sortedLabels(n.relations, false) {
		for _, id := range n.relations[l] {
			if !contains(ids, id) {
				ids = append(ids, id)
			}
		}
	}
	return s.resolve(ids)
}

// Related returns the nodes n relates to under how, which may be an
// inverse label.
func (s *Store) Related(n *Node, how string) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	return s.resolve(n.relations[how])
}

// Labels returns every relation label of n, inverse labels included, sorted.
func (s *Store) Labels(n *Node) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	return sortedLabels(n.relations, true)
}

// Edges returns every child edge and forward relation edge, sorted by
// source, target and label.
func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Edge
	for _, n := range s.nodes {
		for _, cid := range n.children {
			out = append(out, Edge{From: n.name, To: s.nodes[cid].name})
		}
		for label, ids := range n.relations {
			if IsInverse(label) {
				continue
			}
			for _, id := range ids {
				out = append(out, Edge{From: n.name, To: s.nodes[id].name, Label: label})
			}
		}
	}
	slices.SortFunc(out, compareEdges)
	return out
}

func compareEdges(a, b Edge) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	if c := cmp.Compare(a.To, b.To); c != 0 {
		return c
	}
	return cmp.Compare(a.Label, b.Label)
}

// Roots returns the nodes without parents in position order.
func (s *Store) Roots() []*Node {
	var out []*Node
	for _, n := range s.Nodes() {
		if len(s.Parents(n)) == 0 {
			out = append(out, n)
		}
	}
	return out
}

func sortedLabels(rel map[string][]NodeID, inverse bool) []string {
	labels := make([]string, 0, len(rel))
	for l := range rel {
		if inverse || !IsInverse(l) {
			labels = append(labels, l)
		}
	}
	slices.Sort(labels)
	return labels
}

package symbol

import (
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/observability"
)

// Append makes child the last child of parent. It is a no-op if child is
// already a child of parent.
func (s *Store) Append(parent, child *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFamily(parent, child); err != nil {
		return err
	}
	s.appendChild(parent, child)
	return nil
}

// Insert places child at index at among parent's children. If child is
// already a child of parent it is moved. Out of range indexes are clamped.
func (s *Store) Insert(parent, child *Node, at int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkFamily(parent, child); err != nil {
		return err
	}

	kids := without(parent.children, child.id)
	at = max(0, min(at, len(kids)))
	parent.children = append(kids[:at:at], append([]NodeID{child.id}, kids[at:]...)...)
	if !contains(child.parents, parent.id) {
		child.parents = append(child.parents, parent.id)
	}
	return nil
}

func (s *Store) checkFamily(parent, child *Node) error {
	if err := s.check(parent, child); err != nil {
		return err
	}
	if parent == child {
		return errors.New(errors.ErrCodeInvalidInput, "node %q cannot be its own child", parent.name)
	}
	return nil
}

func (s *Store) appendChild(parent, child *Node) {
	if !contains(parent.children, child.id) {
		parent.children = append(parent.children, child.id)
	}
	if !contains(child.parents, parent.id) {
		child.parents = append(child.parents, parent.id)
	}
}

// Relate records that a relates to b under how, and mirrors it on b under the
// inverse label. An empty how means DefaultRelation. Labels may not start
// with InversePrefix.
func (s *Store) Relate(a, b *Node, how string) error {
	if how == "" {
		how = DefaultRelation
	}
	if err := errors.ValidateLabel(how); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(a, b); err != nil {
		return err
	}
	s.relate(a, b, how)
	return nil
}

func (s *Store) relate(a, b *Node, how string) {
	if !contains(a.relations[how], b.id) {
		a.relations[how] = append(a.relations[how], b.id)
	}
	inv := Inverse(how)
	if !contains(b.relations[inv], a.id) {
		b.relations[inv] = append(b.relations[inv], a.id)
	}
}

// Unrelate removes the relation a -how-> b and its mirror. An empty how
// removes every relation between a and b in both directions. Removing a
// relation that does not exist is a no-op.
func (s *Store) Unrelate(a, b *Node, how string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(a, b); err != nil {
		return err
	}

	if how != "" {
		dropRelation(a, how, b.id)
		dropRelation(b, Inverse(how), a.id)
		return nil
	}
	for label := range a.relations {
		dropRelation(a, label, b.id)
	}
	for label := range b.relations {
		dropRelation(b, label, a.id)
	}
	return nil
}

func dropRelation(n *Node, label string, id NodeID) {
	ids, ok := n.relations[label]
	if !ok {
		return
	}
	ids = without(ids, id)
	if len(ids) == 0 {
		delete(n.relations, label)
		return
	}
	n.relations[label] = ids
}

// Reparent detaches n from each of its parents and splices n's children into
// the parent at n's former place. Nodes without parents are left untouched.
func (s *Store) Reparent(n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(n); err != nil {
		return err
	}
	s.reparent(n)
	return nil
}

func (s *Store) reparent(n *Node) {
	if len(n.parents) == 0 {
		return
	}

	for _, pid := range n.parents {
		p := s.nodes[pid]
		at := indexOf(p.children, n.id)
		if at < 0 {
			continue
		}
		splice := make([]NodeID, 0, len(n.children))
		for _, cid := range n.children {
			if cid != p.id && !contains(p.children, cid) && !contains(splice, cid) {
				splice = append(splice, cid)
			}
		}
		kids := make([]NodeID, 0, len(p.children)-1+len(splice))
		kids = append(kids, p.children[:at]...)
		kids = append(kids, splice...)
		kids = append(kids, p.children[at+1:]...)
		p.children = kids
	}

	for _, cid := range n.children {
		c := s.nodes[cid]
		c.parents = without(c.parents, n.id)
		for _, pid := range n.parents {
			if pid != c.id && !contains(c.parents, pid) {
				c.parents = append(c.parents, pid)
			}
		}
	}

	n.parents = nil
	n.children = nil
}

// Delete removes n from the store: its children are reparented, its relations
// severed, and it leaves the position chain, the index and the name pool.
// After Delete, n is no longer interned and every Store method rejects it.
func (s *Store) Delete(n *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(n); err != nil {
		return err
	}

	s.reparent(n)
	for _, cid := range n.children {
		s.nodes[cid].parents = without(s.nodes[cid].parents, n.id)
	}
	for _, pid := range n.parents {
		s.nodes[pid].children = without(s.nodes[pid].children, n.id)
	}
	n.children, n.parents = nil, nil

	for label, ids := range n.relations {
		inv := Inverse(label)
		for _, id := range ids {
			if other, ok := s.nodes[id]; ok && other != n {
				dropRelation(other, inv, n.id)
			}
		}
	}
	n.relations = make(map[string][]NodeID)

	s.unlink(n)
	s.index.Delete(n.id)
	if id, ok := s.names[n.name]; ok && id == n.id {
		delete(s.names, n.name)
	}
	delete(s.nodes, n.id)
	n.store = nil

	s.logger.Debug("deleted node", "name", n.name)
	observability.Store().OnDelete(n.name)
	return nil
}

// Patch merges source into target: source's children are appended to
// target, target is appended under each of source's parents, and source's
// forward relations are replayed onto target. Target's origin is taken from
// source only if target has none.
func (s *Store) Patch(target, source *Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(target, source); err != nil {
		return err
	}
	if target == source {
		return nil
	}

	for _, cid := range source.children {
		if cid != target.id {
			s.appendChild(target, s.nodes[cid])
		}
	}
	for _, pid := range source.parents {
		if pid != target.id {
			s.appendChild(s.nodes[pid], target)
		}
	}
	for _, label := range sortedLabels(source.relations, false) {
		for _, id := range source.relations[label] {
			s.relate(target, s.nodes[id], label)
		}
	}

	if target.Origin() == nil {
		if o := source.Origin(); o != nil {
			target.SetOrigin(o)
		}
	}
	return nil
}

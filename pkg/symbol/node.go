package symbol

import (
	"sync"

	"github.com/matzehuels/symbol/pkg/errors"
)

// InversePrefix marks relation labels maintained as mirrors of forward relations.
const InversePrefix = errors.InversePrefix

// DefaultRelation is the label used when Relate is called with an empty label.
const DefaultRelation = "related"

// DefaultShape is the diagram shape of nodes without an explicit shape.
const DefaultShape = "box"

// NodeID is a node's handle inside its store. IDs are never reused.
type NodeID uint64

// Node is an interned graph vertex.
//
// Name, ID and Position never change. Structure (children, parents,
// relations) is read and changed through the owning Store.
type Node struct {
	id       NodeID
	name     string
	position float64
	store    *Store

	children  []NodeID
	parents   []NodeID
	relations map[string][]NodeID
	prev      NodeID
	next      NodeID

	attrMu sync.RWMutex
	origin any
	shape  string
}

// ID returns the node's handle.
func (n *Node) ID() NodeID { return n.id }

// Name returns the node's identity.
func (n *Node) Name() string { return n.name }

// Position returns the creation position used as the default index weight.
func (n *Node) Position() float64 { return n.position }

// String returns the node's name.
func (n *Node) String() string { return n.name }

// Origin returns the value associated with the node, or nil.
func (n *Node) Origin() any {
	n.attrMu.RLock()
	defer n.attrMu.RUnlock()
	return n.origin
}

// SetOrigin associates a value with the node.
func (n *Node) SetOrigin(v any) {
	n.attrMu.Lock()
	defer n.attrMu.Unlock()
	n.origin = v
}

// Shape returns the node's diagram shape, DefaultShape if none was set.
func (n *Node) Shape() string {
	n.attrMu.RLock()
	defer n.attrMu.RUnlock()
	if n.shape == "" {
		return DefaultShape
	}
	return n.shape
}

// SetShape sets the node's diagram shape. An empty shape restores the default.
func (n *Node) SetShape(shape string) {
	n.attrMu.Lock()
	defer n.attrMu.Unlock()
	n.shape = shape
}

// IsInverse reports whether label names a mirror relation.
func IsInverse(label string) bool {
	return len(label) >= len(InversePrefix) && label[:len(InversePrefix)] == InversePrefix
}

// Inverse returns the mirror label of a forward label and vice versa.
func Inverse(label string) string {
	if IsInverse(label) {
		return label[len(InversePrefix):]
	}
	return InversePrefix + label
}

func indexOf(ids []NodeID, id NodeID) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

func contains(ids []NodeID, id NodeID) bool { return indexOf(ids, id) >= 0 }

func without(ids []NodeID, id NodeID) []NodeID {
	if i := indexOf(ids, id); i >= 0 {
		return append(ids[:i:i], ids[i+1:]...)
	}
	return ids
}

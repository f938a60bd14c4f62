package index

import "github.com/matzehuels/symbol/pkg/errors"

func isRed[T comparable](n *node[T]) bool {
	return n != nil && n.color == red
}

func (t *Tree[T]) replaceChild(parent, old, repl *node[T]) {
	switch {
	case parent == nil:
		t.root = repl
	case parent.left == old:
		parent.left = repl
	default:
		parent.right = repl
	}
}

func (t *Tree[T]) rbRotateLeft(x *node[T]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	t.replaceChild(x.parent, x, y)
	y.left = x
	x.parent = y
}

func (t *Tree[T]) rbRotateRight(x *node[T]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	t.replaceChild(x.parent, x, y)
	y.right = x
	x.parent = y
}

func (t *Tree[T]) rbInsert(e *entry[T]) {
	z := &node[T]{entry: e, color: red}
	var parent *node[T]
	for x := t.root; x != nil; {
		parent = x
		if less(e, x.entry) {
			x = x.left
		} else {
			x = x.right
		}
	}
	z.parent = parent
	switch {
	case parent == nil:
		t.root = z
	case less(e, parent.entry):
		parent.left = z
	default:
		parent.right = z
	}
	t.rbInsertFixup(z)
}

func (t *Tree[T]) rbInsertFixup(z *node[T]) {
	for isRed(z.parent) {
		gp := z.parent.parent
		if z.parent == gp.left {
			uncle := gp.right
			if isRed(uncle) {
				z.parent.color = black
				uncle.color = black
				gp.color = red
				z = gp
				continue
			}
			if z == z.parent.right {
				z = z.parent
				t.rbRotateLeft(z)
			}
			z.parent.color = black
			gp.color = red
			t.rbRotateRight(gp)
		} else {
			uncle := gp.left
			if isRed(uncle) {
				z.parent.color = black
				uncle.color = black
				gp.color = red
				z = gp
				continue
			}
			if z == z.parent.left {
				z = z.parent
				t.rbRotateRight(z)
			}
			z.parent.color = black
			gp.color = red
			t.rbRotateLeft(gp)
		}
	}
	t.root.color = black
}

// rbDelete removes z. A node with two children takes over its in-order
// successor's entry and the successor node is unlinked instead.
func (t *Tree[T]) rbDelete(z *node[T]) {
	if z.left != nil && z.right != nil {
		succ := minNode(z.right)
		z.entry = succ.entry
		z = succ
	}

	child := z.left
	if child == nil {
		child = z.right
	}
	parent := z.parent
	t.replaceChild(parent, z, child)
	if child != nil {
		child.parent = parent
	}

	if z.color == red {
		return
	}
	if isRed(child) {
		child.color = black
		return
	}
	t.rbDeleteFixup(child, parent)
}

// rbDeleteFixup resolves the missing black at x, whose parent is tracked
// separately because x may be nil.
func (t *Tree[T]) rbDeleteFixup(x, parent *node[T]) {
	for x != t.root && !isRed(x) && parent != nil {
		if x == parent.left {
			w := parent.right
			if isRed(w) {
				w.color = black
				parent.color = red
				t.rbRotateLeft(parent)
				w = parent.right
			}
			if !isRed(w.left) && !isRed(w.right) {
				w.color = red
				x = parent
				parent = x.parent
				continue
			}
			if !isRed(w.right) {
				w.left.color = black
				w.color = red
				t.rbRotateRight(w)
				w = parent.right
			}
			w.color = parent.color
			parent.color = black
			if w.right != nil {
				w.right.color = black
			}
			t.rbRotateLeft(parent)
			x = t.root
			parent = nil
		} else {
			w := parent.left
			if isRed(w) {
				w.color = black
				parent.color = red
				t.rbRotateRight(parent)
				w = parent.left
			}
			if !isRed(w.left) && !isRed(w.right) {
				w.color = red
				x = parent
				parent = x.parent
				continue
			}
			if !isRed(w.left) {
				w.right.color = black
				w.color = red
				t.rbRotateLeft(w)
				w = parent.left
			}
			w.color = parent.color
			parent.color = black
			if w.left != nil {
				w.left.color = black
			}
			t.rbRotateRight(parent)
			x = t.root
			parent = nil
		}
	}
	if x != nil {
		x.color = black
	}
}

// checkColor verifies the red-black properties and parent links.
func checkColor[T comparable](root *node[T]) error {
	if root == nil {
		return nil
	}
	if root.color != black {
		return errors.New(errors.ErrCodeInternal, "red root at key %v", root.entry.key)
	}
	if root.parent != nil {
		return errors.New(errors.ErrCodeInternal, "root has a parent")
	}
	_, err := blackHeight(root)
	return err
}

func blackHeight[T comparable](n *node[T]) (int, error) {
	if n == nil {
		return 1, nil
	}
	for _, c := range []*node[T]{n.left, n.right} {
		if c == nil {
			continue
		}
		if c.parent != n {
			return 0, errors.New(errors.ErrCodeInternal, "broken parent link at key %v", c.entry.key)
		}
		if isRed(n) && isRed(c) {
			return 0, errors.New(errors.ErrCodeInternal, "red node with red child at key %v", n.entry.key)
		}
	}
	lb, err := blackHeight(n.left)
	if err != nil {
		return 0, err
	}
	rb, err := blackHeight(n.right)
	if err != nil {
		return 0, err
	}
	if lb != rb {
		return 0, errors.New(errors.ErrCodeInternal, "unequal black height at key %v", n.entry.key)
	}
	if n.color == black {
		lb++
	}
	return lb, nil
}

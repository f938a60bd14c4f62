package index

import "github.com/matzehuels/symbol/pkg/errors"

func heightOf[T comparable](n *node[T]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func updateHeight[T comparable](n *node[T]) {
	n.height = 1 + max(heightOf(n.left), heightOf(n.right))
}

func balanceOf[T comparable](n *node[T]) int {
	return heightOf(n.left) - heightOf(n.right)
}

func avlRotateRight[T comparable](n *node[T]) *node[T] {
	l := n.left
	n.left = l.right
	l.right = n
	updateHeight(n)
	updateHeight(l)
	return l
}

func avlRotateLeft[T comparable](n *node[T]) *node[T] {
	r := n.right
	n.right = r.left
	r.left = n
	updateHeight(n)
	updateHeight(r)
	return r
}

// avlFix restores the height invariant at n and returns the subtree root.
func avlFix[T comparable](n *node[T]) *node[T] {
	updateHeight(n)
	switch b := balanceOf(n); {
	case b > 1:
		if balanceOf(n.left) < 0 {
			n.left = avlRotateLeft(n.left)
		}
		return avlRotateRight(n)
	case b < -1:
		if balanceOf(n.right) > 0 {
			n.right = avlRotateRight(n.right)
		}
		return avlRotateLeft(n)
	}
	return n
}

func avlInsert[T comparable](n *node[T], e *entry[T]) *node[T] {
	if n == nil {
		return &node[T]{entry: e, height: 1}
	}
	if less(e, n.entry) {
		n.left = avlInsert(n.left, e)
	} else {
		n.right = avlInsert(n.right, e)
	}
	return avlFix(n)
}

// avlDelete removes e from the subtree rooted at n. A node with two children
// takes over its in-order successor's entry and the successor is deleted.
func avlDelete[T comparable](n *node[T], e *entry[T]) *node[T] {
	if n == nil {
		return nil
	}
	switch {
	case n.entry == e:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		succ := minNode(n.right)
		n.entry = succ.entry
		n.right = avlDelete(n.right, succ.entry)
	case less(e, n.entry):
		n.left = avlDelete(n.left, e)
	default:
		n.right = avlDelete(n.right, e)
	}
	return avlFix(n)
}

// checkHeight verifies cached heights and the AVL balance factor.
func checkHeight[T comparable](n *node[T]) (int, error) {
	if n == nil {
		return 0, nil
	}
	lh, err := checkHeight(n.left)
	if err != nil {
		return 0, err
	}
	rh, err := checkHeight(n.right)
	if err != nil {
		return 0, err
	}
	h := 1 + max(lh, rh)
	if n.height != h {
		return 0, errors.New(errors.ErrCodeInternal, "stale height %d (want %d) at key %v", n.height, h, n.entry.key)
	}
	if d := lh - rh; d > 1 || d < -1 {
		return 0, errors.New(errors.ErrCodeInternal, "balance factor %d at key %v", d, n.entry.key)
	}
	return h, nil
}

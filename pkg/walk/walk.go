package walk

import (
	"cmp"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/observability"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// Graph is the read surface a walk needs. *symbol.Store implements it.
type Graph interface {
	Contains(n *symbol.Node) bool
	Children(n *symbol.Node) []*symbol.Node
	Parents(n *symbol.Node) []*symbol.Node
	Targets(n *symbol.Node) []*symbol.Node
}

// Options configures a walk. Zero values select DepthFirst, ChildrenFirst
// and a discarding logger.
type Options struct {
	Mode   Mode
	Family Family
	Logger *log.Logger
}

// Step is one emitted node and its distance from the root along the
// discovery path.
type Step struct {
	Node  *symbol.Node
	Depth int
}

// Result is the outcome of a walk.
type Result struct {
	Steps    []Step
	Revisits int
}

// Nodes returns the emitted nodes in order.
func (r *Result) Nodes() []*symbol.Node {
	out := make([]*symbol.Node, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Node
	}
	return out
}

// Names returns the names of the emitted nodes in order.
func (r *Result) Names() []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Node.Name()
	}
	return out
}

// Walk visits every node reachable from root. Invalid options fail with
// INVALID_MODE and a root outside g fails with NOT_FOUND, both before any
// node is visited.
func Walk(g Graph, root *symbol.Node, opts Options) (*Result, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}
	family, err := ParseFamily(string(opts.Family))
	if err != nil {
		return nil, err
	}
	if root == nil || !g.Contains(root) {
		return nil, errors.New(errors.ErrCodeNotFound, "root %v is not in the graph", root)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	start := time.Now()
	res := &Result{}
	visited := make(map[*symbol.Node]bool)
	frontier := []Step{{Node: root}}

	for len(frontier) > 0 {
		var cur Step
		if mode == DepthFirst {
			cur = frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
		} else {
			cur = frontier[0]
			frontier = frontier[1:]
		}

		if visited[cur.Node] {
			res.Revisits++
			logger.Warn("node revisited", "node", cur.Node.Name(), "depth", cur.Depth)
			continue
		}
		visited[cur.Node] = true
		res.Steps = append(res.Steps, cur)

		next := candidates(g, cur.Node, family, visited)
		if mode == DepthFirst {
			slices.Reverse(next)
		}
		for _, n := range next {
			frontier = append(frontier, Step{Node: n, Depth: cur.Depth + 1})
		}
	}

	elapsed := time.Since(start)
	logger.Debug("walk finished", "root", root.Name(), "mode", mode, "family", family,
		"visited", len(res.Steps), "revisits", res.Revisits, "duration", elapsed)
	observability.Walk().OnWalk(string(mode), string(family), len(res.Steps), res.Revisits, elapsed)
	return res, nil
}

// candidates returns n's unvisited neighbours: the first family group, the
// second family group, then forward relation targets. Each group is sorted
// by name and a node appears at most once.
func candidates(g Graph, n *symbol.Node, family Family, visited map[*symbol.Node]bool) []*symbol.Node {
	first, second := g.Children(n), g.Parents(n)
	if family == ParentsFirst {
		first, second = second, first
	}

	seen := make(map[*symbol.Node]bool)
	var out []*symbol.Node
	for _, group := range [][]*symbol.Node{first, second, g.Targets(n)} {
		var fresh []*symbol.Node
		for _, c := range group {
			if !visited[c] && !seen[c] {
				seen[c] = true
				fresh = append(fresh, c)
			}
		}
		slices.SortFunc(fresh, func(a, b *symbol.Node) int {
			return cmp.Compare(a.Name(), b.Name())
		})
		out = append(out, fresh...)
	}
	return out
}

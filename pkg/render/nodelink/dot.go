package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
	"github.com/matzehuels/symbol/pkg/walk"
)

// Graph is the read surface the renderer needs. *symbol.Store implements it.
type Graph interface {
	walk.Graph
	Nodes() []*symbol.Node
	Relations(n *symbol.Node) []symbol.Relation
}

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the position and origin to node labels.
	Detailed bool
	// Walk selects the traversal used when a root is given.
	Walk walk.Options
}

type edgeKey struct {
	from, to *symbol.Node
	label    string
}

// ToDOT converts the graph, or the part reachable from root, to Graphviz DOT.
// Nodes are declared in walk order (position order without a root); each edge
// appears once per (source, target, label).
func ToDOT(g Graph, root *symbol.Node, opts Options) (string, error) {
	nodes := g.Nodes()
	if root != nil {
		res, err := walk.Walk(g, root, opts.Walk)
		if err != nil {
			return "", err
		}
		nodes = res.Nodes()
	}
	drawn := make(map[*symbol.Node]bool, len(nodes))
	for _, n := range nodes {
		drawn[n] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name(), strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	seen := make(map[edgeKey]bool)
	emit := func(from, to *symbol.Node, label string) {
		k := edgeKey{from, to, label}
		if seen[k] || !drawn[to] {
			return
		}
		seen[k] = true
		if label == "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", from.Name(), to.Name())
			return
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, style=dashed];\n", from.Name(), to.Name(), label)
	}
	for _, n := range nodes {
		for _, c := range g.Children(n) {
			emit(n, c, "")
		}
		for _, rel := range g.Relations(n) {
			for _, t := range rel.Targets {
				emit(n, t, rel.Label)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtLabel(n *symbol.Node, detailed bool) string {
	if !detailed {
		return n.Name()
	}
	parts := []string{fmt.Sprintf("position: %g", n.Position())}
	if o := n.Origin(); o != nil {
		parts = append(parts, fmt.Sprintf("origin: %v", o))
	}
	return n.Name() + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *symbol.Node, detailed bool) []string {
	return []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("shape=%q", n.Shape()),
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

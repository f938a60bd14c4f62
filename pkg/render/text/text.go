// Package text renders graph walks as indented plain text.
//
// Each visited node is written on its own line, indented two spaces per
// level of discovery depth. The tree is followed by every forward relation
// leaving a visited node, sorted and deduplicated, one per line:
//
//	app
//	  cache
//	  db
//
//	cache --reads--> db
package text

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/symbol/pkg/symbol"
	"github.com/matzehuels/symbol/pkg/walk"
)

// Graph is the read surface the renderer needs. *symbol.Store implements it.
type Graph interface {
	walk.Graph
	Relations(n *symbol.Node) []symbol.Relation
}

// Indent is the per-depth indentation.
const Indent = "  "

// Indented walks g from root and renders the result.
func Indented(g Graph, root *symbol.Node, opts walk.Options) (string, error) {
	res, err := walk.Walk(g, root, opts)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, st := range res.Steps {
		b.WriteString(strings.Repeat(Indent, st.Depth))
		b.WriteString(st.Node.Name())
		b.WriteByte('\n')
	}

	lines := relationLines(g, res.Nodes())
	if len(lines) > 0 {
		b.WriteByte('\n')
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func relationLines(g Graph, nodes []*symbol.Node) []string {
	var lines []string
	for _, n := range nodes {
		for _, rel := range g.Relations(n) {
			for _, t := range rel.Targets {
				lines = append(lines, fmt.Sprintf("%s --%s--> %s", n.Name(), rel.Label, t.Name()))
			}
		}
	}
	slices.Sort(lines)
	return slices.Compact(lines)
}

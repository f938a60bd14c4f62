// Package nodelink renders symbol graphs as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz DOT source where nodes appear as shapes
// connected by arrows. Child edges are solid; forward relation edges are
// dashed and carry their label. Inverse relations are never drawn.
//
// # Usage
//
// Convert a graph to DOT, then render to SVG:
//
//	dot, err := nodelink.ToDOT(store, root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// A nil root draws every node in the store; otherwise only the nodes reached
// by walking from root are drawn.
//
// # Shapes
//
// Each node is declared with its own shape from [symbol.Node.Shape], which
// defaults to a plain box.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink

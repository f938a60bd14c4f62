// Package codec reads and writes symbol graphs as structured documents.
//
// # Format
//
// A graph is a list of records, one per node, sorted by name:
//
//	[
//	  {
//	    "name": "app",
//	    "children": ["cache", "db"],
//	    "relations": {"reads": ["db"]}
//	  }
//	]
//
// Children, relation labels and relation targets are sorted. Inverse
// relations are never written; they are rebuilt when relations are replayed
// on decode. Encoding is deterministic: decoding a document and encoding the
// result reproduces the document byte for byte.
//
// The same records are available as JSON ([FormatJSON], a top-level array),
// YAML ([FormatYAML], a top-level sequence) and TOML ([FormatTOML], an array
// of tables named "nodes").
//
// # Decoding
//
// Decoding validates the whole document before touching a store: names must
// be valid, every referenced name must have a record, and no node may be its
// own child. Nodes are then interned in record order and edges replayed.
//
// The roots of a decoded graph are the nodes that never appear as a child or
// a relation target. A graph without roots fails with NO_ROOT_FOUND unless
// [DecodeOptions.AllowRootFallback] is set, in which case the node with the
// smallest name is used. An empty document always fails.
package codec

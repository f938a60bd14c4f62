package codec

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// Record is the serialized form of one node.
type Record struct {
	Name      string              `json:"name" yaml:"name" toml:"name" bson:"name"`
	Children  []string            `json:"children" yaml:"children" toml:"children" bson:"children"`
	Relations map[string][]string `json:"relations" yaml:"relations" toml:"relations" bson:"relations"`
}

// Format names a document syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML}

// ParseFormat converts a format name. "yml" is accepted for YAML.
// Unknown names fail with INVALID_FORMAT.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer format of %s", path)
	}
	return ParseFormat(ext)
}

// Records returns one record per interned node in s, sorted by name, with
// sorted children, labels and targets. Inverse relations are omitted.
// Evicted nodes are not written, and neither are edges pointing at them, so
// every name in the output refers to exactly one record.
func Records(s *symbol.Store) []Record {
	interned := func(nodes []*symbol.Node) []*symbol.Node {
		return slices.DeleteFunc(nodes, func(n *symbol.Node) bool { return !s.Interned(n) })
	}

	nodes := interned(s.Nodes())
	out := make([]Record, 0, len(nodes))
	for _, n := range nodes {
		r := Record{
			Name:      n.Name(),
			Children:  names(interned(s.Children(n))),
			Relations: make(map[string][]string),
		}
		for _, rel := range s.Relations(n) {
			if targets := interned(rel.Targets); len(targets) > 0 {
				r.Relations[rel.Label] = names(targets)
			}
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Record) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func names(nodes []*symbol.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// normalize sorts a decoded record the way Records would have written it.
func normalize(r Record) Record {
	out := Record{
		Name:      r.Name,
		Children:  slices.Compact(slices.Sorted(slices.Values(r.Children))),
		Relations: make(map[string][]string, len(r.Relations)),
	}
	if out.Children == nil {
		out.Children = []string{}
	}
	for label, targets := range r.Relations {
		if symbol.IsInverse(label) {
			continue
		}
		out.Relations[label] = slices.Compact(slices.Sorted(slices.Values(targets)))
	}
	return out
}

package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// DecodeOptions configures decoding.
type DecodeOptions struct {
	// AllowRootFallback returns the node with the smallest name as the only
	// root when no node qualifies as a root.
	AllowRootFallback bool
	// Store receives the decoded graph. A nil Store decodes into a new one.
	Store *symbol.Store
}

// Graph is a decoded graph.
type Graph struct {
	Store *symbol.Store
	// Roots are sorted by name and never empty.
	Roots []*symbol.Node
}

// Root returns the first root by name.
func (g *Graph) Root() *symbol.Node { return g.Roots[0] }

// Decode reads a document in format f from r and builds its graph.
func Decode(r io.Reader, f Format, opts DecodeOptions) (*Graph, error) {
	records, err := DecodeRecords(r, f)
	if err != nil {
		return nil, err
	}
	return FromRecords(records, opts)
}

// Unmarshal builds the graph of a document in format f.
func Unmarshal(data []byte, f Format, opts DecodeOptions) (*Graph, error) {
	return Decode(bytes.NewReader(data), f, opts)
}

// DecodeRecords parses the records of a document without building a graph.
// Empty input yields no records.
func DecodeRecords(r io.Reader, f Format) ([]Record, error) {
	f, err := ParseFormat(string(f))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", f)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []Record
	switch f {
	case FormatJSON:
		err = json.Unmarshal(data, &records)
	case FormatYAML:
		err = yaml.Unmarshal(data, &records)
	case FormatTOML:
		var doc tomlDocument
		err = toml.Unmarshal(data, &doc)
		records = doc.Nodes
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	return records, nil
}

// FromRecords validates records and replays them into a store: every node is
// interned first, then children are appended and relations related in
// record order. Nothing is interned if validation fails.
func FromRecords(records []Record, opts DecodeOptions) (*Graph, error) {
	records, roots, err := plan(records, opts.AllowRootFallback)
	if err != nil {
		return nil, err
	}

	s := opts.Store
	if s == nil {
		s = symbol.New()
	}
	nodes := make(map[string]*symbol.Node, len(records))
	for _, r := range records {
		n, err := s.Intern(r.Name)
		if err != nil {
			return nil, err
		}
		nodes[r.Name] = n
	}
	for _, r := range records {
		for _, c := range r.Children {
			if err := s.Append(nodes[r.Name], nodes[c]); err != nil {
				return nil, err
			}
		}
		for _, label := range slices.Sorted(maps.Keys(r.Relations)) {
			for _, t := range r.Relations[label] {
				if err := s.Relate(nodes[r.Name], nodes[t], label); err != nil {
					return nil, err
				}
			}
		}
	}

	g := &Graph{Store: s, Roots: make([]*symbol.Node, len(roots))}
	for i, name := range roots {
		g.Roots[i] = nodes[name]
	}
	return g, nil
}

// plan normalizes and checks records and computes the root names.
func plan(records []Record, fallback bool) ([]Record, []string, error) {
	if len(records) == 0 {
		return nil, nil, errors.New(errors.ErrCodeNoRootFound, "graph has no nodes")
	}

	known := make(map[string]bool, len(records))
	out := make([]Record, len(records))
	for i, r := range records {
		if err := errors.ValidateName(r.Name); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidName, err, "record %d", i)
		}
		if known[r.Name] {
			return nil, nil, errors.New(errors.ErrCodeInvalidInput, "duplicate record %q", r.Name)
		}
		known[r.Name] = true
		out[i] = normalize(r)
	}

	referenced := make(map[string]bool)
	for _, r := range out {
		for _, c := range r.Children {
			if !known[c] {
				return nil, nil, errors.New(errors.ErrCodeNotFound, "%s: unknown child %q", r.Name, c)
			}
			if c == r.Name {
				return nil, nil, errors.New(errors.ErrCodeInvalidInput, "%s: node cannot be its own child", r.Name)
			}
			referenced[c] = true
		}
		for label, targets := range r.Relations {
			if err := errors.ValidateLabel(label); err != nil {
				return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", r.Name)
			}
			for _, t := range targets {
				if !known[t] {
					return nil, nil, errors.New(errors.ErrCodeNotFound, "%s: unknown %s target %q", r.Name, label, t)
				}
				referenced[t] = true
			}
		}
	}

	var roots []string
	for _, r := range out {
		if !referenced[r.Name] {
			roots = append(roots, r.Name)
		}
	}
	if len(roots) == 0 {
		if !fallback {
			return nil, nil, errors.New(errors.ErrCodeNoRootFound, "every node is a child or relation target")
		}
		roots = []string{out[0].Name}
		for _, r := range out[1:] {
			if r.Name < roots[0] {
				roots[0] = r.Name
			}
		}
	}
	slices.SortFunc(roots, strings.Compare)
	return out, roots, nil
}

// ReadFile decodes the file at path, picking the format from its extension.
func ReadFile(path string, opts DecodeOptions) (*Graph, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
	}
	defer file.Close()
	return Decode(file, f, opts)
}

// WriteFile encodes s to the file at path, picking the format from its
// extension.
func WriteFile(path string, s *symbol.Store) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := Encode(file, s, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

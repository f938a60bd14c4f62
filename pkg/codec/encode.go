package codec

import (
	"bytes"
	"encoding/json"
	"io"
	"maps"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// tomlDocument wraps the records because a TOML document must be a table.
type tomlDocument struct {
	Nodes []Record `toml:"nodes"`
}

// Encode writes the records of s to w in format f.
func Encode(w io.Writer, s *symbol.Store, f Format) error {
	return EncodeRecords(w, Records(s), f)
}

// Marshal returns the encoding of s in format f.
func Marshal(s *symbol.Store, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeRecords writes records to w in format f. Records are written as
// given; use [Records] to obtain the canonical order.
func EncodeRecords(w io.Writer, records []Record, f Format) error {
	if records == nil {
		records = []Record{}
	}
	var err error
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(records)
	case FormatYAML:
		var data []byte
		if data, err = yaml.Marshal(yamlDocument(records)); err == nil {
			_, err = w.Write(data)
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(tomlDocument{Nodes: records})
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return nil
}

// yamlDocument keeps record keys in declaration order and relation labels
// sorted.
func yamlDocument(records []Record) []yaml.MapSlice {
	doc := make([]yaml.MapSlice, len(records))
	for i, r := range records {
		rels := yaml.MapSlice{}
		for _, label := range slices.Sorted(maps.Keys(r.Relations)) {
			rels = append(rels, yaml.MapItem{Key: label, Value: r.Relations[label]})
		}
		children := r.Children
		if children == nil {
			children = []string{}
		}
		doc[i] = yaml.MapSlice{
			{Key: "name", Value: r.Name},
			{Key: "children", Value: children},
			{Key: "relations", Value: rels},
		}
	}
	return doc
}

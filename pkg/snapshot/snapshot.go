// Package snapshot persists named symbol graphs.
//
// A snapshot is the codec record set of a store, saved under a graph name.
// Two backends implement [Store]:
//
//   - [CacheStore]: the JSON encoding in any [cache.Cache], stored under the
//     graph key and under its content digest
//   - [MongoStore]: one MongoDB document per record, tagged with the graph
//     name and a revision UUID
//
// # Usage
//
//	c, _ := cache.NewFileCache(dir)
//	snaps := snapshot.NewCacheStore(c, nil, 0)
//	rev, err := snaps.Save(ctx, "deps", store)
//	g, err := snaps.Load(ctx, "deps", codec.DecodeOptions{})
package snapshot

import (
	"context"

	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// Store is the interface for snapshot backends.
type Store interface {
	// Save stores the records of s under name, replacing any previous
	// snapshot, and returns the new revision. A store without interned
	// nodes fails with INVALID_INPUT, since it could never be loaded.
	Save(ctx context.Context, name string, s *symbol.Store) (revision string, err error)

	// Load decodes the snapshot saved under name. A missing snapshot fails
	// with NOT_FOUND.
	Load(ctx context.Context, name string, opts codec.DecodeOptions) (*codec.Graph, error)

	// Delete removes the snapshot saved under name.
	Delete(ctx context.Context, name string) error
}

// records returns the records to save for s under name.
func records(name string, s *symbol.Store) ([]codec.Record, error) {
	rs := codec.Records(s)
	if len(rs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph %s has no nodes to save", name)
	}
	return rs, nil
}

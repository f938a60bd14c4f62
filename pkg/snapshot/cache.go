package snapshot

import (
	"bytes"
	"context"
	"time"

	"github.com/matzehuels/symbol/pkg/cache"
	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// CacheStore keeps snapshots in a cache backend.
type CacheStore struct {
	cache cache.Cache
	keys  cache.Keyer
	ttl   time.Duration
}

// NewCacheStore wraps c. A nil keyer means the default keyer; a zero ttl
// never expires.
func NewCacheStore(c cache.Cache, keys cache.Keyer, ttl time.Duration) *CacheStore {
	if keys == nil {
		keys = cache.NewDefaultKeyer()
	}
	return &CacheStore{cache: c, keys: keys, ttl: ttl}
}

// Save stores the JSON encoding of s and returns its SHA-256 digest.
func (st *CacheStore) Save(ctx context.Context, name string, s *symbol.Store) (string, error) {
	rs, err := records(name, s)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := codec.EncodeRecords(&buf, rs, codec.FormatJSON); err != nil {
		return "", err
	}
	data := buf.Bytes()
	digest := cache.Hash(data)
	if err := st.cache.Set(ctx, st.keys.DigestKey(digest), data, st.ttl); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store digest %s", digest)
	}
	if err := st.cache.Set(ctx, st.keys.GraphKey(name), data, st.ttl); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "store graph %s", name)
	}
	return digest, nil
}

// Load decodes the latest snapshot of name.
func (st *CacheStore) Load(ctx context.Context, name string, opts codec.DecodeOptions) (*codec.Graph, error) {
	return st.load(ctx, st.keys.GraphKey(name), opts)
}

// LoadRevision decodes the snapshot with the given digest.
func (st *CacheStore) LoadRevision(ctx context.Context, digest string, opts codec.DecodeOptions) (*codec.Graph, error) {
	return st.load(ctx, st.keys.DigestKey(digest), opts)
}

func (st *CacheStore) load(ctx context.Context, key string, opts codec.DecodeOptions) (*codec.Graph, error) {
	data, hit, err := st.cache.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", key)
	}
	if !hit {
		return nil, errors.New(errors.ErrCodeNotFound, "no snapshot %s", key)
	}
	return codec.Unmarshal(data, codec.FormatJSON, opts)
}

// Delete removes the graph key. Digest entries are left to expire.
func (st *CacheStore) Delete(ctx context.Context, name string) error {
	if err := st.cache.Delete(ctx, st.keys.GraphKey(name)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete graph %s", name)
	}
	return nil
}

var _ Store = (*CacheStore)(nil)

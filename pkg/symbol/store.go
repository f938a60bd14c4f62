package symbol

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/index"
	"github.com/matzehuels/symbol/pkg/observability"
)

// Store is the registry, arena and index for a set of nodes.
//
// The zero value is not usable - use New to create a Store.
type Store struct {
	// weighMu serializes Intern, Rebalance and Reset. They run the weight
	// and age functions while holding it but not mu, so those functions may
	// read the store.
	weighMu sync.Mutex

	mu       sync.RWMutex
	nodes    map[NodeID]*Node
	names    map[string]NodeID
	lastID   NodeID
	lastPos  float64
	head     NodeID
	tail     NodeID
	index    *index.Tree[NodeID]
	strategy index.Strategy
	weight   func(*Node) float64
	age      func(*Node) (time.Time, bool)
	now      func() time.Time
	logger   *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithWeight indexes nodes by fn instead of by position. fn may read the
// store, including the node's own edges and index key, but must not call
// Intern, NewUnique, Rebalance or Reset. A node that is being interned is
// passed before it is published, so it has no edges yet.
func WithWeight(fn func(*Node) float64) Option {
	return func(s *Store) { s.weight = fn }
}

// WithStrategy selects the index balancing strategy (default StrategyHeight).
func WithStrategy(st index.Strategy) Option {
	return func(s *Store) { s.strategy = st }
}

// WithLogger sets the logger used for debug output. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now for hybrid rebalancing.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithAge reports the timestamp of time-indexed nodes. Hybrid rebalancing
// adds a recency bonus to nodes for which fn returns ok. fn runs under the
// same rules as the WithWeight function.
func WithAge(fn func(*Node) (time.Time, bool)) Option {
	return func(s *Store) { s.age = fn }
}

// New creates an empty store. An unknown strategy falls back to
// StrategyHeight; use index.ParseStrategy to validate user input first.
func New(opts ...Option) *Store {
	s := &Store{
		strategy: index.StrategyHeight,
		now:      time.Now,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.nodes = make(map[NodeID]*Node)
	s.names = make(map[string]NodeID)
	s.head, s.tail = 0, 0
	tree, err := index.New[NodeID](s.strategy)
	if err != nil {
		s.strategy = index.StrategyHeight
		tree, _ = index.New[NodeID](s.strategy)
	}
	tree.SetAger(s.ageOf)
	s.index = tree
}

// Reset removes every node. Positions and IDs keep increasing afterwards.
func (s *Store) Reset() {
	s.weighMu.Lock()
	defer s.weighMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		n.store = nil
	}
	s.reset()
}

// Logger returns the store's logger.
func (s *Store) Logger() *log.Logger { return s.logger }

// Intern returns the node named name, creating it with the next position if
// it does not exist yet. Invalid names fail with INVALID_NAME.
func (s *Store) Intern(name string) (*Node, error) {
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}

	if n, ok := s.Lookup(name); ok {
		observability.Store().OnIntern(name, false)
		return n, nil
	}

	s.weighMu.Lock()
	defer s.weighMu.Unlock()

	// Only weighMu holders intern, so the name stays free and the next ID
	// and position stay ours while the weight runs without mu.
	s.mu.RLock()
	id, taken := s.names[name]
	existing := s.nodes[id]
	n := &Node{
		id:        s.lastID + 1,
		name:      name,
		position:  s.lastPos + 1,
		store:     s,
		relations: make(map[string][]NodeID),
	}
	s.mu.RUnlock()
	if taken {
		observability.Store().OnIntern(name, false)
		return existing, nil
	}

	w := s.weightOf(n)
	key, err := w.Eval(n.id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.index.InsertKey(n.id, w, key); err != nil {
		return nil, err
	}
	s.lastID, s.lastPos = n.id, n.position
	s.nodes[n.id] = n
	s.names[name] = n.id
	s.link(n)

	s.logger.Debug("interned node", "name", name, "position", n.position)
	observability.Store().OnIntern(name, true)
	return n, nil
}

// NewUnique interns a fresh node named prefix followed by a random UUID.
func (s *Store) NewUnique(prefix string) (*Node, error) {
	return s.Intern(prefix + uuid.NewString())
}

// Lookup returns the node named name without creating it.
func (s *Store) Lookup(name string) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.names[name]
	if !ok {
		return nil, false
	}
	return s.nodes[id], true
}

// Evict forgets the name → node mapping. The node keeps its edges and index
// entry, but a later Intern of the same name creates a new node, and the
// codec no longer writes it. Evicting an unknown name is a no-op.
func (s *Store) Evict(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.names, name)
}

// Interned reports whether n is live in this store and still owns its name,
// that is whether Lookup(n.Name()) returns n.
func (s *Store) Interned(n *Node) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owns(n) && s.names[n.name] == n.id
}

// Len returns the number of live nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// Contains reports whether n is a live node of this store.
func (s *Store) Contains(n *Node) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owns(n)
}

func (s *Store) owns(n *Node) bool {
	return n != nil && n.store == s && s.nodes[n.id] == n
}

func (s *Store) check(nodes ...*Node) error {
	for _, n := range nodes {
		if !s.owns(n) {
			if n == nil {
				return errors.New(errors.ErrCodeNotFound, "nil node")
			}
			return errors.New(errors.ErrCodeNotFound, "node %q is not interned in this store", n.name)
		}
	}
	return nil
}

func (s *Store) resolve(ids []NodeID) []*Node {
	if len(ids) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok {
			out = append(out, n)
		}
	}
	return out
}

// =============================================================================
// Position chain
// =============================================================================

func (s *Store) link(n *Node) {
	n.prev = s.tail
	if t, ok := s.nodes[s.tail]; ok {
		t.next = n.id
	} else {
		s.head = n.id
	}
	s.tail = n.id
}

func (s *Store) unlink(n *Node) {
	if p, ok := s.nodes[n.prev]; ok {
		p.next = n.next
	} else {
		s.head = n.next
	}
	if nx, ok := s.nodes[n.next]; ok {
		nx.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = 0, 0
}

// Nodes returns every live node in position order.
func (s *Store) Nodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Node, 0, len(s.nodes))
	for id := s.head; id != 0; {
		n := s.nodes[id]
		out = append(out, n)
		id = n.next
	}
	return out
}

// First returns the node with the smallest position, or nil.
func (s *Store) First() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[s.head]
}

// Last returns the node with the largest position, or nil.
func (s *Store) Last() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[s.tail]
}

// Next returns the node following n in position order, or nil.
func (s *Store) Next(n *Node) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	return s.nodes[n.next]
}

// Prev returns the node preceding n in position order, or nil.
func (s *Store) Prev(n *Node) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return nil
	}
	return s.nodes[n.prev]
}

// =============================================================================
// Index
// =============================================================================

func (s *Store) weightOf(n *Node) index.Weight[NodeID] {
	if s.weight == nil {
		return index.Fixed[NodeID](n.position)
	}
	fn := s.weight
	return index.Derived(func(NodeID) float64 { return fn(n) })
}

// ageOf runs inside Rebalance while weighMu is held.
func (s *Store) ageOf(id NodeID) (time.Duration, bool) {
	if s.age == nil {
		return 0, false
	}
	s.mu.RLock()
	n, ok := s.nodes[id]
	s.mu.RUnlock()
	if !ok {
		return 0, false
	}
	ts, ok := s.age(n)
	if !ok {
		return 0, false
	}
	return s.now().Sub(ts), true
}

// Search returns the earliest-created node whose index key equals weight.
func (s *Store) Search(weight float64) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.index.Search(weight)
	if !ok {
		return nil, false
	}
	return s.nodes[id], true
}

// Range returns the nodes whose index keys lie in [lo, hi], ascending.
func (s *Store) Range(lo, hi float64) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolve(s.index.Range(lo, hi))
}

// Ordered returns the nodes in the given index order.
func (s *Store) Ordered(o index.Order) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, err := s.index.Traverse(o)
	if err != nil {
		return nil, err
	}
	return s.resolve(ids), nil
}

// Key returns n's cached index key.
func (s *Store) Key(n *Node) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.owns(n) {
		return 0, false
	}
	return s.index.Key(n.id)
}

// Rebalance re-evaluates every weight and rebuilds the index with st.
// The index guards itself, so the weights run without the store lock.
func (s *Store) Rebalance(st index.Strategy) error {
	s.weighMu.Lock()
	defer s.weighMu.Unlock()

	start := time.Now()
	err := s.index.Rebalance(st)
	elapsed := time.Since(start)
	size := s.index.Len()
	observability.Store().OnRebalance(string(st), size, elapsed, err)
	if err != nil {
		return err
	}
	s.logger.Debug("rebalanced index", "strategy", st, "nodes", size, "duration", elapsed)
	return nil
}

// CheckIndex verifies the index ordering and balance invariants.
func (s *Store) CheckIndex() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Valid()
}

// IndexHeight returns the height of the index tree.
func (s *Store) IndexHeight() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Height()
}

// Discipline returns the incremental balancing discipline of the index,
// StrategyHeight or StrategyColor.
func (s *Store) Discipline() index.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Discipline()
}

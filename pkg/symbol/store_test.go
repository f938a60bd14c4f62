package symbol

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/index"
)

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func mustIntern(t *testing.T, s *Store, name string) *Node {
	t.Helper()
	n, err := s.Intern(name)
	if err != nil {
		t.Fatalf("Intern(%q) error: %v", name, err)
	}
	return n
}

func TestInternReturnsSameNode(t *testing.T) {
	s := New()
	a := mustIntern(t, s, "a")
	again := mustIntern(t, s, "a")
	if a != again {
		t.Error("Intern returned distinct nodes for the same name")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if got, ok := s.Lookup("a"); !ok || got != a {
		t.Error("Lookup(a) did not return the interned node")
	}
	if _, ok := s.Lookup("missing"); ok {
		t.Error("Lookup(missing) found a node")
	}
}

func TestInternInvalidName(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"control", "a\x00b"},
		{"bad utf8", "\xff"},
		{"too long", strings.Repeat("x", errors.MaxNameLength+1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.Intern(tt.input)
			if !errors.Is(err, errors.ErrCodeInvalidName) {
				t.Errorf("Intern() error = %v, want INVALID_NAME", err)
			}
			if s.Len() != 0 {
				t.Errorf("Len() = %d after failed intern", s.Len())
			}
		})
	}
}

func TestPositionsIncrease(t *testing.T) {
	s := New()
	var last float64
	for _, name := range []string{"c", "a", "b"} {
		n := mustIntern(t, s, name)
		if n.Position() <= last {
			t.Errorf("%s position %v not after %v", name, n.Position(), last)
		}
		last = n.Position()
	}
	if got := names(s.Nodes()); !equal(got, []string{"c", "a", "b"}) {
		t.Errorf("Nodes() = %v", got)
	}
	if s.First().Name() != "c" || s.Last().Name() != "b" {
		t.Errorf("First/Last = %s/%s", s.First(), s.Last())
	}
	if s.Next(s.First()).Name() != "a" || s.Prev(s.Last()).Name() != "a" {
		t.Error("chain links broken")
	}
	if s.Next(s.Last()) != nil || s.Prev(s.First()) != nil {
		t.Error("chain ends should have no neighbours")
	}
}

func TestConcurrentIntern(t *testing.T) {
	s := New()
	const workers = 16
	got := make([]*Node, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := s.Intern("shared")
			if err != nil {
				t.Error(err)
				return
			}
			got[i] = n
			if _, err := s.NewUnique("anon-"); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	for _, n := range got[1:] {
		if n != got[0] {
			t.Fatal("concurrent Intern created distinct nodes")
		}
	}
	if s.Len() != workers+1 {
		t.Errorf("Len() = %d, want %d", s.Len(), workers+1)
	}
	seen := map[float64]bool{}
	for _, n := range s.Nodes() {
		if seen[n.Position()] {
			t.Errorf("duplicate position %v", n.Position())
		}
		seen[n.Position()] = true
	}
	if err := s.CheckIndex(); err != nil {
		t.Error(err)
	}
}

func TestEvict(t *testing.T) {
	s := New()
	a := mustIntern(t, s, "a")
	s.Evict("a")
	s.Evict("a")
	s.Evict("never")

	if _, ok := s.Lookup("a"); ok {
		t.Error("Lookup found evicted name")
	}
	b := mustIntern(t, s, "a")
	if a == b {
		t.Error("Intern after Evict returned the evicted node")
	}
	if b.Position() <= a.Position() {
		t.Error("positions must not be reused")
	}
}

func TestInterned(t *testing.T) {
	s := New()
	a := mustIntern(t, s, "a")
	s.Evict("a")
	b := mustIntern(t, s, "a")
	foreign := mustIntern(t, New(), "a")

	if s.Interned(a) {
		t.Error("evicted node reported as interned")
	}
	if !s.Contains(a) {
		t.Error("evicted node should stay live")
	}
	if !s.Interned(b) {
		t.Error("re-interned node not reported as interned")
	}
	if s.Interned(foreign) || s.Interned(nil) {
		t.Error("foreign or nil node reported as interned")
	}
}

func TestReset(t *testing.T) {
	s := New()
	a := mustIntern(t, s, "a")
	s.Reset()
	if s.Len() != 0 || s.First() != nil {
		t.Fatal("Reset left nodes behind")
	}
	if s.Contains(a) {
		t.Error("old node still owned after Reset")
	}
	b := mustIntern(t, s, "b")
	if b.Position() <= a.Position() {
		t.Error("positions restarted after Reset")
	}
}

func TestIndexByPosition(t *testing.T) {
	s := New(WithStrategy(index.StrategyColor))
	for _, name := range []string{"x", "y", "z"} {
		mustIntern(t, s, name)
	}
	n, ok := s.Search(2)
	if !ok || n.Name() != "y" {
		t.Errorf("Search(2) = %v, %v", n, ok)
	}
	if got := names(s.Range(2, 3)); !equal(got, []string{"y", "z"}) {
		t.Errorf("Range(2, 3) = %v", got)
	}
	ordered, err := s.Ordered(index.InOrder)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(ordered); !equal(got, []string{"x", "y", "z"}) {
		t.Errorf("Ordered = %v", got)
	}
}

func TestRebalanceCustomWeight(t *testing.T) {
	weights := map[string]float64{"a": 3, "b": 1, "c": 2}
	s := New(WithWeight(func(n *Node) float64 { return weights[n.Name()] }))
	for _, name := range []string{"a", "b", "c"} {
		mustIntern(t, s, name)
	}
	ordered, _ := s.Ordered(index.InOrder)
	if got := names(ordered); !equal(got, []string{"b", "c", "a"}) {
		t.Fatalf("Ordered = %v", got)
	}

	weights["a"] = 0
	for _, st := range index.Strategies {
		if err := s.Rebalance(st); err != nil {
			t.Fatalf("Rebalance(%s): %v", st, err)
		}
		ordered, _ := s.Ordered(index.InOrder)
		if got := names(ordered); !equal(got, []string{"a", "b", "c"}) {
			t.Errorf("after %s Ordered = %v", st, got)
		}
		if err := s.CheckIndex(); err != nil {
			t.Errorf("after %s: %v", st, err)
		}
	}
}

func TestRebalanceHybrid(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New(
		WithWeight(func(*Node) float64 { return 1 }),
		WithClock(func() time.Time { return now }),
		WithAge(func(n *Node) (time.Time, bool) {
			ts, ok := n.Origin().(time.Time)
			return ts, ok
		}),
	)
	old := mustIntern(t, s, "old")
	old.SetOrigin(now.Add(-time.Hour))
	fresh := mustIntern(t, s, "fresh")
	fresh.SetOrigin(now)
	mustIntern(t, s, "plain")

	if err := s.Rebalance(index.StrategyHybrid); err != nil {
		t.Fatal(err)
	}
	ordered, _ := s.Ordered(index.InOrder)
	if got := names(ordered); !equal(got, []string{"plain", "old", "fresh"}) {
		t.Errorf("Ordered = %v", got)
	}
	if k, _ := s.Key(fresh); k != 2 {
		t.Errorf("Key(fresh) = %v, want 2", k)
	}
}

// within fails the test if fn does not return before d elapses.
func within(t *testing.T, d time.Duration, what string, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("%s did not return within %v", what, d)
	}
}

func TestWeightMayReadStore(t *testing.T) {
	var s *Store
	s = New(
		WithWeight(func(n *Node) float64 {
			s.Key(n)
			s.Relations(n)
			return float64(len(s.Children(n)))
		}),
		WithAge(func(n *Node) (time.Time, bool) {
			_, ok := s.Lookup(n.Name() + ".stamp")
			return time.Time{}, ok
		}),
	)

	var nodes []*Node
	within(t, 5*time.Second, "Intern", func() {
		for _, name := range []string{"a", "b", "c"} {
			n, err := s.Intern(name)
			if err != nil {
				t.Errorf("Intern(%q): %v", name, err)
				return
			}
			nodes = append(nodes, n)
		}
	})
	if len(nodes) != 3 {
		t.FailNow()
	}
	a, b, c := nodes[0], nodes[1], nodes[2]
	if err := s.Append(a, b); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(a, c); err != nil {
		t.Fatal(err)
	}

	for _, st := range index.Strategies {
		within(t, 5*time.Second, "Rebalance("+string(st)+")", func() {
			if err := s.Rebalance(st); err != nil {
				t.Errorf("Rebalance(%s): %v", st, err)
			}
		})
	}
	if k, _ := s.Key(a); k != 2 {
		t.Errorf("Key(a) = %v, want 2", k)
	}
	ordered, _ := s.Ordered(index.InOrder)
	if got := names(ordered); !equal(got, []string{"b", "c", "a"}) {
		t.Errorf("Ordered = %v", got)
	}
}

func TestConcurrentInternWithDerivedWeight(t *testing.T) {
	var s *Store
	s = New(WithWeight(func(n *Node) float64 { return float64(s.Len()) }))

	var wg sync.WaitGroup
	nodes := make([]*Node, 16)
	for i := range nodes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.Intern("shared")
			if err != nil {
				t.Error(err)
			}
			nodes[i] = n
		}()
	}
	within(t, 5*time.Second, "concurrent Intern", wg.Wait)

	for _, n := range nodes[1:] {
		if n != nodes[0] {
			t.Fatal("concurrent Intern returned different nodes")
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if err := s.CheckIndex(); err != nil {
		t.Error(err)
	}
}

func TestInvalidWeightLeavesStoreUnchanged(t *testing.T) {
	s := New(WithWeight(func(n *Node) float64 {
		if n.Name() == "bad" {
			return nanValue()
		}
		return n.Position()
	}))
	mustIntern(t, s, "good")
	if _, err := s.Intern("bad"); !errors.Is(err, errors.ErrCodeInvalidWeight) {
		t.Fatalf("Intern(bad) error = %v, want INVALID_WEIGHT", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if _, ok := s.Lookup("bad"); ok {
		t.Error("failed node was registered")
	}
	next := mustIntern(t, s, "next")
	if next.Position() != 2 {
		t.Errorf("position after failed intern = %v, want 2", next.Position())
	}
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}

package walk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/symbol"
)

type edge struct{ from, to string }

func newGraph(t *testing.T, nodes []string, children []edge, relations map[string][]edge) (*symbol.Store, map[string]*symbol.Node) {
	t.Helper()
	s := symbol.New()
	m := make(map[string]*symbol.Node)
	for _, name := range nodes {
		n, err := s.Intern(name)
		if err != nil {
			t.Fatal(err)
		}
		m[name] = n
	}
	for _, e := range children {
		if err := s.Append(m[e.from], m[e.to]); err != nil {
			t.Fatal(err)
		}
	}
	for how, edges := range relations {
		for _, e := range edges {
			if err := s.Relate(m[e.from], m[e.to], how); err != nil {
				t.Fatal(err)
			}
		}
	}
	return s, m
}

func TestWalkScenario(t *testing.T) {
	s, n := newGraph(t, []string{"A", "B", "C", "D"}, []edge{{"A", "B"}, {"A", "D"}, {"B", "C"}}, nil)

	tests := []struct {
		mode  Mode
		want  string
		depth []int
	}{
		{DepthFirst, "A,B,C,D", []int{0, 1, 2, 1}},
		{BreadthFirst, "A,B,D,C", []int{0, 1, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			res, err := Walk(s, n["A"], Options{Mode: tt.mode, Family: ChildrenFirst})
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Join(res.Names(), ","); got != tt.want {
				t.Errorf("Walk() = %s, want %s", got, tt.want)
			}
			for i, st := range res.Steps {
				if st.Depth != tt.depth[i] {
					t.Errorf("step %d (%s) depth = %d, want %d", i, st.Node, st.Depth, tt.depth[i])
				}
			}
		})
	}
}

func TestWalkFamilyOrder(t *testing.T) {
	s, n := newGraph(t,
		[]string{"mid", "p2", "p1", "c2", "c1", "r"},
		[]edge{{"p2", "mid"}, {"p1", "mid"}, {"mid", "c2"}, {"mid", "c1"}},
		map[string][]edge{"uses": {{"mid", "r"}}},
	)

	tests := []struct {
		family Family
		mode   Mode
		want   string
	}{
		{ChildrenFirst, BreadthFirst, "mid,c1,c2,p1,p2,r"},
		{ParentsFirst, BreadthFirst, "mid,p1,p2,c1,c2,r"},
		{ChildrenFirst, DepthFirst, "mid,c1,c2,p1,p2,r"},
	}
	for _, tt := range tests {
		t.Run(string(tt.family)+"/"+string(tt.mode), func(t *testing.T) {
			res, err := Walk(s, n["mid"], Options{Mode: tt.mode, Family: tt.family})
			if err != nil {
				t.Fatal(err)
			}
			if got := strings.Join(res.Names(), ","); got != tt.want {
				t.Errorf("Walk() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWalkIgnoresInverseRelations(t *testing.T) {
	s, n := newGraph(t, []string{"a", "b"}, nil, map[string][]edge{"owns": {{"a", "b"}}})

	res, err := Walk(s, n["b"], Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(res.Names(), ","); got != "b" {
		t.Errorf("Walk(b) = %s, want b", got)
	}
	res, _ = Walk(s, n["a"], Options{})
	if got := strings.Join(res.Names(), ","); got != "a,b" {
		t.Errorf("Walk(a) = %s, want a,b", got)
	}
}

func TestWalkCycle(t *testing.T) {
	s, n := newGraph(t, []string{"a", "b", "c", "d"},
		[]edge{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}},
		map[string][]edge{"next": {{"d", "a"}}},
	)

	var buf bytes.Buffer
	logger := log.New(&buf)
	res, err := Walk(s, n["a"], Options{Mode: DepthFirst, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(res.Names(), ","); got != "a,b,d,c" {
		t.Errorf("Walk() = %s, want a,b,d,c", got)
	}
	if res.Revisits != 1 {
		t.Errorf("Revisits = %d, want 1", res.Revisits)
	}
	if !strings.Contains(buf.String(), "node revisited") {
		t.Errorf("revisit not logged: %q", buf.String())
	}
}

func TestWalkDeterministic(t *testing.T) {
	names := []string{"k", "e", "y", "b", "q", "a", "m", "z", "c"}
	var children []edge
	for i := 1; i < len(names); i++ {
		children = append(children, edge{names[(i-1)/2], names[i]})
	}
	s, n := newGraph(t, names, children, map[string][]edge{
		"x": {{"a", "k"}, {"z", "e"}},
		"y": {{"m", "b"}},
	})

	for _, mode := range []Mode{DepthFirst, BreadthFirst} {
		for _, family := range []Family{ChildrenFirst, ParentsFirst} {
			first, err := Walk(s, n["m"], Options{Mode: mode, Family: family})
			if err != nil {
				t.Fatal(err)
			}
			if len(first.Steps) != len(names) {
				t.Errorf("%s/%s visited %d nodes, want %d", mode, family, len(first.Steps), len(names))
			}
			for range 5 {
				again, _ := Walk(s, n["m"], Options{Mode: mode, Family: family})
				if strings.Join(again.Names(), ",") != strings.Join(first.Names(), ",") {
					t.Fatalf("%s/%s not deterministic: %v vs %v", mode, family, again.Names(), first.Names())
				}
			}
		}
	}
}

func TestWalkErrors(t *testing.T) {
	s, n := newGraph(t, []string{"a"}, nil, nil)
	other := symbol.New()
	stranger, _ := other.Intern("stranger")

	tests := []struct {
		name string
		root *symbol.Node
		opts Options
		code errors.Code
	}{
		{"bad mode", n["a"], Options{Mode: "sideways"}, errors.ErrCodeInvalidMode},
		{"bad family", n["a"], Options{Family: "cousins_first"}, errors.ErrCodeInvalidMode},
		{"foreign root", stranger, Options{}, errors.ErrCodeNotFound},
		{"nil root", nil, Options{}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Walk(s, tt.root, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Walk() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != DepthFirst {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMode("breadth_first"); err != nil || m != BreadthFirst {
		t.Errorf("ParseMode(breadth_first) = %v, %v", m, err)
	}
	if f, err := ParseFamily("parents_first"); err != nil || f != ParentsFirst {
		t.Errorf("ParseFamily(parents_first) = %v, %v", f, err)
	}
	if _, err := ParseFamily("x"); !errors.Is(err, errors.ErrCodeInvalidMode) {
		t.Errorf("ParseFamily(x) error = %v", err)
	}
}

package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/observability"
	"github.com/matzehuels/symbol/pkg/symbol"
)

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// seeded returns a server over app -> {db, cache} with cache --reads--> db.
func seeded(t *testing.T, opts ...Option) *Server {
	t.Helper()
	srv := New(symbol.New(), opts...)
	for _, name := range []string{"app", "db", "cache"} {
		if rec := do(t, srv, http.MethodPut, "/nodes/"+name, nil); rec.Code != http.StatusCreated {
			t.Fatalf("PUT %s = %d %s", name, rec.Code, rec.Body)
		}
	}
	for _, child := range []string{"db", "cache"} {
		rec := do(t, srv, http.MethodPost, "/edges", familyRequest{Parent: "app", Child: child})
		if rec.Code != http.StatusOK {
			t.Fatalf("POST /edges %s = %d %s", child, rec.Code, rec.Body)
		}
	}
	rec := do(t, srv, http.MethodPost, "/relations", relationRequest{From: "cache", To: "db", How: "reads"})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /relations = %d %s", rec.Code, rec.Body)
	}
	return srv
}

func TestNodes(t *testing.T) {
	srv := seeded(t)

	rec := do(t, srv, http.MethodPut, "/nodes/app?shape=ellipse", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("re-interning status = %d, want 200", rec.Code)
	}
	app := decode[nodeView](t, rec)
	if app.Shape != "ellipse" || app.Position != 1 {
		t.Errorf("app = %+v", app)
	}
	if strings.Join(app.Children, ",") != "db,cache" {
		t.Errorf("app children = %v", app.Children)
	}

	cache := decode[nodeView](t, do(t, srv, http.MethodGet, "/nodes/cache", nil))
	if strings.Join(cache.Relations["reads"], ",") != "db" || strings.Join(cache.Parents, ",") != "app" {
		t.Errorf("cache = %+v", cache)
	}

	all := decode[[]nodeView](t, do(t, srv, http.MethodGet, "/nodes", nil))
	if len(all) != 3 || all[2].Name != "cache" {
		t.Errorf("GET /nodes = %+v", all)
	}

	if rec := do(t, srv, http.MethodDelete, "/nodes/db", nil); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, "/nodes/db", nil); rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted node status = %d", rec.Code)
	}
	cache = decode[nodeView](t, do(t, srv, http.MethodGet, "/nodes/cache", nil))
	if len(cache.Relations) != 0 {
		t.Errorf("relations to deleted node survive: %+v", cache.Relations)
	}
}

func TestErrors(t *testing.T) {
	srv := seeded(t)

	tests := []struct {
		name   string
		method string
		target string
		body   any
		status int
		code   errors.Code
	}{
		{"invalid name", http.MethodPut, "/nodes/%01", nil, http.StatusBadRequest, errors.ErrCodeInvalidName},
		{"unknown node", http.MethodGet, "/nodes/ghost", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"delete unknown", http.MethodDelete, "/nodes/ghost", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"self child", http.MethodPost, "/edges", familyRequest{Parent: "app", Child: "app"}, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown child", http.MethodPost, "/edges", familyRequest{Parent: "app", Child: "ghost"}, http.StatusNotFound, errors.ErrCodeNotFound},
		{"malformed body", http.MethodPost, "/edges", `{"parent":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", http.MethodPost, "/relations", `{"from":"app","to":"db","kind":"x"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad mode", http.MethodGet, "/walk?mode=sideways", nil, http.StatusBadRequest, errors.ErrCodeInvalidMode},
		{"unknown root", http.MethodGet, "/walk?root=ghost", nil, http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad format", http.MethodGet, "/graph?format=xml", nil, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"bad order", http.MethodGet, "/index?order=sideways", nil, http.StatusBadRequest, errors.ErrCodeInvalidMode},
		{"bad strategy", http.MethodPost, "/index/rebalance?strategy=lucky", nil, http.StatusBadRequest, errors.ErrCodeInvalidMode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, tt.method, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body)
			}
			if got := decode[errorResponse](t, rec); got.Code != tt.code || got.Error == "" {
				t.Errorf("body = %+v, want code %s", got, tt.code)
			}
		})
	}
}

func TestWalkEndpoint(t *testing.T) {
	srv := seeded(t)

	res := decode[walkResponse](t, do(t, srv, http.MethodGet, "/walk?mode=breadth_first", nil))
	if res.Root != "app" || res.Mode != "breadth_first" || res.Family != "children_first" {
		t.Errorf("walk header = %+v", res)
	}
	var got []string
	for _, st := range res.Steps {
		got = append(got, st.Name)
	}
	if strings.Join(got, ",") != "app,cache,db" {
		t.Errorf("steps = %v", got)
	}
	if res.Steps[2].Depth != 1 || res.Revisits != 1 {
		t.Errorf("db depth = %d, revisits = %d", res.Steps[2].Depth, res.Revisits)
	}

	res = decode[walkResponse](t, do(t, srv, http.MethodGet, "/walk?root=db&family=parents_first", nil))
	if got := len(res.Steps); got != 3 || res.Steps[1].Name != "app" {
		t.Errorf("walk from db = %+v", res.Steps)
	}
}

func TestWalkNoRoot(t *testing.T) {
	srv := New(symbol.New())
	rec := do(t, srv, http.MethodGet, "/walk", nil)
	if rec.Code != http.StatusNotFound || decode[errorResponse](t, rec).Code != errors.ErrCodeNoRootFound {
		t.Errorf("walk of empty graph = %d %s", rec.Code, rec.Body)
	}
}

func TestRelationsEndpoint(t *testing.T) {
	srv := seeded(t)

	rec := do(t, srv, http.MethodPost, "/relations", relationRequest{From: "app", To: "db"})
	if got := decode[nodeView](t, rec).Relations[symbol.DefaultRelation]; strings.Join(got, ",") != "db" {
		t.Errorf("default relation = %v", got)
	}
	rec = do(t, srv, http.MethodDelete, "/relations", relationRequest{From: "cache", To: "db"})
	if got := decode[nodeView](t, rec); len(got.Relations) != 0 {
		t.Errorf("relations after removing all labels = %v", got.Relations)
	}

	edges := decode[[]symbol.Edge](t, do(t, srv, http.MethodGet, "/edges", nil))
	want := []symbol.Edge{{From: "app", To: "cache"}, {From: "app", To: "db"}, {From: "app", To: "db", Label: "related"}}
	if len(edges) != len(want) {
		t.Fatalf("edges = %+v", edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, edges[i], want[i])
		}
	}
}

func TestGraphEndpoint(t *testing.T) {
	srv := seeded(t)

	rec := do(t, srv, http.MethodGet, "/graph?format=yaml", nil)
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	g, err := codec.Unmarshal(rec.Body.Bytes(), codec.FormatYAML, codec.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if g.Store.Len() != 3 || g.Root().Name() != "app" {
		t.Errorf("decoded %d nodes with root %s", g.Store.Len(), g.Root())
	}

	rec = do(t, srv, http.MethodGet, "/dot?root=cache&detailed=true", nil)
	dot := rec.Body.String()
	if !strings.HasPrefix(dot, "digraph G {") || !strings.Contains(dot, `label="reads"`) {
		t.Errorf("GET /dot = %s", dot)
	}
}

func TestIndexEndpoints(t *testing.T) {
	srv := seeded(t)

	res := decode[indexResponse](t, do(t, srv, http.MethodGet, "/index", nil))
	var got []string
	for _, e := range res.Nodes {
		got = append(got, e.Name)
	}
	if res.Order != "in" || strings.Join(got, ",") != "app,db,cache" || res.Nodes[2].Key != 3 {
		t.Errorf("GET /index = %+v", res)
	}

	pre := decode[indexResponse](t, do(t, srv, http.MethodGet, "/index?order=pre", nil))
	if pre.Nodes[0].Name != "db" {
		t.Errorf("pre-order root = %s, want db", pre.Nodes[0].Name)
	}

	rb := decode[rebalanceResponse](t, do(t, srv, http.MethodPost, "/index/rebalance?strategy=weight", nil))
	if rb.Strategy != "weight" || rb.Size != 3 || rb.Height != 2 {
		t.Errorf("rebalance = %+v", rb)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	defer observability.Reset()
	reg := prometheus.NewRegistry()
	observability.NewMetrics(reg).Register()

	srv := seeded(t, WithRegistry(reg))
	do(t, srv, http.MethodGet, "/walk", nil)

	body := do(t, srv, http.MethodGet, "/metrics", nil).Body.String()
	for _, metric := range []string{
		`symbol_store_interns_total{created="true"} 3`,
		`symbol_walk_walks_total{family="children_first",mode="depth_first"} 1`,
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("/metrics missing %q", metric)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidWeight, http.StatusBadRequest},
		{errors.ErrCodeInvalidConfig, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeNoRootFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

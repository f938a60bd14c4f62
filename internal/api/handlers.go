package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/index"
	"github.com/matzehuels/symbol/pkg/render/nodelink"
	"github.com/matzehuels/symbol/pkg/symbol"
	"github.com/matzehuels/symbol/pkg/walk"
)

type nodeView struct {
	Name      string              `json:"name"`
	Position  float64             `json:"position"`
	Shape     string              `json:"shape"`
	Children  []string            `json:"children"`
	Parents   []string            `json:"parents"`
	Relations map[string][]string `json:"relations"`
}

type familyRequest struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
}

type relationRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	How  string `json:"how"`
}

type stepView struct {
	Name  string `json:"name"`
	Depth int    `json:"depth"`
}

type walkResponse struct {
	Root     string      `json:"root"`
	Mode     walk.Mode   `json:"mode"`
	Family   walk.Family `json:"family"`
	Steps    []stepView  `json:"steps"`
	Revisits int         `json:"revisits"`
}

type indexEntry struct {
	Name string  `json:"name"`
	Key  float64 `json:"key"`
}

type indexResponse struct {
	Order  index.Order  `json:"order"`
	Height int          `json:"height"`
	Nodes  []indexEntry `json:"nodes"`
}

type rebalanceResponse struct {
	Strategy index.Strategy `json:"strategy"`
	Size     int            `json:"size"`
	Height   int            `json:"height"`
}

func (s *Server) view(n *symbol.Node) nodeView {
	v := nodeView{
		Name:      n.Name(),
		Position:  n.Position(),
		Shape:     n.Shape(),
		Children:  names(s.store.Children(n)),
		Parents:   names(s.store.Parents(n)),
		Relations: make(map[string][]string),
	}
	for _, rel := range s.store.Relations(n) {
		v.Relations[rel.Label] = names(rel.Targets)
	}
	return v
}

func names(nodes []*symbol.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func (s *Server) lookup(name string) (*symbol.Node, error) {
	n, ok := s.store.Lookup(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q is not interned", name)
	}
	return n, nil
}

func (s *Server) listNodes(w http.ResponseWriter, _ *http.Request) {
	nodes := s.store.Nodes()
	out := make([]nodeView, len(nodes))
	for i, n := range nodes {
		out[i] = s.view(n)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) getNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(n))
}

func (s *Server) putNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	status := http.StatusOK
	if _, ok := s.store.Lookup(name); !ok {
		status = http.StatusCreated
	}
	n, err := s.store.Intern(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if shape := r.URL.Query().Get("shape"); shape != "" {
		n.SetShape(shape)
	}
	s.writeJSON(w, status, s.view(n))
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.lookup(chi.URLParam(r, "name"))
	if err == nil {
		err = s.store.Delete(n)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listEdges(w http.ResponseWriter, _ *http.Request) {
	edges := s.store.Edges()
	if edges == nil {
		edges = []symbol.Edge{}
	}
	s.writeJSON(w, http.StatusOK, edges)
}

func (s *Server) appendChild(w http.ResponseWriter, r *http.Request) {
	var req familyRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	parent, err := s.lookup(req.Parent)
	if err != nil {
		s.writeError(w, err)
		return
	}
	child, err := s.lookup(req.Child)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Append(parent, child); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(parent))
}

func (s *Server) relation(r *http.Request) (a, b *symbol.Node, how string, err error) {
	var req relationRequest
	if err = decodeBody(r, &req); err != nil {
		return nil, nil, "", err
	}
	if a, err = s.lookup(req.From); err != nil {
		return nil, nil, "", err
	}
	if b, err = s.lookup(req.To); err != nil {
		return nil, nil, "", err
	}
	return a, b, req.How, nil
}

func (s *Server) relate(w http.ResponseWriter, r *http.Request) {
	a, b, how, err := s.relation(r)
	if err == nil {
		err = s.store.Relate(a, b, how)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(a))
}

func (s *Server) unrelate(w http.ResponseWriter, r *http.Request) {
	a, b, how, err := s.relation(r)
	if err == nil {
		err = s.store.Unrelate(a, b, how)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(a))
}

// walkOptions merges query parameters over the server defaults.
func (s *Server) walkOptions(r *http.Request) walk.Options {
	opts := s.walk
	opts.Logger = s.logger
	q := r.URL.Query()
	if m := q.Get("mode"); m != "" {
		opts.Mode = walk.Mode(m)
	}
	if f := q.Get("family"); f != "" {
		opts.Family = walk.Family(f)
	}
	return opts
}

// root resolves the root query parameter, defaulting to the first node
// without parents.
func (s *Server) root(r *http.Request) (*symbol.Node, error) {
	if name := r.URL.Query().Get("root"); name != "" {
		return s.lookup(name)
	}
	roots := s.store.Roots()
	if len(roots) == 0 {
		return nil, errors.New(errors.ErrCodeNoRootFound, "graph has no parentless node")
	}
	return roots[0], nil
}

func (s *Server) walkGraph(w http.ResponseWriter, r *http.Request) {
	root, err := s.root(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := s.walkOptions(r)
	res, err := walk.Walk(s.store, root, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	mode, _ := walk.ParseMode(string(opts.Mode))
	family, _ := walk.ParseFamily(string(opts.Family))
	out := walkResponse{
		Root:     root.Name(),
		Mode:     mode,
		Family:   family,
		Steps:    make([]stepView, len(res.Steps)),
		Revisits: res.Revisits,
	}
	for i, st := range res.Steps {
		out.Steps[i] = stepView{Name: st.Node.Name(), Depth: st.Depth}
	}
	s.writeJSON(w, http.StatusOK, out)
}

var contentTypes = map[codec.Format]string{
	codec.FormatJSON: "application/json",
	codec.FormatYAML: "application/yaml",
	codec.FormatTOML: "application/toml",
}

func (s *Server) encodeGraph(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(codec.FormatJSON)
	}
	f, err := codec.ParseFormat(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	data, err := codec.Marshal(s.store, f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[f])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) renderDOT(w http.ResponseWriter, r *http.Request) {
	var root *symbol.Node
	if name := r.URL.Query().Get("root"); name != "" {
		var err error
		if root, err = s.lookup(name); err != nil {
			s.writeError(w, err)
			return
		}
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	dot, err := nodelink.ToDOT(s.store, root, nodelink.Options{Detailed: detailed, Walk: s.walkOptions(r)})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dot))
}

func (s *Server) indexOrder(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("order")
	if name == "" {
		name = string(index.InOrder)
	}
	order, err := index.ParseOrder(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	nodes, err := s.store.Ordered(order)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := indexResponse{Order: order, Height: s.store.IndexHeight(), Nodes: make([]indexEntry, len(nodes))}
	for i, n := range nodes {
		key, _ := s.store.Key(n)
		out.Nodes[i] = indexEntry{Name: n.Name(), Key: key}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) rebalance(w http.ResponseWriter, r *http.Request) {
	st, err := index.ParseStrategy(r.URL.Query().Get("strategy"))
	if err == nil {
		err = s.store.Rebalance(st)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rebalanceResponse{
		Strategy: st,
		Size:     s.store.Len(),
		Height:   s.store.IndexHeight(),
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

// Package cli implements the symbol command-line interface.
//
// The commands load a graph document (JSON, YAML or TOML) from a file,
// standard input or an http(s) URL, build a symbol store from it and walk,
// render, index or convert it. Graphs can be saved to and loaded from the
// configured snapshot backend, and served over HTTP.
//
// # Commands
//
//   - walk, tree: traverse a graph from a root
//   - render: write a node-link diagram as DOT or SVG
//   - index: print nodes in index order after an optional rebalance
//   - check: validate a document and the index invariants
//   - convert: re-encode a document in another format
//   - save, load, drop: persist graphs in the snapshot backend
//   - serve: expose a graph over the HTTP API
//   - cache: inspect and clear the local cache directory
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log. Settings come from the TOML file named by --config.
package cli

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/symbol/internal/config"
	"github.com/matzehuels/symbol/pkg/buildinfo"
	"github.com/matzehuels/symbol/pkg/cache"
	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
	"github.com/matzehuels/symbol/pkg/httputil"
	"github.com/matzehuels/symbol/pkg/snapshot"
	"github.com/matzehuels/symbol/pkg/symbol"
)

// stdinPath reads the graph document from standard input.
const stdinPath = "-"

// snapshotScope keeps saved graphs apart from fetched documents in a shared
// cache backend.
const snapshotScope = "snapshot:"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "symbol",
		Short:        "Symbol builds, walks and renders interned node graphs",
		Long:         `Symbol loads graphs of uniquely named nodes with ordered children and labelled relations, walks and renders them, and keeps them in a balanced index.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/symbol/config.toml)")

	root.AddCommand(c.walkCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.indexCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.saveCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.dropCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "backend", cfg.Cache.Backend, "strategy", cfg.Index.Strategy)
	return nil
}

func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printKeyValue(cmd.OutOrStdout(), "version", buildinfo.Version)
			printKeyValue(cmd.OutOrStdout(), "commit", buildinfo.Commit)
			printKeyValue(cmd.OutOrStdout(), "built", buildinfo.Date)
		},
	}
}

// =============================================================================
// Graph Loading
// =============================================================================

// newStore creates an empty store with the configured index strategy.
func (c *CLI) newStore() *symbol.Store {
	return symbol.New(
		symbol.WithStrategy(c.cfg.Strategy()),
		symbol.WithLogger(c.Logger),
	)
}

// readGraph decodes the document at path. "-" reads standard input and an
// http(s) URL is downloaded through the cache; both fall back to the
// configured format when no extension names one.
func (c *CLI) readGraph(cmd *cobra.Command, path string, fallback bool) (*codec.Graph, error) {
	prog := newProgress(c.Logger)
	opts := codec.DecodeOptions{Store: c.newStore(), AllowRootFallback: fallback}

	var g *codec.Graph
	var err error
	switch {
	case path == stdinPath:
		g, err = codec.Decode(cmd.InOrStdin(), c.cfg.CodecFormat(), opts)
	case httputil.IsURL(path):
		g, err = c.fetchGraph(cmd.Context(), path, opts)
	default:
		g, err = codec.ReadFile(path, opts)
	}
	if err != nil {
		return nil, err
	}
	prog.done("Loaded %d nodes from %s", g.Store.Len(), path)
	return g, nil
}

func (c *CLI) fetchGraph(ctx context.Context, rawURL string, opts codec.DecodeOptions) (*codec.Graph, error) {
	cc, err := c.openCache(ctx)
	if err != nil {
		return nil, err
	}
	defer cc.Close()

	data, err := httputil.NewFetcher(cc, c.cfg.Cache.TTL, c.Logger).Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	f := c.cfg.CodecFormat()
	if u, err := url.Parse(rawURL); err == nil {
		if byExt, err := codec.FormatFromPath(u.Path); err == nil {
			f = byExt
		}
	}
	return codec.Unmarshal(data, f, opts)
}

// pickRoot returns the named node, or the graph's first root when name is
// empty.
func pickRoot(g *codec.Graph, name string) (*symbol.Node, error) {
	if name == "" {
		return g.Root(), nil
	}
	n, ok := g.Store.Lookup(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "root %q is not in the graph", name)
	}
	return n, nil
}

// writeOutput writes data to path, or to the command's output when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return nil
}

// =============================================================================
// Storage Backends
// =============================================================================

// cacheDir returns the configured cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return config.CacheDir()
}

// openCache opens the configured cache backend.
func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case "null":
		return cache.NewNullCache(), nil
	case "redis":
		rc, err := cache.NewRedisCache(ctx, c.cfg.Cache.RedisAddr)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolve cache directory")
	}
	if c.cfg.Cache.Backend == "badger" {
		bc, err := cache.NewBadgerCache(filepath.Join(dir, "badger"))
		if err != nil {
			return nil, err
		}
		return bc, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// openSnapshots opens the snapshot backend: MongoDB when a URI is
// configured, otherwise the cache backend. The returned function releases
// the backend's connections.
func (c *CLI) openSnapshots(ctx context.Context) (snapshot.Store, func(), error) {
	if c.cfg.Mongo.URI != "" {
		st, err := snapshot.NewMongoStore(ctx, c.cfg.Mongo.URI, c.cfg.Mongo.Database)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("using mongo snapshots", "database", c.cfg.Mongo.Database)
		return st, func() { _ = st.Close(context.Background()) }, nil
	}

	cc, err := c.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("using cache snapshots", "backend", c.cfg.Cache.Backend)
	return snapshot.NewCacheStore(cc, cache.NewScopedKeyer(cache.NewDefaultKeyer(), snapshotScope), c.cfg.Cache.TTL), func() { _ = cc.Close() }, nil
}

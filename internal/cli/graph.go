package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbol/pkg/index"
	"github.com/matzehuels/symbol/pkg/render/text"
	"github.com/matzehuels/symbol/pkg/walk"
)

// walkFlags holds the traversal flags shared by walk, tree and render.
type walkFlags struct {
	root     string
	mode     string
	family   string
	fallback bool
}

func (f *walkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "start node (default: first root by name)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "traversal mode: depth_first or breadth_first (default from config)")
	cmd.Flags().StringVar(&f.family, "family", "", "family order: children_first or parents_first (default from config)")
	cmd.Flags().BoolVar(&f.fallback, "fallback", false, "use the smallest name as root when every node has an incoming edge")
}

// options merges the flags over the configured defaults.
func (f *walkFlags) options(c *CLI) walk.Options {
	opts := c.cfg.WalkOptions()
	opts.Logger = c.Logger
	if f.mode != "" {
		opts.Mode = walk.Mode(f.mode)
	}
	if f.family != "" {
		opts.Family = walk.Family(f.family)
	}
	return opts
}

// walkCommand creates the walk command, which prints visited nodes in order.
func (c *CLI) walkCommand() *cobra.Command {
	var flags walkFlags
	var depth bool

	cmd := &cobra.Command{
		Use:   "walk [file]",
		Short: "Print the nodes reachable from a root in traversal order",
		Long: `Walk loads a graph document and prints every node reachable from the root,
following children, parents and forward relations. Use "-" to read the
document from standard input in the configured format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.readGraph(cmd, args[0], flags.fallback)
			if err != nil {
				return err
			}
			root, err := pickRoot(g, flags.root)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			res, err := walk.Walk(g.Store, root, flags.options(c))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, st := range res.Steps {
				if depth {
					fmt.Fprintf(out, "%d\t%s\n", st.Depth, st.Node.Name())
				} else {
					fmt.Fprintln(out, st.Node.Name())
				}
			}
			prog.done("Walked %d nodes from %s, %d revisits", len(res.Steps), root.Name(), res.Revisits)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&depth, "depth", false, "prefix each node with its discovery depth")
	return cmd
}

// treeCommand creates the tree command, which prints an indented walk.
func (c *CLI) treeCommand() *cobra.Command {
	var flags walkFlags

	cmd := &cobra.Command{
		Use:   "tree [file]",
		Short: "Print a walk as an indented tree followed by its relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.readGraph(cmd, args[0], flags.fallback)
			if err != nil {
				return err
			}
			root, err := pickRoot(g, flags.root)
			if err != nil {
				return err
			}
			out, err := text.Indented(g.Store, root, flags.options(c))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}

// indexCommand creates the index command, which prints nodes in index order.
func (c *CLI) indexCommand() *cobra.Command {
	var order, strategy string

	cmd := &cobra.Command{
		Use:   "index [file]",
		Short: "Print the nodes in balanced index order",
		Long: `Index loads a graph, optionally rebuilds its index with a balancing
strategy (weight, height, color or hybrid) and prints every node with its
index key in the requested traversal order (in, pre or post).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := index.ParseOrder(order)
			if err != nil {
				return err
			}
			g, err := c.readGraph(cmd, args[0], true)
			if err != nil {
				return err
			}
			if strategy != "" {
				st, err := index.ParseStrategy(strategy)
				if err != nil {
					return err
				}
				prog := newProgress(c.Logger)
				if err := g.Store.Rebalance(st); err != nil {
					return err
				}
				prog.done("Rebalanced %d entries with %s", g.Store.Len(), st)
			}

			nodes, err := g.Store.Ordered(o)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range nodes {
				key, _ := g.Store.Key(n)
				fmt.Fprintf(out, "%g\t%s\n", key, n.Name())
			}
			c.Logger.Info("Index", "order", o, "height", g.Store.IndexHeight(), "discipline", g.Store.Discipline())
			return nil
		},
	}

	cmd.Flags().StringVar(&order, "order", string(index.InOrder), "traversal order: in, pre or post")
	cmd.Flags().StringVar(&strategy, "strategy", "", "rebuild the index first: weight, height, color or hybrid")
	return cmd
}

// checkCommand creates the check command, which validates a document.
func (c *CLI) checkCommand() *cobra.Command {
	var fallback bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a graph document and its index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.readGraph(cmd, args[0], fallback)
			if err != nil {
				return err
			}
			if err := g.Store.CheckIndex(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "%s is valid", args[0])
			printStats(out, g.Store.Len(), len(g.Store.Edges()), len(g.Roots))
			names := make([]string, len(g.Roots))
			for i, r := range g.Roots {
				names[i] = r.Name()
			}
			printDetail(out, "roots: %s", strings.Join(names, ", "))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fallback, "fallback", false, "accept documents without a root node")
	return cmd
}

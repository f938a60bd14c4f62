package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/symbol/pkg/codec"
	"github.com/matzehuels/symbol/pkg/errors"
)

// saveCommand creates the save command, which stores a graph snapshot.
func (c *CLI) saveCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Save a graph in the snapshot backend",
		Long: `Save stores the graph under a name in MongoDB when mongo.uri is configured,
otherwise in the configured cache backend (file, badger, redis or null).
The name defaults to the file name without its extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			g, err := c.readGraph(cmd, args[0], true)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			snaps, closeFn, err := c.openSnapshots(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			spin := newSpinner(ctx, cmd.ErrOrStderr(), "Saving "+name+"...")
			spin.Start()
			rev, err := snaps.Save(ctx, name, g.Store)
			if err != nil {
				spin.StopWithError("Saving %s failed", name)
				return err
			}
			spin.StopWithSuccess("Saved %s (%d nodes)", name, g.Store.Len())
			printKeyValue(cmd.OutOrStdout(), "revision", rev)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "snapshot name")
	return cmd
}

// loadCommand creates the load command, which prints or writes a snapshot.
func (c *CLI) loadCommand() *cobra.Command {
	var name, output string

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a graph from the snapshot backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return errors.New(errors.ErrCodeInvalidInput, "--name is required")
			}
			ctx := cmd.Context()
			snaps, closeFn, err := c.openSnapshots(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			prog := newProgress(c.Logger)
			g, err := snaps.Load(ctx, name, codec.DecodeOptions{Store: c.newStore(), AllowRootFallback: true})
			if err != nil {
				return err
			}
			prog.done("Loaded %s (%d nodes)", name, g.Store.Len())

			if output == "" {
				return codec.Encode(cmd.OutOrStdout(), g.Store, c.cfg.CodecFormat())
			}
			if err := codec.WriteFile(output, g.Store); err != nil {
				return err
			}
			printFile(cmd.ErrOrStderr(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "snapshot name")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (format from extension; default standard output)")
	return cmd
}

// dropCommand creates the drop command, which deletes a snapshot.
func (c *CLI) dropCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drop [name]",
		Short: "Delete a graph from the snapshot backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			snaps, closeFn, err := c.openSnapshots(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := snaps.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Dropped %s", args[0])
			return nil
		},
	}
}

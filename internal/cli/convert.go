package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/symbol/pkg/codec"
)

// convertCommand creates the convert command, which re-encodes a document.
func (c *CLI) convertCommand() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a graph document between JSON, YAML and TOML",
		Long: `Convert decodes the input document and encodes it again with records,
children, labels and targets sorted by name. Formats follow the file
extensions. Without an output file the document is written to standard
output in the format given by --to.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.readGraph(cmd, args[0], true)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				if err := codec.WriteFile(args[1], g.Store); err != nil {
					return err
				}
				printFile(cmd.ErrOrStderr(), args[1])
				return nil
			}

			f := c.cfg.CodecFormat()
			if to != "" {
				if f, err = codec.ParseFormat(to); err != nil {
					return err
				}
			}
			return codec.Encode(cmd.OutOrStdout(), g.Store, f)
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "output format without an output file: json, yaml or toml (default from config)")
	return cmd
}

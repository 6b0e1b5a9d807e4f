package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"restdoc/internal/javadoc"
)

func newDocsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "docs <dir>...",
		Short: "Dump the documentation extracted from Java sources",
		Long: `Extract the Javadoc of every type, field and method under the given
directories and print it as JSON, keyed by qualified type name. Methods are
keyed by the same signature keys the generator uses for correlation.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logging := root.setupLogging(cmd, nil)
			defer logging.Close()

			docs, err := javadoc.Extract(cmd.Context(), args, logging.Logger)
			if err != nil {
				return err
			}
			out, err := FormatResponse(docs, FormatJSON)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(root.format)
			if err != nil {
				return err
			}
			out, err := FormatResponse(newVersionResponse(), format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			if format == FormatJSON {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

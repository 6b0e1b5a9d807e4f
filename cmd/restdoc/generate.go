package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"restdoc/internal/generate"
)

// GenerateResponse is the response format for the generate command
type GenerateResponse struct {
	Report *generate.Report `json:"report"`
	// LoggedWarnings counts every warning logged during the run, including
	// skipped source roots.
	LoggedWarnings int64 `json:"loggedWarnings"`
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the configured OpenAPI documents",
		Long: `Load the configured source roots, scan every API's locations for resource
classes and write one OpenAPI document per API.

Examples:
  restdoc generate                         # Use ./restdoc.toml
  restdoc generate --config build/api.yml  # Explicit configuration file
  restdoc generate -o out --format json    # Override the output directory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(root.format)
			if err != nil {
				return err
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = outputDir
			}

			logging := root.setupLogging(cmd, cfg)
			defer logging.Close()

			report, err := generate.Run(cmd.Context(), cfg, logging.Logger)
			if err != nil {
				return err
			}

			out, err := FormatResponse(&GenerateResponse{
				Report:         report,
				LoggedWarnings: logging.Counter.Warnings(),
			}, format)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Override the configured output directory")
	return cmd
}

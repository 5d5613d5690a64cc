package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func inspectCmd(gf *globalFlags) *cobra.Command {
	var failOnError bool
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Extract one document and print its record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log := gf.setup(cmd)
			ex, err := newExtractor(cfg)
			if err != nil {
				return err
			}

			res := ex.ExtractFile(cmd.Context(), args[0])
			if !res.OK() {
				log.Warn("extraction degraded", "file", args[0], "error", res.Err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(res.Record); err != nil {
				return fmt.Errorf("encode record: %w", err)
			}
			if failOnError && !res.OK() {
				return res.Err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failOnError, "strict", false, "exit non-zero when extraction reports an error")
	return cmd
}

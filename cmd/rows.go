package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sells-group/call-insights/internal/sink"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print every sink row as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("rows"); err != nil {
			return err
		}
		variant, err := configuredVariant()
		if err != nil {
			return err
		}
		s, err := sink.New(cmd.Context(), cfg.Sink, variant)
		if err != nil {
			return err
		}

		rows, err := s.Rows(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rows)
	},
}

func init() {
	rootCmd.AddCommand(rowsCmd)
}

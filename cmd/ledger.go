package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/call-insights/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the processed-calls ledger",
}

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every committed call id",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := ledger.New(cmd.Context(), cfg.Ledger)
		if err != nil {
			return err
		}
		defer l.Close() //nolint:errcheck

		for _, id := range l.IDs() {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var ledgerCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of committed calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := ledger.New(cmd.Context(), cfg.Ledger)
		if err != nil {
			return err
		}
		defer l.Close() //nolint:errcheck

		fmt.Fprintln(cmd.OutOrStdout(), l.Len())
		return nil
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerListCmd, ledgerCountCmd)
	rootCmd.AddCommand(ledgerCmd)
}

package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	pollOnce     bool
	pollInterval int
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the call platform and process new calls",
	Long:  "Runs a pass immediately and then every interval until interrupted. With --once, runs a single pass and prints its report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "poll", true)
		if err != nil {
			return err
		}
		defer env.Close()

		orch, _ := newOrchestrator(env)

		if pollOnce {
			report := orch.RunPass(ctx)
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		return orch.Run(ctx, pollIntervalOrDefault())
	},
}

func pollIntervalOrDefault() time.Duration {
	if pollInterval > 0 {
		return time.Duration(pollInterval) * time.Minute
	}
	if d := cfg.Pipeline.Interval(); d > 0 {
		return d
	}
	return 5 * time.Minute
}

func init() {
	pollCmd.Flags().BoolVar(&pollOnce, "once", false, "run a single pass and exit")
	pollCmd.Flags().IntVar(&pollInterval, "interval", 0, "minutes between passes (default from config)")
	rootCmd.AddCommand(pollCmd)
}
